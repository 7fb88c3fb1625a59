// Package log is a small leveled logger built on [log/slog].
//
//	logger := log.Make(os.Stderr, log.WithLevel(log.LevelDebug))
//	logger.Debug("view skipped", slog.String("view", "related"))
//
// The zero Logger discards everything.
package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// Logger wraps a [slog.Logger] with a trace level and attribute-only methods.
type Logger struct {
	*slog.Logger
	config
}

// Make returns a Logger writing to w. The defaults are [DefaultLevel] and
// [DefaultFormat] without caller information.
func Make(w io.Writer, opts ...Option) Logger {
	cfg := makeConfig(w, opts...)
	return Logger{Logger: slog.New(cfg.handler()), config: cfg}
}

// Discard returns a Logger that writes nothing.
func Discard() Logger {
	return Logger{}
}

// With returns a Logger that adds attrs to every message.
func (l Logger) With(attrs ...slog.Attr) Logger {
	if l.Logger == nil {
		return l
	}
	return Logger{Logger: slog.New(l.Handler().WithAttrs(attrs)), config: l.config}
}

// Level returns the minimum level logged.
func (l Logger) Level() Level {
	if l.Logger == nil {
		return DefaultLevel
	}
	return l.level
}

// Trace logs at [LevelTrace].
func (l Logger) Trace(msg string, attrs ...slog.Attr) {
	l.log(context.Background(), LevelTrace, msg, attrs...)
}

// Debug logs at [LevelDebug].
func (l Logger) Debug(msg string, attrs ...slog.Attr) {
	l.log(context.Background(), LevelDebug, msg, attrs...)
}

// Info logs at [LevelInfo].
func (l Logger) Info(msg string, attrs ...slog.Attr) {
	l.log(context.Background(), LevelInfo, msg, attrs...)
}

// Warn logs at [LevelWarn].
func (l Logger) Warn(msg string, attrs ...slog.Attr) {
	l.log(context.Background(), LevelWarn, msg, attrs...)
}

// Error logs at [LevelError].
func (l Logger) Error(msg string, attrs ...slog.Attr) {
	l.log(context.Background(), LevelError, msg, attrs...)
}

// InfoContext logs at [LevelInfo] with ctx.
func (l Logger) InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelInfo, msg, attrs...)
}

// DebugContext logs at [LevelDebug] with ctx.
func (l Logger) DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, LevelDebug, msg, attrs...)
}

func (l Logger) log(ctx context.Context, level Level, msg string, attrs ...slog.Attr) {
	if l.Logger == nil || !l.Enabled(ctx, slog.Level(level)) {
		return
	}
	// Skip runtime.Callers, log, and the exported method.
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pcs[0])
	r.AddAttrs(attrs...)
	_ = l.Handler().Handle(ctx, r)
}
