package log

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// Level represents the severity of a log message.
type Level slog.Level

const (
	LevelTrace Level = Level(slog.LevelDebug - 4)
	LevelDebug Level = Level(slog.LevelDebug)
	LevelInfo  Level = Level(slog.LevelInfo)
	LevelWarn  Level = Level(slog.LevelWarn)
	LevelError Level = Level(slog.LevelError)
)

// DefaultLevel is the default log level.
const DefaultLevel = LevelInfo

func (l Level) String() string {
	if l == LevelTrace {
		return "trace"
	}
	return strings.ToLower(slog.Level(l).String())
}

// ParseLevel parses a level name such as "debug" or "warn+2".
// Unknown names yield [DefaultLevel].
func ParseLevel(s string) Level {
	if strings.EqualFold(strings.TrimSpace(s), "trace") {
		return LevelTrace
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}
	return Level(l)
}

// Format represents the output format for log messages.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is the default log message format.
const DefaultFormat = FormatText

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatText:
		return "text"
	}
	return "unknown"
}

// ParseFormat parses "json" or "text". Anything else yields [DefaultFormat].
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	}
	return DefaultFormat
}

type config struct {
	output io.Writer
	level  Level
	format Format
	caller bool
	notime bool
}

// Option applies a configuration option to config.
type Option func(config) config

func makeConfig(w io.Writer, opts ...Option) config {
	if w == nil {
		w = io.Discard
	}
	c := config{output: w, level: DefaultLevel, format: DefaultFormat}
	for _, opt := range opts {
		c = opt(c)
	}
	return c
}

func (c config) handler() slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource: c.caller,
		Level:     slog.Level(c.level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				if c.notime {
					return slog.Attr{}
				}
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			case slog.LevelKey:
				// Show "TRACE" instead of "DEBUG-4".
				if l, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(strings.ToUpper(Level(l).String()))
				}
			}
			return a
		},
	}
	switch c.format {
	case FormatJSON:
		return slog.NewJSONHandler(c.output, opts)
	case FormatText:
		return slog.NewTextHandler(c.output, opts)
	}
	return slog.DiscardHandler
}

// WithLevel sets the minimum log level.
func WithLevel(level Level) Option {
	return func(c config) config {
		c.level = level
		return c
	}
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(c config) config {
		c.format = format
		return c
	}
}

// WithCaller controls whether the source location is logged.
func WithCaller(enable bool) Option {
	return func(c config) config {
		c.caller = enable
		return c
	}
}

// WithoutTime drops timestamps, which keeps output stable in tests.
func WithoutTime() Option {
	return func(c config) config {
		c.notime = true
		return c
	}
}
