package main

import (
	"context"
	"log/slog"

	"github.com/alecthomas/kong"
	"github.com/pkg/profile"

	"blake.io/viewfield/internal/log"
)

var profileModes = map[string]func(*profile.Profile){
	"cpu":   profile.CPUProfile,
	"mem":   profile.MemProfile,
	"block": profile.BlockProfile,
	"mutex": profile.MutexProfile,
	"trace": profile.TraceProfile,
}

type profileConfig struct {
	Mode string `default:"" enum:",cpu,mem,block,mutex,trace" help:"Write a profile of the command."`
	Dir  string `default:"."                                  help:"Profile output directory." type:"path"`
}

func (*profileConfig) group() kong.Group {
	return kong.Group{Key: "profile", Title: "Profiling options"}
}

// start starts profiling if a mode is set and returns the function that
// stops it.
func (c *profileConfig) start(ctx context.Context, logger log.Logger) (stop func()) {
	mode, ok := profileModes[c.Mode]
	if !ok {
		return func() {}
	}
	logger.DebugContext(ctx, "profile start", slog.String("mode", c.Mode), slog.String("dir", c.Dir))
	p := profile.Start(mode, profile.ProfilePath(c.Dir), profile.Quiet, profile.NoShutdownHook)
	return func() {
		p.Stop()
		logger.DebugContext(ctx, "profile stop", slog.String("mode", c.Mode))
	}
}
