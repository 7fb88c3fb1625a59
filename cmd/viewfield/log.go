package main

import (
	"io"

	"github.com/alecthomas/kong"

	"blake.io/viewfield/internal/log"
)

type logConfig struct {
	Level  string `default:"info" enum:"trace,debug,info,warn,error" help:"Set log level."`
	Format string `default:"text" enum:"text,json"                   help:"Set log format."`
	Caller bool   `default:"false"                                   help:"Include caller information." negatable:""`
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

func (c *logConfig) logger(w io.Writer) log.Logger {
	return log.Make(w,
		log.WithLevel(log.ParseLevel(c.Level)),
		log.WithFormat(log.ParseFormat(c.Format)),
		log.WithCaller(c.Caller),
	)
}
