package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// loadConfig is a [kong.ConfigurationLoader] for YAML files holding a flat
// map of flag values:
//
//	log_level: debug
//	log_caller: true
//	site: site.yaml
//
// Flag names with dashes may be written with underscores. Flags given on
// the command line override the file.
func loadConfig(r io.Reader) (kong.Resolver, error) {
	var m map[string]any
	if err := yaml.NewDecoder(r).Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	c := make(config, len(m))
	for k, v := range m {
		c[k] = flagValue(v)
	}
	return c, nil
}

// flagValue converts YAML numbers to strings, which kong parses like the
// command line.
func flagValue(v any) any {
	switch v := v.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		s := make([]string, len(v))
		for i, e := range v {
			s[i] = fmt.Sprint(flagValue(e))
		}
		return strings.Join(s, ",")
	}
	return v
}

// config implements [kong.Resolver].
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}
	if v, ok := c[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return v, nil
	}
	return nil, nil
}
