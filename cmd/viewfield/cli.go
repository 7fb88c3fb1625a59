package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"golang.org/x/net/html"

	"blake.io/viewfield"
	"blake.io/viewfield/checks"
	"blake.io/viewfield/internal/log"
	"blake.io/viewfield/site"
)

type cli struct {
	Log     logConfig       `embed:"" group:"log"     prefix:"log-"`
	Profile profileConfig   `embed:"" group:"profile" prefix:"profile-"`
	Config  kong.ConfigFlag `help:"Load flag values from a YAML file." placeholder:"FILE"`

	Args   argsCmd   `cmd:"" help:"Parse an argument expression and replace its placeholders."`
	Render renderCmd `cmd:"" help:"Render an entity of a site file."`
	Check  checkCmd  `cmd:"" help:"Check the rendered HTML of an entity."`
}

// run parses args and runs the selected command. Output goes to stdout;
// logs and usage go to stderr.
func run(ctx context.Context, stdout, stderr io.Writer, exit func(int), args ...string) error {
	var c cli
	parser, err := kong.New(&c,
		kong.Name("viewfield"),
		kong.Description("Parse viewfield arguments and render site entities."),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(stdout, stderr),
		kong.ExplicitGroups([]kong.Group{c.Log.group(), c.Profile.group()}),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true, Summary: true}),
		kong.Configuration(loadConfig),
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger := c.Log.logger(stderr)
	logger.DebugContext(ctx, "logger initialized",
		slog.String("level", c.Log.Level),
		slog.String("format", c.Log.Format),
	)

	defer c.Profile.start(ctx, logger)()

	ktx.BindTo(ctx, (*context.Context)(nil))
	ktx.BindTo(stdout, (*io.Writer)(nil))
	ktx.Bind(logger)
	return ktx.Run()
}

type argsCmd struct {
	Type   string            `default:"node" help:"Entity type whose placeholders are replaced." short:"t"`
	Set    map[string]string `help:"Entity property as key=value. Use a:b=v for nested properties." short:"s"`
	Encode bool              `help:"Print the arguments as a single expression."`

	Expr string `arg:"" help:"Argument expression."`
}

func (c *argsCmd) Run(w io.Writer, logger log.Logger) error {
	args := viewfield.ParseArgs(c.Expr)
	logger.Trace("parsed arguments", slog.String("args", args.String()))
	if len(c.Set) > 0 {
		args = viewfield.Replace(args, c.Type, properties(c.Set))
	}
	if c.Encode {
		_, err := fmt.Fprintln(w, args.String())
		return err
	}
	for _, arg := range args {
		if _, err := fmt.Fprintf(w, "%q\n", arg); err != nil {
			return err
		}
	}
	return nil
}

// properties builds a record from key=value flags, nesting keys at each ':'.
func properties(set map[string]string) viewfield.Map {
	props := viewfield.Map{}
	for key, val := range set {
		m := props
		path := strings.Split(key, ":")
		for _, name := range path[:len(path)-1] {
			next, ok := m[name].(viewfield.Map)
			if !ok {
				next = viewfield.Map{}
				m[name] = next
			}
			m = next
		}
		m[path[len(path)-1]] = val
	}
	return props
}

type entityArgs struct {
	Site string `help:"Site file." required:"" type:"existingfile"`

	Type string `arg:"" help:"Entity type."`
	ID   string `arg:"" help:"Entity id."`
}

func (a *entityArgs) render(logger log.Logger) (string, error) {
	data, err := os.ReadFile(a.Site)
	if err != nil {
		return "", err
	}
	s, err := site.Parse(a.Site, data, site.WithLogger(logger))
	if err != nil {
		return "", err
	}
	n, err := s.RenderEntity(a.Type, a.ID)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

type renderCmd struct {
	Entity entityArgs `embed:""`
}

func (c *renderCmd) Run(w io.Writer, logger log.Logger) error {
	body, err := c.Entity.render(logger)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, body)
	return err
}

type checkCmd struct {
	Entity entityArgs `embed:""`

	Checks []string `arg:"" help:"Checks of the form 'selector op want'."`
}

var errChecksFailed = errors.New("checks failed")

func (c *checkCmd) Run(ctx context.Context, w io.Writer, logger log.Logger) error {
	body, err := c.Entity.render(logger)
	if err != nil {
		return err
	}
	var failed int
	for _, check := range c.Checks {
		if msg := checks.HTML(check, body); msg != "" {
			failed++
			fmt.Fprintf(w, "FAIL %s\n\t%s\n", check, msg)
			continue
		}
		logger.DebugContext(ctx, "check passed", slog.String("check", check))
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errChecksFailed, failed, len(c.Checks))
	}
	fmt.Fprintf(w, "ok %d checks\n", len(c.Checks))
	return nil
}
