// Command voicebridge runs the voice processing chain over raw PCM files.
//
// Usage:
//
//	voicebridge process --a-in a.raw --b-in b.raw --a-out a-played.raw --b-out b-played.raw
//	voicebridge bench --chunks 2000 --telephone
//	voicebridge analyze --processed capture.raw
//
// All audio is headerless mono signed 16-bit little-endian PCM. Pipeline
// settings come from flags, from a YAML file given with --config, or from
// VOICE_* environment variables.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-voice/internal/cli"
)

var (
	version = "0.1.0"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config   kong.ConfigFlag `short:"c" help:"Load flags from a YAML file."`
	LogLevel string          `name:"log-level" default:"warn" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)."`
	LogJSON  bool            `name:"log-json" help:"Log as JSON instead of text."`
	Version  versionFlag     `short:"v" help:"Show version information."`

	Pipeline PipelineFlags `embed:""`

	Stdout io.Writer `kong:"-"`
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Process ProcessCmd `cmd:"" help:"Bridge two raw PCM captures through two pipelines."`
	Bench   BenchCmd   `cmd:"" help:"Measure per-chunk processing time against the real-time budget."`
	Analyze AnalyzeCmd `cmd:"" help:"Report band energy, hum and level statistics of a raw PCM file."`
}

type versionFlag bool

// BeforeReset prints the version and exits before required flags are checked.
func (v versionFlag) BeforeReset(app *kong.Kong, vars kong.Vars) error {
	cli.PrintVersion(app.Stdout, vars["version"])
	app.Exit(0)
	return nil
}

func newParser(c *CLI, opts ...kong.Option) (*kong.Kong, error) {
	base := []kong.Option{
		kong.Name("voicebridge"),
		kong.Description("Voice processing chain for two-party calls"),
		kong.UsageOnError(),
		kong.Configuration(kongyaml.Loader),
		kong.DefaultEnvars("VOICE"),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	}
	return kong.New(c, append(base, opts...)...)
}

func configureLogging(level string, asJSON bool, w io.Writer) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(w)
	if asJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func main() {
	c := &CLI{Globals: Globals{Stdout: os.Stdout}}

	parser, err := newParser(c)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := configureLogging(c.LogLevel, c.LogJSON, os.Stderr); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	if err := ctx.Run(&c.Globals); err != nil {
		cli.PrintError(fmt.Sprintf("%s: %v", ctx.Command(), err))
		os.Exit(1)
	}
}
