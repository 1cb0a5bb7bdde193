package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"
	"github.com/sudorandom/debug-plotter/pkg/debugplot"
)

type Globals struct {
	Verbose int    `short:"v" type:"counter" help:"Increase log verbosity (-v debug, -vv trace)."`
	LogJSON bool   `name:"log-json" help:"Log as JSON."`
	OutDir  string `name:"out-dir" default:".plots" type:"path" help:"Directory plots are written to."`

	ctx context.Context
	log *logrus.Logger
}

type CLI struct {
	Globals

	Trig     TrigCmd     `cmd:"" default:"1" help:"Plot sin(x) and cos(x) to a file."`
	Options  OptionsCmd  `cmd:"" help:"Plot with every configuration option set."`
	Renaming RenamingCmd `cmd:"" help:"Plot series under custom legend labels."`
	Stress   StressCmd   `cmd:"" help:"Update many plots from many goroutines."`
	Live     LiveCmd     `cmd:"" help:"Show a continuously updating window."`
}

func newLogger(g *Globals) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	switch {
	case g.Verbose >= 2:
		log.SetLevel(logrus.TraceLevel)
	case g.Verbose == 1:
		log.SetLevel(logrus.DebugLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
	if g.LogJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("plot-demo"),
		kong.Description("Examples for the debug plotter."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.ctx = ctx
	cli.log = newLogger(&cli.Globals)

	err := kctx.Run(&cli.Globals)
	debugplot.Shutdown()
	kctx.FatalIfErrorf(err)
}
