package main

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sudorandom/debug-plotter/pkg/debugplot"
	"github.com/sudorandom/debug-plotter/pkg/window"
	"golang.org/x/sync/errgroup"
)

func (g *Globals) init(opts ...debugplot.Option) *debugplot.Registry {
	all := append([]debugplot.Option{
		debugplot.WithLogger(g.log),
		debugplot.WithContext(g.ctx),
		debugplot.WithRenderPolicy(debugplot.RenderOnFlush),
	}, opts...)
	return debugplot.Init(all...)
}

func (g *Globals) path(name string) string {
	return filepath.Join(g.OutDir, name)
}

type TrigCmd struct {
	Step float64 `default:"0.01" help:"Distance between samples on the x axis."`
}

func (c *TrigCmd) Run(g *Globals) error {
	if c.Step <= 0 {
		return fmt.Errorf("step must be positive, got %v", c.Step)
	}
	g.init()
	for x := 0.0; x < 2*math.Pi; x += c.Step {
		debugplot.Plot(debugplot.Config{
			Caption: "Trigonometry",
			Path:    g.path("Trigonometry.png"),
			XDesc:   "x",
		},
			debugplot.XY("sin_x", x, math.Sin(x)),
			debugplot.XY("cos_x", x, math.Cos(x)),
		)
	}
	g.log.WithField("path", g.path("Trigonometry.png")).Info("Plot recorded")
	return nil
}

type OptionsCmd struct {
	Count int `default:"1000" help:"Number of samples."`
}

func (c *OptionsCmd) Run(g *Globals) error {
	g.init()
	cfg := debugplot.Config{
		Caption:  "Options",
		Path:     g.path("Options.jpg"),
		Size:     debugplot.Size{Width: 400, Height: 300},
		XDesc:    "X Description",
		YDesc:    "Y Description",
		XRange:   &debugplot.Range{Min: 0, Max: 500},
		YRange:   &debugplot.Range{Min: 0, Max: 500},
		Capacity: 1000,
	}
	for i := 0; i < c.Count; i++ {
		debugplot.Plot(cfg, debugplot.V("i", i))
	}
	g.log.WithField("path", cfg.Path).Info("Plot recorded")
	return nil
}

type RenamingCmd struct{}

func (c *RenamingCmd) Run(g *Globals) error {
	g.init()
	cfg := debugplot.Config{Caption: "Renaming", Path: g.path("Renaming.svg"), XDesc: "x"}
	for x := 0.0; x < 2*math.Pi; x += 0.01 {
		debugplot.Plot(cfg,
			debugplot.XY("a", x, math.Sin(x)).As("sin(x)"),
			debugplot.XY("b", x, math.Sin(x)*math.Cos(x)).As("sin(x) * cos(x)"),
		)
	}
	g.log.WithField("path", cfg.Path).Info("Plot recorded")
	return nil
}

type StressCmd struct {
	Goroutines int `default:"8" help:"Number of concurrent writers."`
	Updates    int `default:"10000" help:"Updates per writer."`
	Plots      int `default:"4" help:"Number of distinct plots the writers share."`
	Capacity   int `default:"500" help:"Samples kept per series."`
}

func (c *StressCmd) Run(g *Globals) error {
	if c.Goroutines <= 0 || c.Plots <= 0 {
		return fmt.Errorf("goroutines and plots must be positive")
	}
	reg := g.init()

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < c.Goroutines; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(uint64(w), 0))
			for i := 0; i < c.Updates; i++ {
				caption := fmt.Sprintf("Stress %d", (w+i)%c.Plots)
				debugplot.Plot(debugplot.Config{
					Caption:  caption,
					Path:     g.path(caption + ".png"),
					Capacity: c.Capacity,
				},
					debugplot.V("noise", rng.NormFloat64()),
					debugplot.V("writer", w),
				)
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	var total uint64
	for _, id := range reg.Identities() {
		if e, ok := reg.Lookup(id); ok {
			total += e.Generation()
		}
	}
	g.log.WithFields(logrus.Fields{
		"plots":   len(reg.Identities()),
		"updates": total,
		"elapsed": elapsed,
		"rate":    fmt.Sprintf("%.0f/s", float64(total)/elapsed.Seconds()),
	}).Info("Stress test finished")
	return nil
}

type LiveCmd struct {
	Duration   time.Duration `help:"Stop after this long (0 runs until the window is closed)."`
	Interval   time.Duration `default:"20ms" help:"Time between samples."`
	Redraw     time.Duration `default:"100ms" help:"Redraw interval of the live view."`
	Values     int           `default:"500" help:"Samples kept per series."`
	TPS        int           `default:"30" help:"Window ticks per second."`
	CaptureDir string        `name:"capture-dir" type:"path" help:"Write the last frame of every pane here on exit."`
}

func (c *LiveCmd) Run(g *Globals) error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", c.Interval)
	}
	display := window.NewDisplay("plot-demo", g.log)
	display.TPS = c.TPS

	ctx := g.ctx
	if c.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Duration)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g.init(
		debugplot.WithOpener(display),
		debugplot.WithRenderPolicy(debugplot.RenderImmediate),
		debugplot.WithRedrawInterval(c.Redraw),
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		c.feed(ctx, g)
		return nil
	})

	// ebiten owns the main goroutine until the window closes.
	err := display.Run(ctx)
	cancel()
	_ = eg.Wait()

	if c.CaptureDir != "" {
		if _, cerr := display.Capture(c.CaptureDir); cerr != nil {
			g.log.WithError(cerr).Error("Failed to capture frames")
		}
	}
	return err
}

func (c *LiveCmd) feed(ctx context.Context, g *Globals) {
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	trig := debugplot.Config{
		Caption:  "Live Trigonometry",
		Path:     g.path("Live_Trigonometry.png"),
		XDesc:    "x",
		Capacity: c.Values,
		Live:     true,
	}
	walk := debugplot.Config{
		Caption:  "Random Walk",
		Path:     g.path("Random_Walk.png"),
		Size:     debugplot.Size{Width: 480, Height: 360},
		Capacity: c.Values,
		Live:     true,
	}

	x, pos := 0.0, 0.0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		x += 0.05
		pos += rand.NormFloat64()
		debugplot.Plot(trig,
			debugplot.XY("sin_x", x, math.Sin(x)).As("sin(x)"),
			debugplot.XY("cos_x", x, math.Cos(x)).As("cos(x)"),
		)
		debugplot.Plot(walk, debugplot.V("position", pos))
	}
}
