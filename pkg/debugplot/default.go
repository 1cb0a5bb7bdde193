package debugplot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/sudorandom/debug-plotter/pkg/plotdata"
)

// EnvVar disables the default registry when set to 0, false, off or no.
const EnvVar = "DEBUGPLOT"

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Init creates the process-wide registry with opts. Only the first call,
// or the first Plot, creates it; options passed to later calls are ignored.
// The registry is never torn down; call Shutdown before exit to write
// pending plots and close live windows.
func Init(opts ...Option) *Registry {
	created := false
	defaultOnce.Do(func() {
		all := append([]Option{WithEnabled(enabledByDefault())}, opts...)
		defaultRegistry = New(all...)
		created = true
	})
	if !created && len(opts) > 0 {
		defaultRegistry.log.Warn("debugplot.Init called after the default registry was created, options ignored")
	}
	return defaultRegistry
}

// Default returns the process-wide registry, creating it on first use.
func Default() *Registry { return Init() }

// Plot records samples on the default registry. The plot is identified by
// cfg.Caption, else cfg.Path, else the calling file and line. It does
// nothing when plotting is disabled by build tag or environment.
func Plot(cfg Config, samples ...Sample) {
	r := Default()
	if !r.Enabled() {
		return
	}
	site := callSite(2)
	r.update(resolve(cfg, site), site, cfg, samples)
}

// PlotAlways is Plot without the enable switch.
func PlotAlways(cfg Config, samples ...Sample) {
	site := callSite(2)
	Default().update(resolve(cfg, site), site, cfg, samples)
}

// Flush writes all pending file plots of the default registry.
func Flush() {
	if err := Default().Flush(context.Background()); err != nil {
		Default().log.WithError(err).Error("Failed to flush plots")
	}
}

// Shutdown closes live windows and flushes the default registry.
func Shutdown() {
	if err := Default().Close(); err != nil {
		Default().log.WithError(err).Debug("Shutdown")
	}
}

func resolve(cfg Config, site string) plotdata.Identity {
	return plotdata.ResolveIdentity(cfg.Caption, cfg.Path, site)
}

// callSite returns "dir/file.go:line" of the caller skip frames up.
func callSite(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	dir := filepath.Base(filepath.Dir(file))
	return fmt.Sprintf("%s/%s:%d", dir, filepath.Base(file), line)
}

func enabledByDefault() bool {
	if !buildEnabled {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvVar))) {
	case "0", "false", "off", "no":
		return false
	}
	return true
}
