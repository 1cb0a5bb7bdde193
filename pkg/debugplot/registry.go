package debugplot

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sudorandom/debug-plotter/pkg/live"
	"github.com/sudorandom/debug-plotter/pkg/plotdata"
	"github.com/sudorandom/debug-plotter/pkg/render"
	"golang.org/x/sync/errgroup"
)

// Registry maps plot identities to their entries. It is safe for concurrent
// use. Entries are never removed: memory is bounded by the number of
// distinct identities times the per-series capacity.
type Registry struct {
	opt    Options
	ctx    context.Context
	cancel context.CancelFunc
	log    logrus.FieldLogger
	closed atomic.Bool

	mu      sync.RWMutex // guards entries only, never held during updates or renders
	entries map[plotdata.Identity]*Entry
}

// New creates an empty registry. Without options it renders files with
// gonum/plot, rewrites them on every update and has no live window support.
func New(opts ...Option) *Registry {
	o := Options{Enabled: true}
	for _, fn := range opts {
		fn(&o)
	}
	if o.Renderer == nil || o.FrameRenderer == nil {
		p := render.New()
		if o.Renderer == nil {
			o.Renderer = p
		}
		if o.FrameRenderer == nil {
			o.FrameRenderer = p
		}
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if o.Context == nil {
		o.Context = context.Background()
	}
	if o.FlushConcurrency <= 0 {
		o.FlushConcurrency = runtime.GOMAXPROCS(0)
	}
	if o.CloseTimeout <= 0 {
		o.CloseTimeout = time.Second
	}
	ctx, cancel := context.WithCancel(o.Context)
	return &Registry{
		opt:     o,
		ctx:     ctx,
		cancel:  cancel,
		log:     o.Logger,
		entries: make(map[plotdata.Identity]*Entry),
	}
}

// Enabled reports whether Update records anything.
func (r *Registry) Enabled() bool { return r.opt.Enabled }

// Lookup returns the entry for id, if present.
func (r *Registry) Lookup(id plotdata.Identity) (*Entry, bool) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	return e, ok
}

// GetOrCreate returns the entry for id, creating it from cfg on first use.
// The configuration of an existing entry is never changed; differing fields
// in cfg are ignored and logged once per entry. Exactly one entry is ever
// created per identity, even under concurrent first use. A missing caption
// defaults to the caller's file and line.
func (r *Registry) GetOrCreate(id plotdata.Identity, cfg plotdata.Config) (*Entry, bool) {
	return r.getOrCreate(id, callSite(2), cfg)
}

func (r *Registry) getOrCreate(id plotdata.Identity, site string, cfg plotdata.Config) (*Entry, bool) {
	if e, ok := r.Lookup(id); ok {
		r.checkConflicts(e, cfg)
		return e, false
	}

	normalized, fixed := cfg.Normalize(site)

	r.mu.Lock()
	if e, ok := r.entries[id]; ok {
		r.mu.Unlock()
		r.checkConflicts(e, cfg)
		return e, false
	}
	e := r.newEntry(id, normalized)
	r.entries[id] = e
	r.mu.Unlock()

	if len(fixed) > 0 {
		e.log.WithField("fields", strings.Join(fixed, ",")).Warn("Invalid plot configuration replaced with defaults")
	}
	e.log.WithFields(logrus.Fields{
		"path":     normalized.Path,
		"live":     normalized.Live,
		"capacity": normalized.Capacity,
	}).Debug("Plot created")
	return e, true
}

func (r *Registry) newEntry(id plotdata.Identity, cfg plotdata.Config) *Entry {
	e := newEntry(id, cfg, r.log.WithField("plot", id.String()))
	if cfg.Live {
		e.bridge = live.NewBridge(r.ctx, e, r.opt.Opener, r.opt.FrameRenderer, live.BridgeOptions{
			RedrawInterval: r.opt.RedrawInterval,
			Logger:         e.log,
		})
	}
	return e
}

func (r *Registry) checkConflicts(e *Entry, cfg plotdata.Config) {
	fields := e.cfg.Conflicts(cfg)
	if len(fields) == 0 {
		return
	}
	if e.conflictLogged.CompareAndSwap(false, true) {
		e.log.WithField("fields", strings.Join(fields, ",")).Warn("Ignoring configuration that differs from the first invocation")
	}
}

// Update records one invocation for the plot id. It is a no-op when the
// registry is disabled. Failures are logged, never returned.
func (r *Registry) Update(id plotdata.Identity, cfg plotdata.Config, samples ...Sample) {
	if !r.opt.Enabled {
		return
	}
	r.update(id, callSite(2), cfg, samples)
}

// update records samples for id. site is the "dir/file.go:line" of the
// instrumented call, used as the default caption.
func (r *Registry) update(id plotdata.Identity, site string, cfg plotdata.Config, samples []Sample) {
	if id.IsZero() {
		r.log.WithField("plot", id.String()).Warn("Dropping samples for a plot without identity")
		return
	}
	e, _ := r.getOrCreate(id, site, cfg)
	e.Update(samples)
	r.publish(e)
}

// publish hands the new state to the live view, or renders it to disk.
func (r *Registry) publish(e *Entry) {
	if e.bridge != nil {
		if e.bridge.Notify() {
			return
		}
		if e.fallbackLogged.CompareAndSwap(false, true) {
			e.log.WithField("path", e.cfg.Path).Info("Live view unavailable, writing plot to file instead")
		}
	}
	if r.opt.Policy == RenderImmediate {
		r.renderEntry(e)
	}
}

func (r *Registry) renderEntry(e *Entry) error {
	err := e.renderFile(r.opt.Renderer)
	if err != nil {
		e.log.WithError(err).WithFields(logrus.Fields{
			"path":       e.cfg.Path,
			"generation": e.Generation(),
		}).Error("Failed to render plot")
	}
	return err
}

// Identities returns every known plot identity in deterministic order.
func (r *Registry) Identities() []plotdata.Identity {
	r.mu.RLock()
	ids := make([]plotdata.Identity, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Kind == ids[j].Kind {
			return ids[i].Name < ids[j].Name
		}
		return ids[i].Kind < ids[j].Kind
	})
	return ids
}

func (r *Registry) snapshotEntries() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	return entries
}

// Flush writes every plot that changed since its last render and is not
// currently shown in a live window. A failing plot does not stop the others
// from being written; all render errors are returned joined. ctx only stops
// renders that have not started yet.
func (r *Registry) Flush(ctx context.Context) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(r.opt.FlushConcurrency)
	for _, e := range r.snapshotEntries() {
		if e.bridge != nil && e.bridge.State() == live.Running {
			continue
		}
		if !e.Dirty() {
			continue
		}
		g.Go(func() error {
			err := ctx.Err()
			if err == nil {
				err = r.renderEntry(e)
			}
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Close stops every live window, waits up to the close timeout for them to
// exit and writes all pending plots to disk. Plots that were live are
// written too. Updates after Close keep working but render to files only.
func (r *Registry) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	r.cancel()

	deadline := time.NewTimer(r.opt.CloseTimeout)
	defer deadline.Stop()
	for _, e := range r.snapshotEntries() {
		if e.bridge == nil || e.bridge.State() == live.Uninitialized {
			continue
		}
		select {
		case <-e.bridge.Done():
		case <-deadline.C:
			r.log.Warn("Timed out waiting for live windows to close")
			return r.Flush(context.Background())
		}
	}
	return r.Flush(context.Background())
}
