package debugplot

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/sudorandom/debug-plotter/pkg/live"
	"github.com/sudorandom/debug-plotter/pkg/plotdata"
)

const defaultSeriesName = "y"

// Entry is the accumulated state of one plot. It is created by a Registry
// on first use of its identity and lives as long as the registry.
type Entry struct {
	id  plotdata.Identity
	cfg plotdata.Config // fixed at creation
	log logrus.FieldLogger

	mu          sync.Mutex
	order       []*plotdata.Buffer
	series      map[string]*plotdata.Buffer
	invocations uint64
	generation  atomic.Uint64 // bumped under mu, read without it

	renderMu       sync.Mutex
	rendered       atomic.Uint64 // generation last written to disk, stored under renderMu
	renderFailures atomic.Uint64

	conflictLogged atomic.Bool
	fallbackLogged atomic.Bool

	bridge *live.Bridge // nil unless the plot is live
}

func newEntry(id plotdata.Identity, cfg plotdata.Config, log logrus.FieldLogger) *Entry {
	return &Entry{
		id:     id,
		cfg:    cfg,
		log:    log,
		series: make(map[string]*plotdata.Buffer),
	}
}

func (e *Entry) Identity() plotdata.Identity { return e.id }

// Config returns the configuration established by the first invocation.
func (e *Entry) Config() plotdata.Config { return e.cfg }

// Generation returns the number of updates applied so far.
func (e *Entry) Generation() uint64 { return e.generation.Load() }

// RenderFailures returns how many file renders of this plot failed.
func (e *Entry) RenderFailures() uint64 { return e.renderFailures.Load() }

// Live returns the live bridge of the plot, or nil for file-only plots.
func (e *Entry) Live() *live.Bridge { return e.bridge }

// Dirty reports whether the plot changed since it was last written to disk.
func (e *Entry) Dirty() bool {
	return e.generation.Load() != e.rendered.Load()
}

// Update appends one invocation worth of samples and returns the new
// generation. Samples without an explicit x use the shared invocation
// counter, so every series of the plot lines up on the same implicit axis.
func (e *Entry) Update(samples []Sample) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.invocations++
	implicitX := float64(e.invocations)
	for _, s := range samples {
		name := s.Name
		if name == "" {
			name = defaultSeriesName
		}
		buf, ok := e.series[name]
		if !ok {
			buf = plotdata.NewBuffer(name, s.Label, e.cfg.Capacity)
			e.series[name] = buf
			e.order = append(e.order, buf)
		}
		x := implicitX
		if s.X != nil {
			x = *s.X
		}
		buf.Push(plotdata.Point{X: x, Y: s.Y})
	}
	return e.generation.Add(1)
}

// Snapshot returns a consistent copy of the plot.
func (e *Entry) Snapshot() plotdata.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	series := make([]plotdata.SeriesSnapshot, len(e.order))
	for i, buf := range e.order {
		series[i] = buf.Snapshot()
	}
	return plotdata.Snapshot{
		Identity:    e.id,
		Config:      e.cfg,
		Series:      series,
		Generation:  e.generation.Load(),
		Invocations: e.invocations,
	}
}

// renderFile writes the latest snapshot to disk. Renders of one entry never
// overlap and never wait on each other: if another goroutine is rendering,
// renderFile returns at once and that goroutine picks up the newer
// generation when it finishes.
func (e *Entry) renderFile(r FileRenderer) error {
	for {
		if !e.renderMu.TryLock() {
			return nil
		}
		gen, err := e.renderOnce(r)
		e.renderMu.Unlock()
		if err != nil {
			return err
		}
		// Writers that bumped the generation while we held renderMu gave up on
		// TryLock; render again on their behalf.
		if e.generation.Load() == gen {
			return nil
		}
	}
}

// renderOnce must be called with renderMu held.
func (e *Entry) renderOnce(r FileRenderer) (gen uint64, err error) {
	snap := e.Snapshot()
	if snap.Generation == e.rendered.Load() {
		return snap.Generation, nil
	}
	defer func() {
		if p := recover(); p != nil {
			err = &RenderPanicError{Value: p}
		}
		if err != nil {
			e.renderFailures.Add(1)
			return
		}
		e.rendered.Store(snap.Generation)
	}()
	return snap.Generation, r.RenderFile(snap)
}
