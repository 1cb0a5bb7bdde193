// Package live keeps a window up to date with the latest state of a plot
// without ever blocking the code that feeds the plot.
//
// Each live plot gets one Bridge. The first Notify starts a background task
// that opens a window and redraws it whenever a newer generation of the plot
// is available. Notifications are coalesced through a single-slot mailbox:
// if several updates happen between two redraws, only the latest state is
// drawn. Once the window is closed, or cannot be opened, the bridge is Closed
// for good and Notify reports false so the caller can fall back to files.
package live

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sudorandom/debug-plotter/pkg/plotdata"
)

// DefaultRedrawInterval is how often the task wakes up without notifications
// to look for missed generations and closed windows.
const DefaultRedrawInterval = 250 * time.Millisecond

// State is the lifecycle stage of a Bridge.
type State int32

const (
	Uninitialized State = iota
	Running
	Closed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Window is a live surface that shows one chart frame at a time.
type Window interface {
	DrawFrame(img image.Image) error
	Closed() bool
	Close()
}

// Opener creates windows.
type Opener interface {
	Open(title string, size plotdata.Size) (Window, error)
}

// Source is the plot state a bridge draws from.
type Source interface {
	Snapshot() plotdata.Snapshot
	Generation() uint64
}

// FrameRenderer turns a snapshot into a frame.
type FrameRenderer interface {
	Image(snap plotdata.Snapshot) (image.Image, error)
}

// BridgeOptions tune a Bridge. The zero value is usable.
type BridgeOptions struct {
	// RedrawInterval defaults to DefaultRedrawInterval.
	RedrawInterval time.Duration
	Logger         logrus.FieldLogger
}

// Bridge feeds one plot into one live window from a background task.
type Bridge struct {
	ctx      context.Context
	source   Source
	opener   Opener
	renderer FrameRenderer
	interval time.Duration
	log      logrus.FieldLogger

	mu      sync.Mutex // guards the Uninitialized -> Running transition
	state   atomic.Int32
	mailbox chan struct{}
	done    chan struct{}

	drawn   atomic.Uint64
	lastGen atomic.Uint64
}

// NewBridge returns an Uninitialized bridge. The background task, once
// started, lives until ctx is cancelled or the window closes.
func NewBridge(ctx context.Context, source Source, opener Opener, renderer FrameRenderer, opts BridgeOptions) *Bridge {
	if opts.RedrawInterval <= 0 {
		opts.RedrawInterval = DefaultRedrawInterval
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Bridge{
		ctx:      ctx,
		source:   source,
		opener:   opener,
		renderer: renderer,
		interval: opts.RedrawInterval,
		log:      opts.Logger,
		mailbox:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// State returns the current lifecycle stage.
func (b *Bridge) State() State { return State(b.state.Load()) }

// Drawn returns the number of frames drawn so far.
func (b *Bridge) Drawn() uint64 { return b.drawn.Load() }

// LastGeneration returns the generation of the last frame drawn.
func (b *Bridge) LastGeneration() uint64 { return b.lastGen.Load() }

// Done is closed when the background task has exited. It is never closed
// for a bridge that was not started.
func (b *Bridge) Done() <-chan struct{} { return b.done }

// Notify tells the bridge a newer generation may be available. It never
// blocks. It returns false once the bridge is Closed.
func (b *Bridge) Notify() bool {
	switch b.State() {
	case Closed:
		return false
	case Uninitialized:
		b.start()
		if b.State() == Closed {
			return false
		}
	}
	select {
	case b.mailbox <- struct{}{}:
	default:
		// A wake-up is already pending; it will pick up the latest state.
	}
	return true
}

func (b *Bridge) start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.State() != Uninitialized {
		return
	}
	if b.opener == nil || b.renderer == nil {
		b.log.Warn("Live view requested but no window opener is configured")
		b.state.Store(int32(Closed))
		close(b.done)
		return
	}
	if b.ctx.Err() != nil {
		b.state.Store(int32(Closed))
		close(b.done)
		return
	}
	b.state.Store(int32(Running))
	go b.run()
}

func (b *Bridge) run() {
	defer close(b.done)
	defer b.state.Store(int32(Closed))

	cfg := b.source.Snapshot().Config
	win, err := b.opener.Open(cfg.Caption, cfg.Size)
	if err != nil {
		b.log.WithError(err).Warn("Failed to open live window")
		return
	}
	defer win.Close()
	b.log.WithField("size", cfg.Size).Debug("Live window opened")

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.ctx.Done():
			b.log.Debug("Live view stopped")
			return
		case <-b.mailbox:
		case <-ticker.C:
		}

		if win.Closed() {
			b.log.Info("Live window closed")
			return
		}
		if b.source.Generation() <= b.lastGen.Load() {
			continue
		}

		snap := b.source.Snapshot()
		img, err := b.renderFrame(snap)
		if err != nil {
			b.log.WithError(err).WithField("generation", snap.Generation).Error("Failed to render live frame")
			// Don't retry the same generation on every tick.
			b.lastGen.Store(snap.Generation)
			continue
		}
		if err := win.DrawFrame(img); err != nil {
			b.log.WithError(err).Warn("Live window failed, closing")
			return
		}
		b.lastGen.Store(snap.Generation)
		b.drawn.Add(1)
	}
}

func (b *Bridge) renderFrame(snap plotdata.Snapshot) (img image.Image, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("live: renderer panicked: %v", p)
		}
	}()
	return b.renderer.Image(snap)
}
