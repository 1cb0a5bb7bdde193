package debugplot

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sudorandom/debug-plotter/pkg/live"
	"github.com/sudorandom/debug-plotter/pkg/plotdata"
)

// FileRenderer writes a snapshot to the path in its config.
type FileRenderer interface {
	RenderFile(snap plotdata.Snapshot) error
}

// RenderPolicy controls when file plots are written.
type RenderPolicy int

const (
	// RenderImmediate rewrites the file on every update.
	RenderImmediate RenderPolicy = iota
	// RenderOnFlush only writes files from Flush and Close.
	RenderOnFlush
)

func (p RenderPolicy) String() string {
	switch p {
	case RenderImmediate:
		return "immediate"
	case RenderOnFlush:
		return "on-flush"
	default:
		return "unknown"
	}
}

// Options control registry behavior.
type Options struct {
	Renderer         FileRenderer
	FrameRenderer    live.FrameRenderer
	Opener           live.Opener
	Logger           logrus.FieldLogger
	Policy           RenderPolicy
	RedrawInterval   time.Duration
	Context          context.Context
	Enabled          bool
	FlushConcurrency int
	CloseTimeout     time.Duration
}

// Option modifies Options.
type Option func(*Options)

// WithRenderer sets the renderer used for file output.
func WithRenderer(r FileRenderer) Option { return func(o *Options) { o.Renderer = r } }

// WithFrameRenderer sets the renderer used for live frames.
func WithFrameRenderer(r live.FrameRenderer) Option { return func(o *Options) { o.FrameRenderer = r } }

// WithOpener enables live plots by providing a way to open windows.
func WithOpener(op live.Opener) Option { return func(o *Options) { o.Opener = op } }

// WithLogger sets the logger; the logrus standard logger is the default.
func WithLogger(l logrus.FieldLogger) Option { return func(o *Options) { o.Logger = l } }

// WithRenderPolicy selects when file plots are written.
func WithRenderPolicy(p RenderPolicy) Option { return func(o *Options) { o.Policy = p } }

// WithRedrawInterval sets how often live views look for missed updates.
func WithRedrawInterval(d time.Duration) Option { return func(o *Options) { o.RedrawInterval = d } }

// WithContext ties the lifetime of live windows to ctx.
func WithContext(ctx context.Context) Option { return func(o *Options) { o.Context = ctx } }

// WithEnabled turns Update into a no-op when false.
func WithEnabled(enabled bool) Option { return func(o *Options) { o.Enabled = enabled } }

// WithFlushConcurrency limits how many plots Flush renders at once.
func WithFlushConcurrency(n int) Option { return func(o *Options) { o.FlushConcurrency = n } }

// WithCloseTimeout bounds how long Close waits for live windows to stop.
func WithCloseTimeout(d time.Duration) Option { return func(o *Options) { o.CloseTimeout = d } }
