// Package window shows live plots in a single ebiten window. Every live plot
// becomes a pane; panes are tiled in a grid that grows as plots are opened.
package window

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/sirupsen/logrus"
	"github.com/sudorandom/debug-plotter/pkg/live"
	"github.com/sudorandom/debug-plotter/pkg/plotdata"
	"golang.org/x/image/font/gofont/goregular"
)

// ErrClosed is returned when drawing to or opening panes on a closed display.
var ErrClosed = errors.New("window: display closed")

const defaultTitle = "debug-plotter"

var (
	backgroundColor = color.RGBA{R: 0xf4, G: 0xf4, B: 0xf4, A: 0xff}
	placeholderText = color.RGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xff}
)

// Display is an ebiten.Game and a live.Opener. Open may be called from any
// goroutine; Run must be called from the main goroutine.
type Display struct {
	Title string
	TPS   int
	Log   logrus.FieldLogger

	mu    sync.Mutex
	panes []*pane
	ctx   context.Context

	closed atomic.Bool

	// Owned by the ebiten goroutine.
	fontSource *text.GoTextFaceSource
	width      int
	height     int
}

var _ live.Opener = (*Display)(nil)

// NewDisplay returns a display with no panes. A nil log uses the logrus
// standard logger.
func NewDisplay(title string, log logrus.FieldLogger) *Display {
	if title == "" {
		title = defaultTitle
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		log.WithError(err).Warn("Failed to load placeholder font")
	}
	return &Display{
		Title:      title,
		Log:        log,
		fontSource: s,
		width:      plotdata.DefaultWidth,
		height:     plotdata.DefaultHeight,
	}
}

// Open adds a pane for one plot.
func (d *Display) Open(title string, size plotdata.Size) (live.Window, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}
	if !size.Valid() {
		size = plotdata.Size{Width: plotdata.DefaultWidth, Height: plotdata.DefaultHeight}
	}
	p := &pane{display: d, title: title, size: size}

	d.mu.Lock()
	d.panes = append(d.panes, p)
	n := len(d.panes)
	d.mu.Unlock()

	d.Log.WithFields(logrus.Fields{"plot": title, "panes": n}).Debug("Pane opened")
	return p, nil
}

// Closed reports whether Run has returned.
func (d *Display) Closed() bool { return d.closed.Load() }

// Panes returns the number of open panes.
func (d *Display) Panes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.panes)
}

// Run opens the window and blocks until it is closed or ctx is cancelled.
// Every pane reports Closed once Run returns.
func (d *Display) Run(ctx context.Context) error {
	d.mu.Lock()
	d.ctx = ctx
	d.mu.Unlock()
	defer d.shutdown()

	if d.TPS > 0 {
		ebiten.SetTPS(d.TPS)
	}
	ebiten.SetWindowTitle(d.Title)
	ebiten.SetWindowSize(d.width, d.height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(d)
}

func (d *Display) shutdown() {
	d.closed.Store(true)
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.panes {
		p.closed.Store(true)
	}
	d.Log.Debug("Display closed")
}

// livePanes drops closed panes and returns the rest.
func (d *Display) livePanes() []*pane {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.panes[:0]
	for _, p := range d.panes {
		if p.closed.Load() {
			p.dispose()
			continue
		}
		kept = append(kept, p)
	}
	clear(d.panes[len(kept):])
	d.panes = kept
	return append([]*pane(nil), kept...)
}

func (d *Display) Update() error {
	d.mu.Lock()
	ctx := d.ctx
	d.mu.Unlock()
	if ctx != nil && ctx.Err() != nil {
		return ebiten.Termination
	}

	panes := d.livePanes()
	for _, p := range panes {
		p.upload()
	}

	w, h := windowSize(paneSizes(panes))
	if w != d.width || h != d.height {
		d.width, d.height = w, h
		ebiten.SetWindowSize(w, h)
	}
	return nil
}

func (d *Display) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	d.mu.Lock()
	panes := append([]*pane(nil), d.panes...)
	d.mu.Unlock()

	cell := cellSize(paneSizes(panes))
	cols, _ := gridLayout(len(panes))
	for i, p := range panes {
		x := float64((i % cols) * cell.Width)
		y := float64((i / cols) * cell.Height)
		if p.tex == nil {
			d.drawPlaceholder(screen, p, x, y, cell)
			continue
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(x, y)
		screen.DrawImage(p.tex, op)
	}
}

func (d *Display) drawPlaceholder(screen *ebiten.Image, p *pane, x, y float64, cell plotdata.Size) {
	if d.fontSource == nil {
		return
	}
	face := &text.GoTextFace{Source: d.fontSource, Size: 16}
	label := p.title + ": waiting for data"
	tw, th := text.Measure(label, face, 0)

	op := &text.DrawOptions{}
	op.GeoM.Translate(x+(float64(cell.Width)-tw)/2, y+(float64(cell.Height)-th)/2)
	op.ColorScale.ScaleWithColor(placeholderText)
	text.Draw(screen, label, face, op)
}

func (d *Display) Layout(_, _ int) (int, int) {
	return max(d.width, 1), max(d.height, 1)
}

// pane is one plot inside the display.
type pane struct {
	display *Display
	title   string
	size    plotdata.Size
	closed  atomic.Bool

	mu      sync.Mutex
	frame   image.Image // latest frame handed over by the bridge
	pending bool

	tex *ebiten.Image // ebiten goroutine only
}

var _ live.Window = (*pane)(nil)

// DrawFrame hands img to the display. The previous frame is replaced if the
// display has not picked it up yet.
func (p *pane) DrawFrame(img image.Image) error {
	if p.Closed() {
		return ErrClosed
	}
	p.mu.Lock()
	p.frame = img
	p.pending = true
	p.mu.Unlock()
	return nil
}

func (p *pane) Closed() bool { return p.closed.Load() || p.display.closed.Load() }

func (p *pane) Close() { p.closed.Store(true) }

func (p *pane) lastFrame() image.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame
}

func (p *pane) upload() {
	p.mu.Lock()
	frame, pending := p.frame, p.pending
	p.pending = false
	p.mu.Unlock()
	if !pending || frame == nil {
		return
	}
	p.dispose()
	p.tex = ebiten.NewImageFromImage(frame)
}

func (p *pane) dispose() {
	if p.tex != nil {
		p.tex.Deallocate()
		p.tex = nil
	}
}
