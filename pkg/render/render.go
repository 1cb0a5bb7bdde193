// Package render turns plot snapshots into charts using gonum/plot, either as
// in-memory images for the live view or as image files on disk.
package render

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/sudorandom/debug-plotter/pkg/plotdata"
	"github.com/sudorandom/debug-plotter/pkg/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// DPI used to convert pixel sizes into vg lengths.
const DPI = 96

var (
	ErrUnsupportedFormat = errors.New("render: unsupported image format")
	ErrInvalidSize       = errors.New("render: invalid chart size")
)

var supportedFormats = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "svg": true,
	"pdf": true, "eps": true, "tif": true, "tiff": true,
}

// Pipeline renders snapshots. The zero value is not usable; call New.
// Rendering is a pure function of the snapshot, so a Pipeline is safe for
// concurrent use.
type Pipeline struct {
	grid bool
}

// Option modifies a Pipeline.
type Option func(*Pipeline)

// WithoutGrid disables the background grid.
func WithoutGrid() Option { return func(p *Pipeline) { p.grid = false } }

func New(opts ...Option) *Pipeline {
	p := &Pipeline{grid: true}
	for _, fn := range opts {
		fn(p)
	}
	return p
}

// Plot builds the gonum plot for snap without drawing it.
func (pl *Pipeline) Plot(snap plotdata.Snapshot) (*plot.Plot, error) {
	cfg := snap.Config

	p := plot.New()
	p.Title.Text = cfg.Caption
	p.X.Label.Text = cfg.XDesc
	p.Y.Label.Text = cfg.YDesc
	p.Legend.Top = true
	if pl.grid {
		p.Add(plotter.NewGrid())
	}

	for i, series := range snap.Series {
		xys := finitePoints(series.Points)
		if len(xys) == 0 {
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", series.Name, err)
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(series.Label, line)
	}

	x, y, ok := snap.Extents()
	if ok {
		x, y = padRange(x), padRange(y)
	} else {
		x, y = plotdata.Range{Min: 0, Max: 1}, plotdata.Range{Min: 0, Max: 1}
	}
	if cfg.XRange != nil {
		x = *cfg.XRange
	}
	if cfg.YRange != nil {
		y = *cfg.YRange
	}
	p.X.Min, p.X.Max = x.Min, x.Max
	p.Y.Min, p.Y.Max = y.Min, y.Max
	return p, nil
}

// Image renders snap into an RGBA image of the configured pixel size.
func (pl *Pipeline) Image(snap plotdata.Snapshot) (image.Image, error) {
	w, h, err := lengths(snap.Config.Size)
	if err != nil {
		return nil, err
	}
	p, err := pl.Plot(snap)
	if err != nil {
		return nil, err
	}
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(DPI))
	p.Draw(draw.New(c))
	return c.Image(), nil
}

// Encode renders snap in the given format ("png", "svg", ...) and writes it to w.
func (pl *Pipeline) Encode(snap plotdata.Snapshot, w io.Writer, format string) error {
	if !supportedFormats[format] {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	wl, hl, err := lengths(snap.Config.Size)
	if err != nil {
		return err
	}
	p, err := pl.Plot(snap)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(wl, hl, format)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// RenderFile renders snap to its configured path. The format follows the
// path extension. The file is replaced atomically.
func (pl *Pipeline) RenderFile(snap plotdata.Snapshot) error {
	path := snap.Config.Path
	format := utils.FormatFromPath(path)
	if !supportedFormats[format] {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
	return utils.WriteFileAtomic(path, func(w io.Writer) error {
		return pl.Encode(snap, w, format)
	})
}

func lengths(size plotdata.Size) (vg.Length, vg.Length, error) {
	if !size.Valid() {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrInvalidSize, size.Width, size.Height)
	}
	toLength := func(px int) vg.Length { return vg.Length(px) * vg.Inch / DPI }
	return toLength(size.Width), toLength(size.Height), nil
}

// finitePoints drops NaN and infinite samples, which gonum refuses to plot.
func finitePoints(points []plotdata.Point) plotter.XYs {
	xys := make(plotter.XYs, 0, len(points))
	for _, pt := range points {
		if isFinite(pt.X) && isFinite(pt.Y) {
			xys = append(xys, plotter.XY{X: pt.X, Y: pt.Y})
		}
	}
	return xys
}

// padRange widens a degenerate range so a single value still gets a visible span.
func padRange(r plotdata.Range) plotdata.Range {
	if r.Min == r.Max {
		return plotdata.Range{Min: r.Min - 0.5, Max: r.Max + 0.5}
	}
	return r
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
