package window

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudorandom/debug-plotter/pkg/plotdata"
)

func newTestDisplay(t *testing.T) *Display {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return NewDisplay("", logger)
}

func TestGridLayout(t *testing.T) {
	tests := []struct {
		n          int
		cols, rows int
	}{
		{0, 1, 1},
		{1, 1, 1},
		{2, 2, 1},
		{3, 2, 2},
		{4, 2, 2},
		{5, 3, 2},
		{9, 3, 3},
		{10, 4, 3},
	}
	for _, tt := range tests {
		cols, rows := gridLayout(tt.n)
		assert.Equal(t, tt.cols, cols, "cols for %d panes", tt.n)
		assert.Equal(t, tt.rows, rows, "rows for %d panes", tt.n)
	}
}

func TestWindowSize(t *testing.T) {
	w, h := windowSize(nil)
	assert.Equal(t, plotdata.DefaultWidth, w)
	assert.Equal(t, plotdata.DefaultHeight, h)

	w, h = windowSize([]plotdata.Size{{Width: 400, Height: 300}, {Width: 640, Height: 200}, {Width: 100, Height: 100}})
	assert.Equal(t, 2*640, w)
	assert.Equal(t, 2*300, h)
}

func TestOpenAndDraw(t *testing.T) {
	d := newTestDisplay(t)
	assert.Equal(t, defaultTitle, d.Title)

	win, err := d.Open("Live Trigonometry", plotdata.Size{})
	require.NoError(t, err)
	assert.Equal(t, 1, d.Panes())
	assert.False(t, win.Closed())

	p := win.(*pane)
	assert.Equal(t, plotdata.Size{Width: plotdata.DefaultWidth, Height: plotdata.DefaultHeight}, p.size)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	require.NoError(t, win.DrawFrame(img))
	assert.Same(t, img, p.lastFrame())

	win.Close()
	assert.True(t, win.Closed())
	require.ErrorIs(t, win.DrawFrame(img), ErrClosed)

	assert.Empty(t, d.livePanes())
	assert.Zero(t, d.Panes())
}

func TestShutdownClosesPanes(t *testing.T) {
	d := newTestDisplay(t)
	a, err := d.Open("a", plotdata.Size{Width: 10, Height: 10})
	require.NoError(t, err)
	b, err := d.Open("b", plotdata.Size{Width: 10, Height: 10})
	require.NoError(t, err)

	d.shutdown()
	assert.True(t, d.Closed())
	assert.True(t, a.Closed())
	assert.True(t, b.Closed())

	_, err = d.Open("c", plotdata.Size{})
	require.ErrorIs(t, err, ErrClosed)
}

func TestCapture(t *testing.T) {
	d := newTestDisplay(t)
	dir := filepath.Join(t.TempDir(), "frames")

	empty, err := d.Open("no frame yet", plotdata.Size{})
	require.NoError(t, err)
	_ = empty
	win, err := d.Open("Live Trigonometry", plotdata.Size{})
	require.NoError(t, err)

	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	require.NoError(t, win.DrawFrame(img))

	paths, err := d.Capture(dir)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "01-Live_Trigonometry.png")}, paths)

	f, err := os.Open(paths[0])
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
	r, _, _, _ := decoded.At(1, 1).RGBA()
	assert.EqualValues(t, 0xffff, r)
}
