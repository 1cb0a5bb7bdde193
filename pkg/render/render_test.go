package render

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudorandom/debug-plotter/pkg/plotdata"
)

func testSnapshot(t *testing.T, path string) plotdata.Snapshot {
	t.Helper()
	cfg, _ := plotdata.Config{Caption: "Trigonometry", XDesc: "x", Path: path}.Normalize("render_test.go:1")
	var sin, cos []plotdata.Point
	for i := 0; i < 100; i++ {
		x := float64(i) / 100 * 2 * math.Pi
		sin = append(sin, plotdata.Point{X: x, Y: math.Sin(x)})
		cos = append(cos, plotdata.Point{X: x, Y: math.Cos(x)})
	}
	return plotdata.Snapshot{
		Identity: plotdata.Identity{Kind: plotdata.KindCaption, Name: cfg.Caption},
		Config:   cfg,
		Series: []plotdata.SeriesSnapshot{
			{Name: "sin_x", Label: "sin(x)", Points: sin},
			{Name: "cos_x", Label: "cos(x)", Points: cos},
		},
		Generation:  100,
		Invocations: 100,
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	p := New()
	snap := testSnapshot(t, "")

	var first, second bytes.Buffer
	require.NoError(t, p.Encode(snap, &first, "png"))
	require.NoError(t, p.Encode(snap, &second, "png"))
	require.NotZero(t, first.Len())
	require.True(t, bytes.Equal(first.Bytes(), second.Bytes()), "rendering the same snapshot twice must produce identical output")
}

func TestEmptySnapshotRenders(t *testing.T) {
	p := New()
	cfg, _ := plotdata.Config{Caption: "Empty"}.Normalize("s")
	snap := plotdata.Snapshot{Config: cfg}

	var buf bytes.Buffer
	require.NoError(t, p.Encode(snap, &buf, "png"))
	require.NotZero(t, buf.Len())

	gp, err := p.Plot(snap)
	require.NoError(t, err)
	assert.Equal(t, 0.0, gp.X.Min)
	assert.Equal(t, 1.0, gp.X.Max)
}

func TestPlotRanges(t *testing.T) {
	p := New()
	snap := testSnapshot(t, "")

	gp, err := p.Plot(snap)
	require.NoError(t, err)
	assert.InDelta(t, 0, gp.X.Min, 1e-9)
	assert.InDelta(t, 99.0/100*2*math.Pi, gp.X.Max, 1e-9)
	assert.Equal(t, "Trigonometry", gp.Title.Text)
	assert.Equal(t, "x", gp.X.Label.Text)

	snap.Config.XRange = &plotdata.Range{Min: 0, Max: 500}
	snap.Config.YRange = &plotdata.Range{Min: -500, Max: 500}
	gp, err = p.Plot(snap)
	require.NoError(t, err)
	assert.Equal(t, 500.0, gp.X.Max)
	assert.Equal(t, -500.0, gp.Y.Min)
}

func TestPlotSkipsNonFinite(t *testing.T) {
	p := New()
	cfg, _ := plotdata.Config{Caption: "NaN"}.Normalize("s")
	snap := plotdata.Snapshot{Config: cfg, Series: []plotdata.SeriesSnapshot{
		{Name: "a", Label: "a", Points: []plotdata.Point{{X: 1, Y: math.NaN()}, {X: 2, Y: 3}, {X: math.Inf(1), Y: 1}}},
	}}
	gp, err := p.Plot(snap)
	require.NoError(t, err)
	// Single finite point gets padded to a visible span.
	assert.Equal(t, 1.5, gp.X.Min)
	assert.Equal(t, 2.5, gp.X.Max)
}

func TestImageSize(t *testing.T) {
	p := New()
	snap := testSnapshot(t, "")
	snap.Config.Size = plotdata.Size{Width: 400, Height: 300}

	img, err := p.Image(snap)
	require.NoError(t, err)
	assert.InDelta(t, 400, img.Bounds().Dx(), 1)
	assert.InDelta(t, 300, img.Bounds().Dy(), 1)
}

func TestInvalidSize(t *testing.T) {
	p := New()
	snap := testSnapshot(t, "")
	snap.Config.Size = plotdata.Size{}

	_, err := p.Image(snap)
	require.ErrorIs(t, err, ErrInvalidSize)
}

func TestRenderFile(t *testing.T) {
	tmpDir := t.TempDir()
	p := New()

	for _, name := range []string{"plots/Options.jpg", "out.png", "vector/out.svg"} {
		path := filepath.Join(tmpDir, name)
		require.NoError(t, p.RenderFile(testSnapshot(t, path)), name)
		info, err := os.Stat(path)
		require.NoError(t, err, name)
		assert.NotZero(t, info.Size(), name)
	}
}

func TestRenderFileUnsupportedFormat(t *testing.T) {
	p := New()
	err := p.RenderFile(testSnapshot(t, filepath.Join(t.TempDir(), "out.bmp")))
	require.True(t, errors.Is(err, ErrUnsupportedFormat), "got %v", err)
}

func TestRenderFileUnwritableDir(t *testing.T) {
	tmpDir := t.TempDir()
	blocker := filepath.Join(tmpDir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := New().RenderFile(testSnapshot(t, filepath.Join(blocker, "out.png")))
	require.Error(t, err)
}
