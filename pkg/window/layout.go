package window

import (
	"math"

	"github.com/sudorandom/debug-plotter/pkg/plotdata"
)

// gridLayout returns the columns and rows used to tile n panes: as square as
// possible, filling rows first.
func gridLayout(n int) (cols, rows int) {
	if n <= 0 {
		return 1, 1
	}
	cols = int(math.Ceil(math.Sqrt(float64(n))))
	rows = (n + cols - 1) / cols
	return cols, rows
}

// cellSize is the largest pane size, so every pane fits its cell.
func cellSize(sizes []plotdata.Size) plotdata.Size {
	cell := plotdata.Size{}
	for _, s := range sizes {
		cell.Width = max(cell.Width, s.Width)
		cell.Height = max(cell.Height, s.Height)
	}
	if cell.IsZero() {
		return plotdata.Size{Width: plotdata.DefaultWidth, Height: plotdata.DefaultHeight}
	}
	return cell
}

func windowSize(sizes []plotdata.Size) (int, int) {
	cell := cellSize(sizes)
	cols, rows := gridLayout(len(sizes))
	return cols * cell.Width, rows * cell.Height
}

func paneSizes(panes []*pane) []plotdata.Size {
	sizes := make([]plotdata.Size, len(panes))
	for i, p := range panes {
		sizes[i] = p.size
	}
	return sizes
}
