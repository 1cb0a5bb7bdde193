package debugplot

import (
	"golang.org/x/exp/constraints"

	"github.com/sudorandom/debug-plotter/pkg/plotdata"
)

// Aliases so call sites only need to import this package.
type (
	Config = plotdata.Config
	Range  = plotdata.Range
	Size   = plotdata.Size
)

// Number is any value that can be plotted.
type Number interface {
	constraints.Integer | constraints.Float
}

// Sample is one value recorded for one series. X is nil when the plot's
// shared invocation counter should be used as the x coordinate.
type Sample struct {
	Name  string
	Label string
	X     *float64
	Y     float64
}

// V records y for the series name, using the implicit x axis.
func V[T Number](name string, y T) Sample {
	return Sample{Name: name, Y: float64(y)}
}

// XY records an explicit (x, y) pair for the series name.
func XY[T, U Number](name string, x T, y U) Sample {
	fx := float64(x)
	return Sample{Name: name, X: &fx, Y: float64(y)}
}

// As sets the legend label of the series. Only the label given on the first
// sample of a series is used.
func (s Sample) As(label string) Sample {
	s.Label = label
	return s
}
