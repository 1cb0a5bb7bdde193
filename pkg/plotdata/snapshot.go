package plotdata

import "math"

// SeriesSnapshot is an immutable copy of one series.
type SeriesSnapshot struct {
	Name   string
	Label  string
	Points []Point
}

// Snapshot is a consistent, immutable copy of a plot entry at one generation.
// Series are in first-seen order, which is also legend order.
type Snapshot struct {
	Identity    Identity
	Config      Config
	Series      []SeriesSnapshot
	Generation  uint64
	Invocations uint64
}

// Extents returns the bounding box of every finite point in the snapshot.
// ok is false when the snapshot has no finite points.
func (s Snapshot) Extents() (x, y Range, ok bool) {
	x = Range{Min: math.Inf(1), Max: math.Inf(-1)}
	y = x
	for _, series := range s.Series {
		for _, p := range series.Points {
			if !finite(p.X) || !finite(p.Y) {
				continue
			}
			x.Min = math.Min(x.Min, p.X)
			x.Max = math.Max(x.Max, p.X)
			y.Min = math.Min(y.Min, p.Y)
			y.Max = math.Max(y.Max, p.Y)
			ok = true
		}
	}
	if !ok {
		return Range{}, Range{}, false
	}
	return x, y, true
}

// Len returns the total number of points across all series.
func (s Snapshot) Len() int {
	n := 0
	for _, series := range s.Series {
		n += len(series.Points)
	}
	return n
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
