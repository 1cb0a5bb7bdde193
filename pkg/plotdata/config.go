package plotdata

import (
	"math"

	"github.com/sudorandom/debug-plotter/pkg/utils"
)

const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

// Size is a chart size in pixels.
type Size struct {
	Width, Height int
}

func (s Size) IsZero() bool { return s.Width == 0 && s.Height == 0 }

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool { return s.Width > 0 && s.Height > 0 }

// Range is a fixed axis range.
type Range struct {
	Min, Max float64
}

// Valid reports whether the range is finite and non-empty.
func (r Range) Valid() bool {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
		return false
	}
	return r.Min < r.Max
}

// Config is the per-plot configuration. It is fixed by the first invocation
// for an identity; later invocations cannot change it.
type Config struct {
	Caption string
	Path    string
	Size    Size
	XDesc   string
	YDesc   string
	XRange  *Range
	YRange  *Range
	// Capacity is the number of samples kept per series.
	Capacity int
	Live     bool
}

// Normalize returns a copy of c with defaults filled in. site is the call
// site ("file:line") used as caption when none was given. The returned
// slice lists the fields that were invalid and got replaced.
func (c Config) Normalize(site string) (Config, []string) {
	var fixed []string
	out := c
	if out.Caption == "" {
		out.Caption = site
	}
	if out.Path == "" {
		out.Path = utils.DefaultPlotPath(out.Caption)
	}
	if !out.Size.Valid() {
		if !out.Size.IsZero() {
			fixed = append(fixed, "size")
		}
		out.Size = Size{Width: DefaultWidth, Height: DefaultHeight}
	}
	if out.Capacity <= 0 {
		if out.Capacity < 0 {
			fixed = append(fixed, "capacity")
		}
		out.Capacity = DefaultCapacity
	}
	if out.XRange != nil {
		if out.XRange.Valid() {
			r := *out.XRange
			out.XRange = &r
		} else {
			fixed = append(fixed, "x_range")
			out.XRange = nil
		}
	}
	if out.YRange != nil {
		if out.YRange.Valid() {
			r := *out.YRange
			out.YRange = &r
		} else {
			fixed = append(fixed, "y_range")
			out.YRange = nil
		}
	}
	return out, fixed
}

// Conflicts lists the fields explicitly set in other that disagree with c.
// Unset (zero) fields in other never conflict.
func (c Config) Conflicts(other Config) []string {
	var fields []string
	if other.Caption != "" && other.Caption != c.Caption {
		fields = append(fields, "caption")
	}
	if other.Path != "" && other.Path != c.Path {
		fields = append(fields, "path")
	}
	if !other.Size.IsZero() && other.Size != c.Size {
		fields = append(fields, "size")
	}
	if other.XDesc != "" && other.XDesc != c.XDesc {
		fields = append(fields, "x_desc")
	}
	if other.YDesc != "" && other.YDesc != c.YDesc {
		fields = append(fields, "y_desc")
	}
	if other.XRange != nil && !sameRange(other.XRange, c.XRange) {
		fields = append(fields, "x_range")
	}
	if other.YRange != nil && !sameRange(other.YRange, c.YRange) {
		fields = append(fields, "y_range")
	}
	if other.Capacity > 0 && other.Capacity != c.Capacity {
		fields = append(fields, "capacity")
	}
	if other.Live && !c.Live {
		fields = append(fields, "live")
	}
	return fields
}

func sameRange(a, b *Range) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
