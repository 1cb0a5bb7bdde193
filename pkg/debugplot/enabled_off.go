//go:build noplot

package debugplot

// Built with -tags noplot: Plot is a no-op, PlotAlways still records.
const buildEnabled = false
