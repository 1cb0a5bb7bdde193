//go:build !noplot

package debugplot

const buildEnabled = true
