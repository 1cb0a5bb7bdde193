package debugplot

import (
	"errors"
	"fmt"
)

// ErrClosed is returned when Close is called more than once.
var ErrClosed = errors.New("debugplot: registry closed")

// RenderPanicError wraps a panic raised by a renderer. Renderer panics are
// recovered so that instrumentation never takes down the host program.
type RenderPanicError struct {
	Value any
}

func (e *RenderPanicError) Error() string {
	return fmt.Sprintf("debugplot: renderer panicked: %v", e.Value)
}
