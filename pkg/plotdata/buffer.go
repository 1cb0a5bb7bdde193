// Package plotdata holds the value types shared by the plot registry, the
// renderer and the live view: sample buffers, plot configuration, plot
// identities and immutable snapshots.
package plotdata

// DefaultCapacity is the number of samples a series keeps when no positive
// capacity was configured.
const DefaultCapacity = 1000

// Point is one sample of a series.
type Point struct {
	X, Y float64
}

// Buffer is a fixed-capacity FIFO of points for one series. Once full, every
// Push evicts the oldest point. A Buffer is not safe for concurrent use; its
// owning entry serialises access.
type Buffer struct {
	name  string
	label string
	data  []Point
	head  int // index of the oldest point
	size  int
}

// NewBuffer returns an empty buffer. A capacity <= 0 is replaced by DefaultCapacity.
func NewBuffer(name, label string, capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if label == "" {
		label = name
	}
	return &Buffer{
		name:  name,
		label: label,
		data:  make([]Point, capacity),
	}
}

func (b *Buffer) Name() string  { return b.name }
func (b *Buffer) Label() string { return b.label }
func (b *Buffer) Len() int      { return b.size }
func (b *Buffer) Cap() int      { return len(b.data) }

// Push appends p, evicting the oldest point when the buffer is full.
func (b *Buffer) Push(p Point) {
	if b.size < len(b.data) {
		b.data[(b.head+b.size)%len(b.data)] = p
		b.size++
		return
	}
	b.data[b.head] = p
	b.head = (b.head + 1) % len(b.data)
}

// Points returns a copy of the buffered points, oldest first.
func (b *Buffer) Points() []Point {
	out := make([]Point, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.data[(b.head+i)%len(b.data)]
	}
	return out
}

// Snapshot copies the buffer into an immutable SeriesSnapshot.
func (b *Buffer) Snapshot() SeriesSnapshot {
	return SeriesSnapshot{Name: b.name, Label: b.label, Points: b.Points()}
}
