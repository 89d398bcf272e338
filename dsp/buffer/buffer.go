package buffer

// Buffer is a float64 sample store that is sized once per prepare cycle.
// The delay lines own one Buffer per channel exclusively.
type Buffer struct {
	samples []float64
}

// New returns a zero-filled Buffer of the given length.
func New(length int) *Buffer {
	if length < 0 {
		length = 0
	}
	return &Buffer{samples: make([]float64, length)}
}

// FromSlice wraps an existing slice without copying.
func FromSlice(s []float64) *Buffer {
	return &Buffer{samples: s}
}

// Samples returns the underlying slice.
func (b *Buffer) Samples() []float64 {
	return b.samples
}

// Len returns the current number of samples.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Cap returns the current capacity of the backing slice.
func (b *Buffer) Cap() int {
	return cap(b.samples)
}

// Resize sets the length to n and zeroes every sample. Existing capacity is
// reused when it suffices, otherwise a new backing array is allocated.
func (b *Buffer) Resize(n int) {
	if n < 0 {
		n = 0
	}
	if n <= cap(b.samples) {
		b.samples = b.samples[:n]
	} else {
		b.samples = make([]float64, n)
	}
	b.Zero()
}

// Zero sets all samples to 0.
func (b *Buffer) Zero() {
	clear(b.samples)
}

// Release drops the backing array.
func (b *Buffer) Release() {
	b.samples = nil
}
