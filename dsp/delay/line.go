package delay

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-moddelay/dsp/buffer"
	"github.com/cwbudde/algo-moddelay/dsp/interp"
)

// DefaultMaxCapacity is the largest ring a Line allocates unless
// overridden with WithMaxCapacity: about 11 minutes at 48 kHz.
const DefaultMaxCapacity = 1 << 25

var (
	// ErrInvalidSize reports a non-positive or non-finite ring length.
	ErrInvalidSize = errors.New("delay: invalid size")
	// ErrResourceExhausted reports a ring length above the capacity limit.
	ErrResourceExhausted = errors.New("delay: resource exhausted")
)

// Option configures a Line at construction time.
type Option func(*Line) error

// WithMode selects the fractional read algorithm. The default is linear.
func WithMode(mode interp.Mode) Option {
	return func(d *Line) error {
		switch mode {
		case interp.Linear, interp.Hermite:
			d.mode = mode
			return nil
		default:
			return fmt.Errorf("delay: unsupported interpolation mode %d", mode)
		}
	}
}

// WithMaxCapacity caps the ring length accepted by Resize and Prepare.
func WithMaxCapacity(samples int) Option {
	return func(d *Line) error {
		if samples <= 0 {
			return fmt.Errorf("%w: capacity limit must be > 0: %d", ErrInvalidSize, samples)
		}
		d.maxCapacity = samples
		return nil
	}
}

// Line is a circular delay line.
type Line struct {
	buf      buffer.Buffer
	samples  []float64
	writePos int

	mode        interp.Mode
	maxCapacity int
}

// New returns a zeroed delay line of fixed size.
func New(size int, opts ...Option) (*Line, error) {
	d := &Line{maxCapacity: DefaultMaxCapacity}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	if err := d.Resize(size); err != nil {
		return nil, err
	}
	return d, nil
}

// LengthFor returns the ring length for sampleRate × maxDelaySeconds.
func LengthFor(sampleRate, maxDelaySeconds float64) (int, error) {
	n := sampleRate * maxDelaySeconds
	if sampleRate <= 0 || maxDelaySeconds <= 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%w: sampleRate=%f maxDelaySeconds=%f", ErrInvalidSize, sampleRate, maxDelaySeconds)
	}
	if n >= math.MaxInt32 {
		return 0, fmt.Errorf("%w: %.0f samples", ErrResourceExhausted, n)
	}
	length := int(n)
	if length < 1 {
		return 0, fmt.Errorf("%w: %f samples rounds to zero", ErrInvalidSize, n)
	}
	return length, nil
}

// Prepare sizes the ring for the given sample rate and maximum delay,
// zero-fills it and moves the write head to slot 0. It must not run
// concurrently with reads or writes.
func (d *Line) Prepare(sampleRate, maxDelaySeconds float64) error {
	n, err := LengthFor(sampleRate, maxDelaySeconds)
	if err != nil {
		return err
	}
	return d.Resize(n)
}

// Resize sets the ring length to size samples, zero-fills it and resets the
// write head. On error the previous contents are left untouched.
func (d *Line) Resize(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: size must be > 0: %d", ErrInvalidSize, size)
	}
	limit := d.maxCapacity
	if limit <= 0 {
		limit = DefaultMaxCapacity
	}
	if size > limit {
		return fmt.Errorf("%w: %d samples exceeds capacity limit %d", ErrResourceExhausted, size, limit)
	}
	d.buf.Resize(size)
	d.samples = d.buf.Samples()
	d.writePos = 0
	return nil
}

// Len returns the ring length in samples.
func (d *Line) Len() int {
	return len(d.samples)
}

// WriteHead returns the slot the next Write stores into.
func (d *Line) WriteHead() int {
	return d.writePos
}

// Mode returns the fractional read algorithm.
func (d *Line) Mode() interp.Mode {
	return d.mode
}

// At returns the raw value stored in slot i.
func (d *Line) At(i int) float64 {
	return d.samples[i]
}

// Write stores sample at the write head without moving it.
func (d *Line) Write(sample float64) {
	d.samples[d.writePos] = sample
}

// Advance moves the write head one slot forward, wrapping to 0 at Len.
func (d *Line) Advance() {
	d.writePos++
	if d.writePos >= len(d.samples) {
		d.writePos = 0
	}
}

// Push writes sample and advances the write head.
func (d *Line) Push(sample float64) {
	d.Write(sample)
	d.Advance()
}

// Read returns the value delay whole samples behind the write head.
// Read(0) is the value most recently passed to Write.
func (d *Line) Read(delay int) float64 {
	size := len(d.samples)
	idx := (d.writePos - delay) % size
	if idx < 0 {
		idx += size
	}
	return d.samples[idx]
}

// ReadInterpolated returns the value delaySamples behind the write head,
// interpolating between the two neighbouring slots.
func (d *Line) ReadInterpolated(delaySamples float64) float64 {
	size := len(d.samples)
	length := float64(size)

	pos := float64(d.writePos) - delaySamples
	if pos < 0 {
		pos += length
	}
	if pos < 0 || pos >= length {
		pos = math.Mod(pos, length)
		if pos < 0 {
			pos += length
		}
	}
	// NaN and values rounding up to length land here.
	if !(pos >= 0 && pos < length) {
		pos = 0
	}

	i0 := int(pos)
	frac := pos - float64(i0)
	i1 := i0 + 1
	if i1 >= size {
		i1 = 0
	}

	if d.mode == interp.Hermite {
		im1 := i0 - 1
		if im1 < 0 {
			im1 = size - 1
		}
		i2 := i1 + 1
		if i2 >= size {
			i2 = 0
		}
		return interp.Hermite4(frac, d.samples[im1], d.samples[i0], d.samples[i1], d.samples[i2])
	}

	return interp.Linear2(d.samples[i0], d.samples[i1], frac)
}

// Reset clears line state without changing its length.
func (d *Line) Reset() {
	d.buf.Zero()
	d.writePos = 0
}

// Release drops the ring storage. The line has length 0 until the next
// Prepare or Resize.
func (d *Line) Release() {
	d.buf.Release()
	d.samples = nil
	d.writePos = 0
}
