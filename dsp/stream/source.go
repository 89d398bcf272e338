package stream

import (
	"fmt"

	"github.com/gopxl/beep/v2"

	"github.com/cwbudde/algo-moddelay/dsp/buffer"
)

// Block streams a decoded stereo block. It implements beep.StreamSeeker.
type Block struct {
	data *buffer.Stereo
	pos  int
}

var _ beep.StreamSeeker = (*Block)(nil)

// FromStereo returns a streamer over s. s must not change while streaming.
func FromStereo(s *buffer.Stereo) *Block {
	return &Block{data: s}
}

// Stream implements beep.Streamer.
func (b *Block) Stream(samples [][2]float64) (int, bool) {
	if b.pos >= b.data.Frames() {
		return 0, false
	}
	rest := buffer.Stereo{L: b.data.L[b.pos:], R: b.data.R[b.pos:]}
	n := rest.StoreFrames(samples)
	b.pos += n
	return n, true
}

// Err implements beep.Streamer.
func (b *Block) Err() error { return nil }

// Len returns the number of frames.
func (b *Block) Len() int { return b.data.Frames() }

// Position returns the next frame to be streamed.
func (b *Block) Position() int { return b.pos }

// Seek moves to frame p.
func (b *Block) Seek(p int) error {
	if p < 0 || p > b.data.Frames() {
		return fmt.Errorf("stream: seek %d outside [0, %d]", p, b.data.Frames())
	}
	b.pos = p
	return nil
}
