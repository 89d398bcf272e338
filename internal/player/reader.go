package player

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/gopxl/beep/v2"

	"github.com/cwbudde/algo-moddelay/dsp/buffer"
)

const bytesPerFrame = 8 // two float32 channels

// Reader pulls frames from a beep streamer and encodes them as interleaved
// little-endian float32, the layout oto.FormatFloat32LE expects.
type Reader struct {
	src    beep.Streamer
	frames [][2]float64
	block  *buffer.Stereo
	pcm    []float32
	done   bool
}

// NewReader wraps src. maxFrames bounds the frames pulled per Read.
func NewReader(src beep.Streamer, maxFrames int) *Reader {
	maxFrames = max(maxFrames, 1)
	return &Reader{
		src:    src,
		frames: make([][2]float64, maxFrames),
		block:  buffer.NewStereo(maxFrames),
		pcm:    make([]float32, 2*maxFrames),
	}
}

// Read implements io.Reader. It returns io.EOF once the source is drained.
func (r *Reader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}

	want := min(len(p)/bytesPerFrame, len(r.frames))
	if want == 0 {
		return 0, nil
	}

	n, ok := r.src.Stream(r.frames[:want])
	if !ok {
		r.done = true
		if err := r.src.Err(); err != nil {
			return 0, err
		}
		return 0, io.EOF
	}

	r.block.LoadFrames(r.frames[:n])
	samples := 2 * r.block.Interleave(r.pcm)
	for i, v := range r.pcm[:samples] {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
	}
	return n * bytesPerFrame, nil
}
