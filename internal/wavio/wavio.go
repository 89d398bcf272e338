// Package wavio reads and writes PCM WAV files as planar stereo blocks.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cwbudde/algo-vecmath"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-moddelay/dsp/buffer"
)

// ErrInvalidFile is returned for input that is not a decodable PCM WAV.
var ErrInvalidFile = errors.New("wavio: invalid wav file")

const unsigned8Offset = 128

// Audio is a decoded file. Mono sources are duplicated into both channels;
// Channels keeps the source channel count so output can match it.
type Audio struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Data       *buffer.Stereo
}

// Frames returns the number of frames.
func (a *Audio) Frames() int {
	return a.Data.Frames()
}

// Duration returns the length in seconds.
func (a *Audio) Duration() float64 {
	if a.SampleRate <= 0 {
		return 0
	}
	return float64(a.Frames()) / float64(a.SampleRate)
}

// Read decodes a PCM WAV stream.
func Read(r io.ReadSeeker) (*Audio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidFile
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	format := dec.Format()
	bitDepth := int(dec.SampleBitDepth())
	if bitDepth == 0 || format == nil || format.NumChannels <= 0 {
		return nil, fmt.Errorf("%w: unknown sample format", ErrInvalidFile)
	}

	bytesPerSample := (bitDepth-1)/8 + 1
	samples := int(dec.PCMLen()) / bytesPerSample
	samples -= samples % format.NumChannels

	buf := &audio.IntBuffer{
		Format:         format,
		Data:           make([]int, samples),
		SourceBitDepth: bitDepth,
	}
	n, err := dec.PCMBuffer(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	buf.Data = buf.Data[:n-n%format.NumChannels]

	// 8-bit PCM is unsigned with silence at 128.
	var offset float64
	if bitDepth == 8 {
		offset = unsigned8Offset
	}
	scale := 1 / math.Pow(2, float64(bitDepth-1))
	floats := buf.AsFloatBuffer().Data
	for i := range floats {
		floats[i] = (floats[i] - offset) * scale
	}

	data := buffer.NewStereo(0)
	data.Deinterleave(floats, format.NumChannels)

	return &Audio{
		SampleRate: format.SampleRate,
		Channels:   format.NumChannels,
		BitDepth:   bitDepth,
		Data:       data,
	}, nil
}

// ReadFile decodes the WAV file at path.
func ReadFile(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	a, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// Write encodes a as PCM at a.BitDepth (8, 16, 24 or 32 bits; 0 means 16)
// with a.Channels channels. Samples outside [-1, 1] are clipped.
func Write(w io.WriteSeeker, a *Audio) error {
	bitDepth := a.BitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("wavio: unsupported bit depth %d", bitDepth)
	}
	var offset int
	if bitDepth == 8 {
		offset = unsigned8Offset
	}
	channels := a.Channels
	if channels != 1 {
		channels = 2
	}

	frames := a.Frames()
	full := math.Pow(2, float64(bitDepth-1)) - 1
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  a.SampleRate,
		},
		Data:           make([]int, frames*channels),
		SourceBitDepth: bitDepth,
	}
	for i := range frames {
		if channels == 1 {
			buf.Data[i] = quantize(a.Data.L[i], full) + offset
			continue
		}
		buf.Data[2*i] = quantize(a.Data.L[i], full) + offset
		buf.Data[2*i+1] = quantize(a.Data.R[i], full) + offset
	}

	enc := wav.NewEncoder(w, a.SampleRate, bitDepth, channels, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavio: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavio: encode: %w", err)
	}
	return nil
}

// WriteFile encodes a into a new file at path.
func WriteFile(path string, a *Audio) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, a); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

func quantize(x, full float64) int {
	x = min(max(x, -1), 1)
	return int(math.Round(x * full))
}

// Peak returns the largest absolute sample over both channels.
func Peak(s *buffer.Stereo) float64 {
	var peak float64
	for _, ch := range [][]float64{s.L, s.R} {
		for _, x := range ch {
			peak = max(peak, math.Abs(x))
		}
	}
	return peak
}

// Normalize scales both channels so the peak sits at target and returns
// the applied gain. Silent blocks are left alone and report a gain of 1.
func Normalize(s *buffer.Stereo, target float64) float64 {
	peak := Peak(s)
	if peak == 0 || target <= 0 {
		return 1
	}
	gain := target / peak
	vecmath.ScaleBlock(s.L, s.L, gain)
	vecmath.ScaleBlock(s.R, s.R, gain)
	return gain
}
