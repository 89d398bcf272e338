package wavio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-moddelay/dsp/buffer"
	"github.com/cwbudde/algo-moddelay/internal/testutil"
)

func stereoOf(l, r []float64) *buffer.Stereo {
	return &buffer.Stereo{L: l, R: r}
}

func TestRoundTripStereo(t *testing.T) {
	for _, depth := range []int{8, 16, 24, 32} {
		l := testutil.DeterministicSine(440, 8000, 0.8, 800)
		r := testutil.DeterministicNoise(5, 0.5, 800)
		path := filepath.Join(t.TempDir(), "out.wav")

		in := &Audio{SampleRate: 8000, Channels: 2, BitDepth: depth, Data: stereoOf(l, r)}
		if err := WriteFile(path, in); err != nil {
			t.Fatal(err)
		}

		out, err := ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if out.SampleRate != 8000 || out.Channels != 2 || out.BitDepth != depth || out.Frames() != 800 {
			t.Fatalf("%d bit: got sr=%d ch=%d depth=%d frames=%d", depth, out.SampleRate, out.Channels, out.BitDepth, out.Frames())
		}

		eps := 2.0 / float64(int(1)<<(depth-1))
		testutil.RequireSliceNearlyEqual(t, out.Data.L, l, eps)
		testutil.RequireSliceNearlyEqual(t, out.Data.R, r, eps)
		testutil.RequireNearlyEqual(t, "duration", out.Duration(), 0.1, 1e-12)
	}
}

func TestReadUnsigned8Bit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "u8.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc := wav.NewEncoder(f, 8000, 8, 1, 1)
	raw := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 8000},
		Data:           []int{128, 128, 192, 64, 0, 255},
		SourceBitDepth: 8,
	}
	if err := enc.Write(raw); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	out, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if out.BitDepth != 8 {
		t.Fatalf("depth %d", out.BitDepth)
	}
	// Silence at 128 must decode to zero, not full-scale DC.
	testutil.RequireSliceNearlyEqual(t, out.Data.L, []float64{0, 0, 0.5, -0.5, -1, 127.0 / 128}, 1e-12)
}

func TestMonoIsDuplicated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	l := []float64{0, 0.5, -0.5, 0.25}
	in := &Audio{SampleRate: 44100, Channels: 1, Data: stereoOf(l, make([]float64, 4))}
	if err := WriteFile(path, in); err != nil {
		t.Fatal(err)
	}

	out, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if out.Channels != 1 || out.BitDepth != 16 {
		t.Fatalf("got ch=%d depth=%d", out.Channels, out.BitDepth)
	}
	testutil.RequireSliceNearlyEqual(t, out.Data.L, l, 1e-4)
	testutil.RequireSliceEqual(t, out.Data.R, out.Data.L)
}

func TestWriteClips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	in := &Audio{SampleRate: 8000, Channels: 2, Data: stereoOf([]float64{2, -3}, []float64{0, 1})}
	if err := WriteFile(path, in); err != nil {
		t.Fatal(err)
	}
	out, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, out.Data.L, []float64{1, -1}, 1e-4)
}

func TestReadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := os.WriteFile(path, []byte("definitely not a riff file"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(path); !errors.Is(err, ErrInvalidFile) {
		t.Fatalf("got %v want ErrInvalidFile", err)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWriteRejectsBitDepth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.wav")
	in := &Audio{SampleRate: 8000, Channels: 2, BitDepth: 12, Data: buffer.NewStereo(4)}
	if err := WriteFile(path, in); err == nil {
		t.Fatal("expected error")
	}
}

func TestNormalize(t *testing.T) {
	s := stereoOf([]float64{0.1, -0.25}, []float64{0.2, 0})
	gain := Normalize(s, 0.5)
	testutil.RequireNearlyEqual(t, "gain", gain, 2, 1e-12)
	testutil.RequireSliceNearlyEqual(t, s.L, []float64{0.2, -0.5}, 1e-12)
	testutil.RequireSliceNearlyEqual(t, s.R, []float64{0.4, 0}, 1e-12)
	testutil.RequireNearlyEqual(t, "peak", Peak(s), 0.5, 1e-12)

	silent := buffer.NewStereo(8)
	if g := Normalize(silent, 1); g != 1 {
		t.Fatalf("silent gain %v", g)
	}
}
