package buffer

import "testing"

func TestNewZeroFilled(t *testing.T) {
	b := New(8)
	if b.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", b.Len())
	}
	for i, v := range b.Samples() {
		if v != 0 {
			t.Fatalf("Samples()[%d] = %v, want 0", i, v)
		}
	}
}

func TestNewNegativeLength(t *testing.T) {
	b := New(-1)
	if b.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 for negative input", b.Len())
	}
}

func TestFromSliceSharesMemory(t *testing.T) {
	s := []float64{1, 2, 3}
	b := FromSlice(s)
	b.Samples()[0] = 99
	if s[0] != 99 {
		t.Fatal("FromSlice should share underlying memory")
	}
}

func TestResizeZeroesEverything(t *testing.T) {
	b := New(4)
	copy(b.Samples(), []float64{1, 2, 3, 4})
	b.Resize(6)
	if b.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", b.Len())
	}
	for i, v := range b.Samples() {
		if v != 0 {
			t.Fatalf("Samples()[%d] = %v, want 0 after Resize", i, v)
		}
	}
}

func TestResizeReusesCapacity(t *testing.T) {
	b := New(16)
	first := &b.Samples()[0]
	b.Resize(8)
	if b.Cap() != 16 {
		t.Fatalf("Cap() = %d, want 16", b.Cap())
	}
	if &b.Samples()[0] != first {
		t.Fatal("shrinking Resize reallocated")
	}
	b.Resize(16)
	if &b.Samples()[0] != first {
		t.Fatal("regrowing within capacity reallocated")
	}
}

func TestRelease(t *testing.T) {
	b := New(4)
	b.Release()
	if b.Len() != 0 || b.Cap() != 0 {
		t.Fatalf("after Release: len=%d cap=%d", b.Len(), b.Cap())
	}
}

func TestStereoFrames(t *testing.T) {
	s := NewStereo(0)
	s.LoadFrames([][2]float64{{1, -1}, {2, -2}, {3, -3}})
	if s.Frames() != 3 {
		t.Fatalf("Frames() = %d, want 3", s.Frames())
	}
	if s.L[2] != 3 || s.R[2] != -3 {
		t.Fatalf("got L=%v R=%v", s.L, s.R)
	}

	out := make([][2]float64, 2)
	if n := s.StoreFrames(out); n != 2 {
		t.Fatalf("StoreFrames n = %d, want 2", n)
	}
	if out[1] != [2]float64{2, -2} {
		t.Fatalf("out[1] = %v", out[1])
	}
}

func TestStereoInterleave(t *testing.T) {
	s := NewStereo(2)
	s.L[0], s.R[0], s.L[1], s.R[1] = 0.5, -0.5, 0.25, -0.25
	dst := make([]float32, 4)
	if n := s.Interleave(dst); n != 2 {
		t.Fatalf("Interleave n = %d, want 2", n)
	}
	want := []float32{0.5, -0.5, 0.25, -0.25}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestStereoDeinterleave(t *testing.T) {
	s := NewStereo(0)
	s.Deinterleave([]float64{1, 2, 3}, 1)
	if s.Frames() != 3 || s.R[1] != 2 {
		t.Fatalf("mono: L=%v R=%v", s.L, s.R)
	}

	s.Deinterleave([]float64{1, 2, 3, 4, 5, 6}, 3)
	if s.Frames() != 2 || s.L[1] != 4 || s.R[1] != 5 {
		t.Fatalf("3ch: L=%v R=%v", s.L, s.R)
	}

	s.Deinterleave([]float64{1, 2}, 0)
	if s.Frames() != 0 {
		t.Fatalf("0ch: Frames() = %d", s.Frames())
	}
}
