package stream

import (
	"testing"

	"github.com/cwbudde/algo-moddelay/dsp/buffer"
)

func TestBlockStreamsAndSeeks(t *testing.T) {
	s := &buffer.Stereo{L: []float64{1, 2, 3}, R: []float64{-1, -2, -3}}
	b := FromStereo(s)

	buf := make([][2]float64, 2)
	if n, ok := b.Stream(buf); n != 2 || !ok || buf[1] != [2]float64{2, -2} {
		t.Fatalf("first read: n=%d ok=%v %v", n, ok, buf)
	}
	if n, ok := b.Stream(buf); n != 1 || !ok || buf[0] != [2]float64{3, -3} {
		t.Fatalf("second read: n=%d ok=%v %v", n, ok, buf)
	}
	if _, ok := b.Stream(buf); ok {
		t.Fatal("expected drained")
	}

	if err := b.Seek(1); err != nil || b.Position() != 1 {
		t.Fatalf("seek: %v pos=%d", err, b.Position())
	}
	if err := b.Seek(4); err == nil {
		t.Fatal("expected seek error")
	}
	if b.Len() != 3 || b.Err() != nil {
		t.Fatal("len/err")
	}
}
