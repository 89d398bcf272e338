package buffer_test

import (
	"fmt"

	"github.com/cwbudde/algo-moddelay/dsp/buffer"
)

func ExampleStereo() {
	s := buffer.NewStereo(0)
	s.Deinterleave([]float64{1, 2, 3, 4}, 2)

	out := make([]float32, 4)
	n := s.Interleave(out)

	fmt.Println(s.L, s.R)
	fmt.Println(n, out)

	// Output:
	// [1 3] [2 4]
	// 2 [1 2 3 4]
}
