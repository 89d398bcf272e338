package buffer

// Stereo is a two-channel block in planar layout.
type Stereo struct {
	L []float64
	R []float64
}

// NewStereo returns a zeroed block of n frames.
func NewStereo(n int) *Stereo {
	s := &Stereo{}
	s.Resize(n)
	return s
}

// Frames returns the number of frames in the block.
func (s *Stereo) Frames() int {
	return len(s.L)
}

// Resize sets the frame count to n, reusing capacity where possible.
// Both channels are zeroed.
func (s *Stereo) Resize(n int) {
	if n < 0 {
		n = 0
	}
	s.L = resize(s.L, n)
	s.R = resize(s.R, n)
}

// Zero silences both channels.
func (s *Stereo) Zero() {
	clear(s.L)
	clear(s.R)
}

// LoadFrames copies interleaved stereo frames into the block, resizing it to
// len(frames).
func (s *Stereo) LoadFrames(frames [][2]float64) {
	s.Resize(len(frames))
	for i, f := range frames {
		s.L[i] = f[0]
		s.R[i] = f[1]
	}
}

// StoreFrames writes the block into frames and returns the number of frames
// written.
func (s *Stereo) StoreFrames(frames [][2]float64) int {
	n := min(len(frames), len(s.L))
	for i := range n {
		frames[i][0] = s.L[i]
		frames[i][1] = s.R[i]
	}
	return n
}

// Interleave writes L/R pairs as float32 into dst and returns the number of
// frames written. dst must hold two values per frame.
func (s *Stereo) Interleave(dst []float32) int {
	n := min(len(dst)/2, len(s.L))
	for i := range n {
		dst[2*i] = float32(s.L[i])
		dst[2*i+1] = float32(s.R[i])
	}
	return n
}

// Deinterleave loads channels-interleaved samples into the block. Mono input
// is duplicated to both channels; channels beyond the second are ignored.
func (s *Stereo) Deinterleave(src []float64, channels int) {
	if channels <= 0 {
		s.Resize(0)
		return
	}
	n := len(src) / channels
	s.Resize(n)
	for i := range n {
		base := i * channels
		s.L[i] = src[base]
		if channels > 1 {
			s.R[i] = src[base+1]
		} else {
			s.R[i] = src[base]
		}
	}
}

func resize(buf []float64, n int) []float64 {
	if n <= cap(buf) {
		buf = buf[:n]
		clear(buf)
		return buf
	}
	return make([]float64, n)
}
