package buffer

import "sync"

// Pool provides sync.Pool-based Stereo reuse for hosts that render many
// blocks outside the audio callback.
type Pool struct {
	pool sync.Pool
}

// NewPool returns a Pool ready for use.
func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				return &Stereo{}
			},
		},
	}
}

// Get returns a zeroed Stereo block with the requested frame count.
// Callers must return it via Put when done.
func (p *Pool) Get(frames int) *Stereo {
	s := p.pool.Get().(*Stereo)
	s.Resize(frames)
	return s
}

// Put returns a block to the pool for reuse.
// The caller must not use the block after calling Put.
func (p *Pool) Put(s *Stereo) {
	if s == nil {
		return
	}
	p.pool.Put(s)
}
