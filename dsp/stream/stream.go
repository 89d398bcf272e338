// Package stream adapts an engine to the beep.Streamer interface so it can
// sit in a beep pipeline between a decoder and a speaker.
package stream

import (
	"fmt"
	"sync/atomic"

	"github.com/gopxl/beep/v2"

	"github.com/cwbudde/algo-moddelay/dsp/engine"
)

// Effect wraps a source streamer and runs every frame it yields through an
// engine. Parameters are pulled from a ParamSource once per frame.
type Effect struct {
	src    beep.Streamer
	eng    *engine.Engine
	params engine.ParamSource
	p      engine.Params

	tail    int
	drained bool
	bypass  atomic.Bool
}

// Option configures an Effect.
type Option func(*Effect) error

// WithTail keeps streaming for frames more frames of silence after the
// source ends so delayed signal and feedback can ring out.
func WithTail(frames int) Option {
	return func(f *Effect) error {
		if frames < 0 {
			return fmt.Errorf("stream: tail must be >= 0: %d", frames)
		}
		f.tail = frames
		return nil
	}
}

// New wraps src. eng must already be prepared at the source sample rate.
func New(src beep.Streamer, eng *engine.Engine, params engine.ParamSource, opts ...Option) (*Effect, error) {
	if src == nil || eng == nil || params == nil {
		return nil, fmt.Errorf("stream: source, engine and params are required")
	}
	if !eng.Prepared() {
		return nil, fmt.Errorf("stream: %w", engine.ErrNotPrepared)
	}

	f := &Effect{src: src, eng: eng, params: params}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Stream implements beep.Streamer.
func (f *Effect) Stream(samples [][2]float64) (int, bool) {
	n, ok := 0, false
	if !f.drained {
		n, ok = f.src.Stream(samples)
		if !ok {
			f.drained = true
		}
	}

	if f.drained && n < len(samples) && f.tail > 0 {
		m := min(len(samples)-n, f.tail)
		clear(samples[n : n+m])
		f.tail -= m
		n += m
	}

	if !f.bypass.Load() {
		for i := range samples[:n] {
			f.params.Load(&f.p)
			samples[i][0], samples[i][1] = f.eng.Process(samples[i][0], samples[i][1], &f.p)
		}
	}

	return n, ok || n > 0
}

// Err implements beep.Streamer.
func (f *Effect) Err() error {
	return f.src.Err()
}

// SetBypass passes frames through untouched while on. It may be called
// from any goroutine; engine state is frozen while bypassed.
func (f *Effect) SetBypass(on bool) {
	f.bypass.Store(on)
}

// Bypassed reports whether the effect is bypassed.
func (f *Effect) Bypassed() bool {
	return f.bypass.Load()
}

// Engine returns the wrapped engine.
func (f *Effect) Engine() *engine.Engine {
	return f.eng
}
