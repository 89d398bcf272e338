// Package lfo provides the phase-accumulating sine oscillator that
// modulates delay time in the chorus and flanger.
//
// One phase is kept per engine. The second channel reads the same phase
// shifted by a fractional offset, which decorrelates the two channels
// without duplicating oscillator state.
package lfo

import "math"

// LFO is a sine oscillator with phase in [0, 1).
type LFO struct {
	phase float64
}

// New returns an oscillator at phase 0.
func New() *LFO {
	return &LFO{}
}

// Phase returns the current phase in [0, 1).
func (l *LFO) Phase() float64 { return l.phase }

// Reset moves the phase back to 0.
func (l *LFO) Reset() { l.phase = 0 }

// SetPhase sets the phase, wrapped into [0, 1).
func (l *LFO) SetPhase(phase float64) { l.phase = Wrap(phase) }

// Value returns sin(2π·phase) for the current phase.
func (l *LFO) Value() float64 {
	return math.Sin(2 * math.Pi * l.phase)
}

// ValueAt returns the waveform at the current phase plus offset, with the
// shifted phase wrapped before evaluation.
func (l *LFO) ValueAt(offset float64) float64 {
	return math.Sin(2 * math.Pi * Wrap(l.phase+offset))
}

// Advance moves the phase forward by rateHz/sampleRate.
func (l *LFO) Advance(rateHz, sampleRate float64) {
	l.phase = Wrap(l.phase + rateHz/sampleRate)
}

// Step advances the phase and returns the waveform at the new phase.
func (l *LFO) Step(rateHz, sampleRate float64) float64 {
	l.Advance(rateHz, sampleRate)
	return l.Value()
}

// Wrap folds phase into [0, 1). Values already in range are returned
// unchanged; NaN stays NaN.
func Wrap(phase float64) float64 {
	if phase >= 1 {
		phase -= 1
		if phase < 1 {
			return phase
		}
	}
	if phase >= 0 && phase < 1 {
		return phase
	}
	return phase - math.Floor(phase)
}
