// Package level meters blocks of samples: peak, RMS, DC offset and clipping.
package level

import (
	"math"

	"github.com/cwbudde/algo-moddelay/dsp/core"
)

// Stats summarises the samples seen by a Meter.
//
//nolint:revive
type Stats struct {
	Length         int
	DC             float64
	RMS            float64
	RMS_dB         float64
	Peak           float64
	Peak_dB        float64
	PeakPos        int
	CrestFactor    float64
	CrestFactor_dB float64
	ZeroCrossings  int
	// Clipped counts samples whose magnitude exceeds the ceiling.
	Clipped int
}

// Meter accumulates level statistics across blocks.
type Meter struct {
	ceiling float64

	n       int
	sum     float64
	sumSq   float64
	peak    float64
	peakPos int
	zc      int
	clipped int
	last    float64
}

// NewMeter returns a Meter that counts samples above ceiling as clipped.
// A ceiling <= 0 uses full scale (1.0).
func NewMeter(ceiling float64) *Meter {
	if ceiling <= 0 {
		ceiling = 1
	}
	return &Meter{ceiling: ceiling}
}

// Update adds a block of samples.
func (m *Meter) Update(samples []float64) {
	for _, x := range samples {
		a := math.Abs(x)
		if a > m.peak {
			m.peak = a
			m.peakPos = m.n
		}
		if a > m.ceiling {
			m.clipped++
		}
		if m.n > 0 && m.last*x < 0 {
			m.zc++
		}
		m.sum += x
		m.sumSq += x * x
		m.last = x
		m.n++
	}
}

// Reset forgets everything seen so far.
func (m *Meter) Reset() {
	*m = Meter{ceiling: m.ceiling}
}

// Result returns the statistics of all samples seen since the last Reset.
func (m *Meter) Result() Stats {
	s := Stats{
		Length:         m.n,
		Peak:           m.peak,
		PeakPos:        m.peakPos,
		ZeroCrossings:  m.zc,
		Clipped:        m.clipped,
		RMS_dB:         math.Inf(-1),
		Peak_dB:        core.LinearToDB(m.peak),
		CrestFactor_dB: math.Inf(-1),
	}
	if m.n == 0 {
		return s
	}

	nf := float64(m.n)
	s.DC = m.sum / nf
	s.RMS = math.Sqrt(m.sumSq / nf)
	s.RMS_dB = core.LinearToDB(s.RMS)
	if s.RMS > 0 {
		s.CrestFactor = s.Peak / s.RMS
		s.CrestFactor_dB = core.LinearToDB(s.CrestFactor)
	}
	return s
}

// Calculate meters a single block against full scale.
func Calculate(samples []float64) Stats {
	m := NewMeter(1)
	m.Update(samples)
	return m.Result()
}
