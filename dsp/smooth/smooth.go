// Package smooth provides the single-pole parameter follower used to turn
// stepped control values into per-sample continuous ones.
package smooth

import (
	"fmt"
	"math"
)

// Fixed per-use-site coefficients.
const (
	// DelayTimeCoefficient smooths the delay time of the plain delay.
	DelayTimeCoefficient = 0.001
	// GainCoefficient smooths the input gain of the utility delay.
	GainCoefficient = 0.004
)

// Smoother is a one-pole exponential follower:
//
//	current = current - coefficient*(current - target)
//
// For a constant target and a coefficient in (0, 1] the value approaches
// the target monotonically and never overshoots.
type Smoother struct {
	coefficient float64
	current     float64
}

// New returns a smoother with the given coefficient in (0, 1].
func New(coefficient float64) (*Smoother, error) {
	if !(coefficient > 0 && coefficient <= 1) {
		return nil, fmt.Errorf("smooth: coefficient must be in (0, 1]: %f", coefficient)
	}
	return &Smoother{coefficient: coefficient}, nil
}

// Step moves the value one update toward target and returns it.
func (s *Smoother) Step(target float64) float64 {
	s.current -= s.coefficient * (s.current - target)
	return s.current
}

// Reset jumps straight to value.
func (s *Smoother) Reset(value float64) {
	s.current = value
}

// Value returns the current smoothed value.
func (s *Smoother) Value() float64 { return s.current }

// Coefficient returns the update coefficient.
func (s *Smoother) Coefficient() float64 { return s.coefficient }

// TimeConstant returns the equivalent 1/e settling time in seconds at
// sampleRate. It returns 0 for a coefficient of 1 and NaN for an invalid
// sample rate.
func (s *Smoother) TimeConstant(sampleRate float64) float64 {
	if sampleRate <= 0 || math.IsNaN(sampleRate) {
		return math.NaN()
	}
	if s.coefficient >= 1 {
		return 0
	}
	return -1 / (sampleRate * logE(1-s.coefficient))
}

// StepsToSettle returns the number of Step calls needed to bring an initial
// distance within eps of the target, or 0 if it already is.
func StepsToSettle(coefficient, distance, eps float64) int {
	distance = math.Abs(distance)
	if distance <= eps || eps <= 0 || coefficient <= 0 {
		return 0
	}
	if coefficient >= 1 {
		return 1
	}
	return int(math.Ceil(math.Log(eps/distance) / math.Log(1-coefficient)))
}
