package engine

import (
	"fmt"

	"github.com/cwbudde/algo-moddelay/dsp/delay"
	"github.com/cwbudde/algo-moddelay/dsp/interp"
	"github.com/cwbudde/algo-moddelay/dsp/smooth"
)

// MixPolicy decides how the delayed signal is combined with the input.
type MixPolicy int

const (
	// MixCrossfade blends dry*(1-dryWet) + wet*dryWet.
	MixCrossfade MixPolicy = iota
	// MixAdditive sums gain*dry + wet with no crossfade.
	MixAdditive
)

// String returns the lower-case policy name.
func (m MixPolicy) String() string {
	switch m {
	case MixCrossfade:
		return "crossfade"
	case MixAdditive:
		return "additive"
	default:
		return fmt.Sprintf("mix(%d)", int(m))
	}
}

// Option mutates engine construction parameters.
type Option func(*config) error

type config struct {
	mix         MixPolicy
	mixSet      bool
	delayCoef   float64
	gainCoef    float64
	maxCapacity int
	interp      interp.Mode
}

func defaultConfig() config {
	return config{
		delayCoef:   smooth.DelayTimeCoefficient,
		gainCoef:    smooth.GainCoefficient,
		maxCapacity: delay.DefaultMaxCapacity,
	}
}

// WithInterpolation selects the fractional read of the delay lines. The
// default is interp.Linear.
func WithInterpolation(mode interp.Mode) Option {
	return func(cfg *config) error {
		switch mode {
		case interp.Linear, interp.Hermite:
			cfg.interp = mode
			return nil
		default:
			return fmt.Errorf("engine: unsupported interpolation %d", mode)
		}
	}
}

// WithMixPolicy overrides the variant's default mix policy.
func WithMixPolicy(policy MixPolicy) Option {
	return func(cfg *config) error {
		switch policy {
		case MixCrossfade, MixAdditive:
			cfg.mix = policy
			cfg.mixSet = true
			return nil
		default:
			return fmt.Errorf("engine: unknown mix policy %d", policy)
		}
	}
}

// WithDelaySmoothing sets the delay-time smoothing coefficient.
func WithDelaySmoothing(coefficient float64) Option {
	return func(cfg *config) error {
		if !(coefficient > 0 && coefficient <= 1) {
			return fmt.Errorf("engine: delay smoothing must be in (0, 1]: %f", coefficient)
		}
		cfg.delayCoef = coefficient
		return nil
	}
}

// WithGainSmoothing sets the gain smoothing coefficient.
func WithGainSmoothing(coefficient float64) Option {
	return func(cfg *config) error {
		if !(coefficient > 0 && coefficient <= 1) {
			return fmt.Errorf("engine: gain smoothing must be in (0, 1]: %f", coefficient)
		}
		cfg.gainCoef = coefficient
		return nil
	}
}

// WithMaxCapacity caps the per-channel ring length in samples.
func WithMaxCapacity(samples int) Option {
	return func(cfg *config) error {
		if samples <= 0 {
			return fmt.Errorf("engine: max capacity must be > 0: %d", samples)
		}
		cfg.maxCapacity = samples
		return nil
	}
}
