package engine

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-moddelay/dsp/core"
)

// Mode selects the delay window the LFO is mapped into.
type Mode int

const (
	// ModeChorus maps the LFO into 5..30 ms.
	ModeChorus Mode = 0
	// ModeFlanger maps the LFO into 1..5 ms.
	ModeFlanger Mode = 1
)

// Delay windows in seconds.
const (
	ChorusMinDelay  = 0.005
	ChorusMaxDelay  = 0.03
	FlangerMinDelay = 0.001
	FlangerMaxDelay = 0.005
)

// String returns the lower-case mode name.
func (m Mode) String() string {
	switch m {
	case ModeChorus:
		return "chorus"
	case ModeFlanger:
		return "flanger"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts "chorus", "flanger", "0" or "1".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chorus", "0":
		return ModeChorus, nil
	case "flanger", "1":
		return ModeFlanger, nil
	default:
		return 0, fmt.Errorf("engine: unknown mode %q", s)
	}
}

// MapDelay maps an LFO output in [-1, 1] to a delay time in seconds for the
// given mode. Any mode other than ModeChorus uses the flanger window.
func MapDelay(mode Mode, lfoOut float64) float64 {
	if mode == ModeChorus {
		return core.MapRange(lfoOut, -1, 1, ChorusMinDelay, ChorusMaxDelay)
	}
	return core.MapRange(lfoOut, -1, 1, FlangerMinDelay, FlangerMaxDelay)
}

// Params is the parameter snapshot the engine consumes each sample.
// Values are expected to be clamped to their declared ranges already.
type Params struct {
	DryWet      float64 // [0, 1]
	Feedback    float64 // [0, 0.98]
	Rate        float64 // Hz, [0.1, 20]
	Depth       float64 // [0, 1]
	PhaseOffset float64 // [0, 1]
	DelayTime   float64 // seconds, [0.01, max delay]
	Gain        float64 // [0, 1], utility variant only
	Mode        Mode
}

// DefaultParams returns the documented parameter defaults.
func DefaultParams() Params {
	return Params{
		DryWet:      0.5,
		Feedback:    0.5,
		Rate:        10,
		Depth:       0.5,
		PhaseOffset: 0,
		DelayTime:   0.5,
		Gain:        0.5,
		Mode:        ModeChorus,
	}
}

// ParamSource fills a snapshot with the current parameter values.
// Load is called on the audio thread once per sample and must not block or
// allocate. Individual fields may be updated concurrently; a snapshot does
// not need to be atomic across fields.
type ParamSource interface {
	Load(p *Params)
}

// Fixed is a ParamSource that always returns the same values.
type Fixed Params

// Load implements ParamSource.
func (f *Fixed) Load(p *Params) {
	*p = Params(*f)
}
