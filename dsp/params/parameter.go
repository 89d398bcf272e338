package params

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"

	"github.com/cwbudde/algo-moddelay/dsp/engine"
)

// ID identifies a parameter in persisted state. Values are stable across
// releases; new parameters get new IDs.
type ID uint32

const (
	DryWet ID = iota
	Feedback
	DelayTime
	Depth
	Rate
	PhaseOffset
	Type
	Gain

	numIDs
)

// Parameter is a single scalar with a declared range. The value is stored
// as float64 bits so reads and writes from different threads never tear.
type Parameter struct {
	ID      ID
	Key     string
	Name    string
	Unit    string
	Min     float64
	Max     float64
	Default float64
	// Steps is the number of discrete steps above Min; zero means continuous.
	Steps int

	value atomic.Uint64
}

func newParameter(id ID, key, name, unit string, lo, hi, def float64, steps int) *Parameter {
	p := &Parameter{
		ID:      id,
		Key:     key,
		Name:    name,
		Unit:    unit,
		Min:     lo,
		Max:     hi,
		Default: def,
		Steps:   steps,
	}
	p.value.Store(math.Float64bits(def))
	return p
}

// Value returns the current plain value.
func (p *Parameter) Value() float64 {
	return math.Float64frombits(p.value.Load())
}

// Set stores v clamped to [Min, Max] and rounded to the nearest step for
// discrete parameters. NaN resets to the default.
func (p *Parameter) Set(v float64) {
	p.value.Store(math.Float64bits(p.Clamp(v)))
}

// Reset restores the default value.
func (p *Parameter) Reset() {
	p.value.Store(math.Float64bits(p.Default))
}

// Clamp returns v as Set would store it.
func (p *Parameter) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return p.Default
	}
	v = min(max(v, p.Min), p.Max)
	if p.Steps > 0 {
		step := (p.Max - p.Min) / float64(p.Steps)
		v = p.Min + math.Round((v-p.Min)/step)*step
	}
	return v
}

// Normalized returns the value mapped to [0, 1].
func (p *Parameter) Normalized() float64 {
	if p.Max <= p.Min {
		return 0
	}
	return (p.Value() - p.Min) / (p.Max - p.Min)
}

// SetNormalized stores the plain value for a normalized n in [0, 1].
func (p *Parameter) SetNormalized(n float64) {
	p.Set(p.Min + n*(p.Max-p.Min))
}

// Format renders the current value with its unit.
func (p *Parameter) Format() string {
	if p.Steps > 0 {
		return strconv.Itoa(int(p.Value()))
	}
	if p.Unit == "" {
		return strconv.FormatFloat(p.Value(), 'f', 3, 64)
	}
	return fmt.Sprintf("%.3f %s", p.Value(), p.Unit)
}

// Parse sets the value from text, accepting the mode names for the type
// parameter.
func (p *Parameter) Parse(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if p.ID != Type {
			return fmt.Errorf("params: %s: %w", p.Key, err)
		}
		mode, merr := engine.ParseMode(s)
		if merr != nil {
			return fmt.Errorf("params: %s: %w", p.Key, merr)
		}
		v = float64(mode)
	}
	p.Set(v)
	return nil
}
