package params

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-moddelay/dsp/engine"
)

// ErrUnknownParameter is returned when a key does not name a parameter of
// the registry's variant.
var ErrUnknownParameter = errors.New("params: unknown parameter")

// MinDelayTime is the lower bound of the delay-time parameter in seconds.
const MinDelayTime = 0.01

// Registry is the fixed parameter set of one engine variant. The set is
// built once by New; only values change afterwards, so lookups need no
// locking.
type Registry struct {
	variant engine.Variant
	order   []*Parameter
	slots   [numIDs]*Parameter
	base    engine.Params
}

// New declares the parameters of variant. maxDelaySeconds bounds the
// delay-time parameter and must match what the engine is prepared with.
func New(variant engine.Variant, maxDelaySeconds float64) (*Registry, error) {
	if !(maxDelaySeconds >= MinDelayTime) || math.IsInf(maxDelaySeconds, 0) {
		return nil, fmt.Errorf("params: max delay must be >= %g s: %f", MinDelayTime, maxDelaySeconds)
	}

	def := engine.DefaultParams()
	r := &Registry{variant: variant, base: def}

	switch variant {
	case engine.VariantDelay:
		r.add(
			newParameter(DryWet, "drywet", "Dry Wet", "", 0, 1, def.DryWet, 0),
			newParameter(Feedback, "feedback", "Feedback", "", 0, 0.98, def.Feedback, 0),
			newParameter(DelayTime, "delaytime", "Delay Time", "s", MinDelayTime, maxDelaySeconds, min(def.DelayTime, maxDelaySeconds), 0),
		)
	case engine.VariantModulated:
		r.add(
			newParameter(DryWet, "drywet", "Dry Wet", "", 0, 1, def.DryWet, 0),
			newParameter(Depth, "depth", "Depth", "", 0, 1, def.Depth, 0),
			newParameter(Rate, "rate", "Rate", "Hz", 0.1, 20, def.Rate, 0),
			newParameter(PhaseOffset, "phaseOffset", "Phase Offset", "", 0, 1, def.PhaseOffset, 0),
			newParameter(Feedback, "feedback", "Feedback", "", 0, 0.98, def.Feedback, 0),
			newParameter(Type, "type", "Type", "", 0, 1, float64(def.Mode), 1),
		)
	case engine.VariantUtility:
		r.add(
			newParameter(Gain, "gain", "Gain", "", 0, 1, def.Gain, 0),
		)
		// The utility variant has no feedback control.
		r.base.Feedback = 0
	default:
		return nil, fmt.Errorf("params: unknown variant %d", variant)
	}

	r.base.DelayTime = min(r.base.DelayTime, maxDelaySeconds)
	return r, nil
}

func (r *Registry) add(ps ...*Parameter) {
	for _, p := range ps {
		r.order = append(r.order, p)
		r.slots[p.ID] = p
	}
}

// Variant returns the variant the registry was declared for.
func (r *Registry) Variant() engine.Variant { return r.variant }

// Len returns the number of parameters.
func (r *Registry) Len() int { return len(r.order) }

// All returns the parameters in declaration order.
func (r *Registry) All() []*Parameter {
	out := make([]*Parameter, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns the parameter with id, or nil.
func (r *Registry) Get(id ID) *Parameter {
	if id >= numIDs {
		return nil
	}
	return r.slots[id]
}

// Lookup finds a parameter by key, ignoring case.
func (r *Registry) Lookup(key string) (*Parameter, bool) {
	for _, p := range r.order {
		if strings.EqualFold(p.Key, key) {
			return p, true
		}
	}
	return nil, false
}

// Set stores a plain value by key.
func (r *Registry) Set(key string, v float64) error {
	p, ok := r.Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, key)
	}
	p.Set(v)
	return nil
}

// Reset restores every default.
func (r *Registry) Reset() {
	for _, p := range r.order {
		p.Reset()
	}
}

// Load implements engine.ParamSource. Fields without a parameter in this
// variant keep their defaults.
func (r *Registry) Load(p *engine.Params) {
	*p = r.base
	if q := r.slots[DryWet]; q != nil {
		p.DryWet = q.Value()
	}
	if q := r.slots[Feedback]; q != nil {
		p.Feedback = q.Value()
	}
	if q := r.slots[DelayTime]; q != nil {
		p.DelayTime = q.Value()
	}
	if q := r.slots[Depth]; q != nil {
		p.Depth = q.Value()
	}
	if q := r.slots[Rate]; q != nil {
		p.Rate = q.Value()
	}
	if q := r.slots[PhaseOffset]; q != nil {
		p.PhaseOffset = q.Value()
	}
	if q := r.slots[Type]; q != nil {
		p.Mode = engine.Mode(int(q.Value()))
	}
	if q := r.slots[Gain]; q != nil {
		p.Gain = q.Value()
	}
}

// Snapshot returns the current values as engine parameters.
func (r *Registry) Snapshot() engine.Params {
	var p engine.Params
	r.Load(&p)
	return p
}
