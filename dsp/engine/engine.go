package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-moddelay/dsp/core"
	"github.com/cwbudde/algo-moddelay/dsp/delay"
	"github.com/cwbudde/algo-moddelay/dsp/interp"
	"github.com/cwbudde/algo-moddelay/dsp/lfo"
	"github.com/cwbudde/algo-moddelay/dsp/smooth"
)

// Channels is the number of channels an Engine processes.
const Channels = 2

// DefaultMaxDelaySeconds is the ring capacity the hosts prepare with.
const DefaultMaxDelaySeconds = 2.0

// ErrNotPrepared is wrapped by the panic raised when an engine processes
// audio before a successful Prepare.
var ErrNotPrepared = errors.New("engine: not prepared")

// Variant selects the delay source and default mix policy.
type Variant int

const (
	// VariantDelay smooths the delay-time parameter and crossfades.
	VariantDelay Variant = iota
	// VariantModulated drives the delay time from the LFO and crossfades.
	VariantModulated
	// VariantUtility smooths an input gain and sums the delayed signal.
	VariantUtility
)

// String returns the lower-case variant name.
func (v Variant) String() string {
	switch v {
	case VariantDelay:
		return "delay"
	case VariantModulated:
		return "modulated"
	case VariantUtility:
		return "utility"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// ParseVariant accepts the names returned by Variant.String. "chorus" and
// "flanger" are accepted as aliases for the modulated variant.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "delay":
		return VariantDelay, nil
	case "modulated", "chorus", "flanger":
		return VariantModulated, nil
	case "utility", "gain":
		return VariantUtility, nil
	default:
		return 0, fmt.Errorf("engine: unknown variant %q", s)
	}
}

// Engine is a stereo delay-based effect processor. An Engine is owned by
// one audio thread; it is not safe for concurrent use.
type Engine struct {
	variant Variant
	mix     MixPolicy

	sampleRate      float64
	maxDelaySeconds float64
	prepared        bool

	lines    [Channels]*delay.Line
	feedback [Channels]float64
	last     [Channels]float64

	osc       *lfo.LFO
	delayTime *smooth.Smoother
	gain      *smooth.Smoother

	targets Params
	scratch Params
}

// New creates an engine for variant. The engine must be prepared before use.
func New(variant Variant, opts ...Option) (*Engine, error) {
	switch variant {
	case VariantDelay, VariantModulated, VariantUtility:
	default:
		return nil, fmt.Errorf("engine: unknown variant %d", variant)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	e := &Engine{
		variant: variant,
		mix:     MixCrossfade,
		osc:     lfo.New(),
		targets: DefaultParams(),
	}
	if variant == VariantUtility {
		e.mix = MixAdditive
	}
	if cfg.mixSet {
		e.mix = cfg.mix
	}

	var err error
	if e.delayTime, err = smooth.New(cfg.delayCoef); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if e.gain, err = smooth.New(cfg.gainCoef); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	for ch := range e.lines {
		// A one-slot placeholder; Prepare sizes the real ring.
		e.lines[ch], err = delay.New(1, delay.WithMaxCapacity(cfg.maxCapacity), delay.WithMode(cfg.interp))
		if err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
	}

	return e, nil
}

// Prepare (re)sizes both rings to sampleRate × maxDelaySeconds, clears them
// and resets the LFO phase, write heads and feedback state. Smoothers jump
// to the most recent parameter targets so playback starts without a ramp.
// On error the engine keeps its previous configuration.
func (e *Engine) Prepare(sampleRate, maxDelaySeconds float64) error {
	n, err := delay.LengthFor(sampleRate, maxDelaySeconds)
	if err != nil {
		return fmt.Errorf("engine: prepare: %w", err)
	}
	for _, line := range e.lines {
		if err := line.Resize(n); err != nil {
			return fmt.Errorf("engine: prepare: %w", err)
		}
	}

	e.sampleRate = sampleRate
	e.maxDelaySeconds = maxDelaySeconds
	e.prepared = true
	e.clearState()

	return nil
}

// PrepareConfig prepares with the sample rate and max delay from cfg.
func (e *Engine) PrepareConfig(cfg core.ProcessorConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("engine: prepare: %w", err)
	}
	return e.Prepare(cfg.SampleRate, cfg.MaxDelaySeconds)
}

// SetTargets records p as the values the smoothers start from at the next
// Prepare or Reset.
func (e *Engine) SetTargets(p Params) {
	e.targets = p
}

// Reset clears the delay lines, feedback and LFO phase without
// reallocating.
func (e *Engine) Reset() {
	for _, line := range e.lines {
		line.Reset()
	}
	e.clearState()
}

// Release frees the delay rings. The engine must be prepared again before
// further processing.
func (e *Engine) Release() {
	for _, line := range e.lines {
		line.Release()
	}
	e.prepared = false
	e.clearState()
}

func (e *Engine) clearState() {
	e.feedback = [Channels]float64{}
	e.last = [Channels]float64{}
	e.osc.Reset()
	e.delayTime.Reset(e.targets.DelayTime)
	e.gain.Reset(e.targets.Gain)
}

// Process runs one stereo sample through the engine using p.
func (e *Engine) Process(left, right float64, p *Params) (float64, float64) {
	e.mustBePrepared()

	dl, dr, g := e.control(p)
	return e.channel(0, left, dl, g, p), e.channel(1, right, dr, g, p)
}

// ProcessMono runs one sample through the left channel only. The LFO and
// smoothers advance exactly as in Process.
func (e *Engine) ProcessMono(x float64, p *Params) float64 {
	e.mustBePrepared()

	dl, _, g := e.control(p)
	return e.channel(0, x, dl, g, p)
}

// ProcessBlock transforms left and right in place, pulling a parameter
// snapshot from src before every sample. right may be nil for mono input.
// If both channels are given, min(len(left), len(right)) samples are
// processed.
func (e *Engine) ProcessBlock(left, right []float64, src ParamSource) {
	e.mustBePrepared()

	if right == nil {
		for i := range left {
			src.Load(&e.scratch)
			left[i] = e.ProcessMono(left[i], &e.scratch)
		}
		return
	}

	n := min(len(left), len(right))
	for i := range n {
		src.Load(&e.scratch)
		left[i], right[i] = e.Process(left[i], right[i], &e.scratch)
	}
}

// control advances the per-sample modulation state once and returns the
// delay in samples for each channel plus the input gain.
func (e *Engine) control(p *Params) (float64, float64, float64) {
	e.targets = *p

	switch e.variant {
	case VariantModulated:
		outL := e.osc.Value() * p.Depth
		outR := e.osc.ValueAt(p.PhaseOffset) * p.Depth
		e.osc.Advance(p.Rate, e.sampleRate)
		return MapDelay(p.Mode, outL) * e.sampleRate, MapDelay(p.Mode, outR) * e.sampleRate, 1
	case VariantUtility:
		g := e.gain.Step(p.Gain)
		d := p.DelayTime * e.sampleRate
		return d, d, g
	default:
		d := e.delayTime.Step(p.DelayTime) * e.sampleRate
		return d, d, 1
	}
}

func (e *Engine) channel(ch int, x, delaySamples, gain float64, p *Params) float64 {
	line := e.lines[ch]
	delaySamples = clampDelay(delaySamples, line.Len())
	e.last[ch] = delaySamples

	in := x * gain
	line.Write(in + e.feedback[ch])
	delayed := line.ReadInterpolated(delaySamples)
	e.feedback[ch] = core.FlushDenormals(delayed * p.Feedback)
	line.Advance()

	if e.mix == MixAdditive {
		return in + delayed
	}
	return in*(1-p.DryWet) + delayed*p.DryWet
}

// clampDelay keeps a read inside the ring. Reads of length samples or more
// would alias onto the write head.
func clampDelay(delaySamples float64, length int) float64 {
	limit := float64(length - 1)
	if delaySamples > limit {
		assertDelay(delaySamples, length)
		return limit
	}
	if delaySamples < 0 {
		return 0
	}
	return delaySamples
}

func (e *Engine) mustBePrepared() {
	if !e.prepared {
		panic(fmt.Errorf("engine: process: %w", ErrNotPrepared))
	}
}

// Variant returns the engine variant.
func (e *Engine) Variant() Variant { return e.variant }

// MixPolicy returns the active mix policy.
func (e *Engine) MixPolicy() MixPolicy { return e.mix }

// SampleRate returns the prepared sample rate, or 0 before Prepare.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// MaxDelaySeconds returns the prepared ring capacity in seconds.
func (e *Engine) MaxDelaySeconds() float64 { return e.maxDelaySeconds }

// Interpolation returns the fractional read used by the delay lines.
func (e *Engine) Interpolation() interp.Mode { return e.lines[0].Mode() }

// Prepared reports whether Prepare has succeeded.
func (e *Engine) Prepared() bool { return e.prepared }

// Len returns the per-channel ring length in samples.
func (e *Engine) Len() int { return e.lines[0].Len() }

// LFOPhase returns the oscillator phase in [0, 1).
func (e *Engine) LFOPhase() float64 { return e.osc.Phase() }

// Feedback returns the pending feedback sample of channel ch.
func (e *Engine) Feedback(ch int) float64 { return e.feedback[ch] }

// LastDelaySamples returns the delay used for channel ch on the most recent
// sample.
func (e *Engine) LastDelaySamples(ch int) float64 { return e.last[ch] }

// SmoothedDelayTime returns the current smoothed delay time in seconds.
func (e *Engine) SmoothedDelayTime() float64 { return e.delayTime.Value() }

// SmoothedGain returns the current smoothed gain.
func (e *Engine) SmoothedGain() float64 { return e.gain.Value() }

// SmoothingTime reports the smoother applied by the variant: its 1/e time
// constant in seconds at sampleRate, and the samples it needs to close a
// unit step to within eps. The modulated variant does not smooth and
// reports zeros.
func (e *Engine) SmoothingTime(sampleRate, eps float64) (float64, int) {
	var s *smooth.Smoother
	switch e.variant {
	case VariantDelay:
		s = e.delayTime
	case VariantUtility:
		s = e.gain
	default:
		return 0, 0
	}
	return s.TimeConstant(sampleRate), smooth.StepsToSettle(s.Coefficient(), 1, eps)
}

// TailSeconds estimates how long the output stays above -60 dB after the
// input stops for the parameters p.
func (e *Engine) TailSeconds(p Params) float64 {
	d := p.DelayTime
	if e.variant == VariantModulated {
		d = MapDelay(p.Mode, p.Depth)
	}
	if p.Feedback <= 0 {
		return d
	}
	if p.Feedback >= 1 {
		return math.Inf(1)
	}
	repeats := math.Log(1e-3) / math.Log(p.Feedback)
	return d * (1 + repeats)
}
