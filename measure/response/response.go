package response

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-moddelay/dsp/core"
	"github.com/cwbudde/algo-moddelay/dsp/engine"
)

const (
	defaultSampleRate = 48000.0
	defaultFFTSize    = 1 << 15

	// flatTolerance is the relative difference below which neighbouring
	// bins count as level.
	flatTolerance = 1e-9
)

// ErrInvalidConfig is returned for configurations that cannot be measured.
var ErrInvalidConfig = errors.New("response: invalid config")

// Config selects the engine configuration to measure.
type Config struct {
	SampleRate      float64
	FFTSize         int
	MaxDelaySeconds float64
	Variant         engine.Variant
	// Params are the values to measure with; nil means engine.DefaultParams.
	Params  *engine.Params
	Options []engine.Option
}

// Extremum is a local peak or notch of the magnitude response.
type Extremum struct {
	Bin     int
	Freq    float64
	Level   float64
	LevelDB float64
}

// Result holds a measured response.
type Result struct {
	SampleRate  float64
	FFTSize     int
	Impulse     []float64
	Magnitude   []float64
	MagnitudeDB []float64
	Peaks       []Extremum
	Notches     []Extremum
}

// Measure renders an impulse through the configured engine and analyses
// the left-channel response.
func Measure(cfg Config) (Result, error) {
	cfg, err := normalizeConfig(cfg)
	if err != nil {
		return Result{}, err
	}

	ir, err := Impulse(cfg)
	if err != nil {
		return Result{}, err
	}

	mag, err := Magnitude(ir)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		SampleRate:  cfg.SampleRate,
		FFTSize:     cfg.FFTSize,
		Impulse:     ir,
		Magnitude:   mag,
		MagnitudeDB: make([]float64, len(mag)),
	}
	for i, m := range mag {
		res.MagnitudeDB[i] = core.LinearToDB(m)
	}
	res.Peaks, res.Notches = res.extrema()

	return res, nil
}

// Impulse returns cfg.FFTSize samples of the engine's impulse response.
func Impulse(cfg Config) ([]float64, error) {
	cfg, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}

	e, err := engine.New(cfg.Variant, cfg.Options...)
	if err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}
	e.SetTargets(*cfg.Params)
	if err := e.Prepare(cfg.SampleRate, cfg.MaxDelaySeconds); err != nil {
		return nil, fmt.Errorf("response: %w", err)
	}

	ir := make([]float64, cfg.FFTSize)
	ir[0] = 1
	src := engine.Fixed(*cfg.Params)
	e.ProcessBlock(ir, nil, &src)

	return ir, nil
}

// Magnitude returns |X[k]| for bins 0..N/2 of the FFT of signal. len(signal)
// must be a size the FFT planner accepts.
func Magnitude(signal []float64) ([]float64, error) {
	n := len(signal)
	if n < 2 {
		return nil, fmt.Errorf("%w: signal length %d", ErrInvalidConfig, n)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("response: fft plan: %w", err)
	}

	in := make([]complex128, n)
	for i, x := range signal {
		in[i] = complex(x, 0)
	}
	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("response: fft: %w", err)
	}

	bins := n/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for k := range bins {
		re[k] = real(out[k])
		im[k] = imag(out[k])
	}
	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)

	return mag, nil
}

// BinFreq returns the centre frequency of bin k in Hz.
func (r Result) BinFreq(k int) float64 {
	return float64(k) * r.SampleRate / float64(r.FFTSize)
}

// PeakSpacing returns the mean distance in Hz between adjacent peaks, or 0
// with fewer than two peaks. For a comb this is 1/delay.
func (r Result) PeakSpacing() float64 {
	if len(r.Peaks) < 2 {
		return 0
	}
	first, last := r.Peaks[0], r.Peaks[len(r.Peaks)-1]
	return (last.Freq - first.Freq) / float64(len(r.Peaks)-1)
}

// Ripple returns the distance in dB between the highest peak and the
// deepest notch.
func (r Result) Ripple() float64 {
	if len(r.Peaks) == 0 || len(r.Notches) == 0 {
		return 0
	}
	hi := r.Peaks[0].LevelDB
	for _, p := range r.Peaks[1:] {
		hi = max(hi, p.LevelDB)
	}
	lo := r.Notches[0].LevelDB
	for _, n := range r.Notches[1:] {
		lo = min(lo, n.LevelDB)
	}
	return hi - lo
}

func (r Result) extrema() (peaks, notches []Extremum) {
	mag := r.Magnitude
	for k := 1; k < len(mag)-1; k++ {
		switch {
		case above(mag[k], mag[k-1]) && !above(mag[k+1], mag[k]):
			peaks = append(peaks, r.extremum(k))
		case above(mag[k-1], mag[k]) && !above(mag[k], mag[k+1]):
			notches = append(notches, r.extremum(k))
		}
	}
	return peaks, notches
}

func above(a, b float64) bool {
	return a > b && !core.NearlyEqual(a, b, flatTolerance)
}

func (r Result) extremum(k int) Extremum {
	return Extremum{
		Bin:     k,
		Freq:    r.BinFreq(k),
		Level:   r.Magnitude[k],
		LevelDB: r.MagnitudeDB[k],
	}
}

func normalizeConfig(cfg Config) (Config, error) {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = defaultSampleRate
	}
	if cfg.FFTSize == 0 {
		cfg.FFTSize = defaultFFTSize
	}
	if cfg.MaxDelaySeconds == 0 {
		cfg.MaxDelaySeconds = engine.DefaultMaxDelaySeconds
	}
	if cfg.Params == nil {
		p := engine.DefaultParams()
		cfg.Params = &p
	}

	if cfg.SampleRate < 0 {
		return cfg, fmt.Errorf("%w: sample rate %f", ErrInvalidConfig, cfg.SampleRate)
	}
	if cfg.FFTSize < 2 {
		return cfg, fmt.Errorf("%w: fft size %d", ErrInvalidConfig, cfg.FFTSize)
	}
	cfg.FFTSize = nextPowerOf2(cfg.FFTSize)

	return cfg, nil
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
