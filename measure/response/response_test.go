package response

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-moddelay/dsp/engine"
	"github.com/cwbudde/algo-moddelay/internal/testutil"
)

func combConfig(dryWet, feedback float64) Config {
	p := engine.DefaultParams()
	p.DryWet = dryWet
	p.Feedback = feedback
	p.DelayTime = 0.01
	return Config{
		SampleRate: 48000,
		FFTSize:    8192,
		Variant:    engine.VariantDelay,
		Params:     &p,
	}
}

func TestImpulseOfPlainDelay(t *testing.T) {
	ir, err := Impulse(combConfig(0.5, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(ir) != 8192 {
		t.Fatalf("len %d", len(ir))
	}
	for i, v := range ir {
		want := 0.0
		if i == 0 || i == 480 {
			want = 0.5
		}
		if v != want {
			t.Fatalf("ir[%d] = %v want %v", i, v, want)
		}
	}
}

func TestImpulseWithFeedbackDecays(t *testing.T) {
	ir, err := Impulse(combConfig(1, 0.5))
	if err != nil {
		t.Fatal(err)
	}
	for k, want := range []float64{0, 1, 0.5, 0.25, 0.125} {
		if got := ir[k*480]; got != want {
			t.Fatalf("ir[%d] = %v want %v", k*480, got, want)
		}
	}
}

func TestCombResponse(t *testing.T) {
	res, err := Measure(combConfig(0.5, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Magnitude) != 8192/2+1 {
		t.Fatalf("bins %d", len(res.Magnitude))
	}
	testutil.RequireNearlyEqual(t, "dc gain", res.Magnitude[0], 1, 1e-12)
	testutil.RequireNearlyEqual(t, "dc gain dB", res.MagnitudeDB[0], 0, 1e-9)

	// a 10 ms delay puts a peak every 100 Hz
	testutil.RequireNearlyEqual(t, "peak spacing", res.PeakSpacing(), 100, 0.5)
	if len(res.Peaks) < 200 || len(res.Notches) < 200 {
		t.Fatalf("peaks=%d notches=%d", len(res.Peaks), len(res.Notches))
	}
	if first := res.Notches[0].Freq; math.Abs(first-50) > 6 {
		t.Fatalf("first notch at %.1f Hz, want near 50", first)
	}
	if r := res.Ripple(); r < 15 {
		t.Fatalf("ripple %.1f dB too shallow", r)
	}
}

func TestDryOnlyIsFlat(t *testing.T) {
	res, err := Measure(combConfig(0, 0.5))
	if err != nil {
		t.Fatal(err)
	}
	for k, m := range res.Magnitude {
		if math.Abs(m-1) > 1e-12 {
			t.Fatalf("bin %d: %v", k, m)
		}
	}
	if len(res.Peaks) != 0 || res.PeakSpacing() != 0 || res.Ripple() != 0 {
		t.Fatalf("flat response reported %d peaks", len(res.Peaks))
	}
}

func TestModulatedImpulseIsFinite(t *testing.T) {
	p := engine.DefaultParams()
	p.Feedback = 0.9
	res, err := Measure(Config{SampleRate: 44100, FFTSize: 4096, Variant: engine.VariantModulated, Params: &p})
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireFinite(t, res.Impulse)
	testutil.RequireFinite(t, res.Magnitude)
}

func TestZeroParamsAreMeasured(t *testing.T) {
	// All-zero params: dry only, no delay.
	ir, err := Impulse(Config{FFTSize: 64, Variant: engine.VariantDelay, Params: &engine.Params{}})
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceEqual(t, ir, testutil.Impulse(64, 0))

	// nil falls back to the defaults: half dry, echo beyond the window.
	ir, err = Impulse(Config{FFTSize: 64, Variant: engine.VariantDelay})
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireNearlyEqual(t, "ir[0]", ir[0], 0.5, 1e-15)
}

func TestExtremaIgnoreRoundingNoise(t *testing.T) {
	r := Result{
		SampleRate: 8,
		FFTSize:    12,
		Magnitude:  []float64{1, 1 + 1e-13, 1, 1 - 1e-13, 1, 2, 1, 0.5, 1},
	}
	r.MagnitudeDB = make([]float64, len(r.Magnitude))
	peaks, notches := r.extrema()
	if len(peaks) != 1 || peaks[0].Bin != 5 {
		t.Fatalf("peaks %+v", peaks)
	}
	if len(notches) != 1 || notches[0].Bin != 7 {
		t.Fatalf("notches %+v", notches)
	}
}

func TestMagnitudeOfBinCentredSine(t *testing.T) {
	const n = 1024
	x := testutil.DeterministicSine(32, n, 1, n)
	mag, err := Magnitude(x)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireNearlyEqual(t, "bin 32", mag[32], n/2, 1e-6)
	testutil.RequireNearlyEqual(t, "bin 31", mag[31], 0, 1e-6)
}

func TestConfigValidation(t *testing.T) {
	if _, err := Magnitude([]float64{1}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("got %v want ErrInvalidConfig", err)
	}
	if _, err := Measure(Config{SampleRate: -1}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("got %v want ErrInvalidConfig", err)
	}
	if _, err := Measure(Config{FFTSize: 1}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("got %v want ErrInvalidConfig", err)
	}
	if _, err := Measure(Config{Variant: engine.Variant(9), FFTSize: 64}); err == nil {
		t.Fatal("expected engine error")
	}

	res, err := Measure(Config{FFTSize: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if res.FFTSize != 1024 || res.SampleRate != 48000 {
		t.Fatalf("defaults not applied: %d %v", res.FFTSize, res.SampleRate)
	}
}

func BenchmarkMeasure(b *testing.B) {
	cfg := combConfig(0.5, 0.5)
	for i := 0; i < b.N; i++ {
		if _, err := Measure(cfg); err != nil {
			b.Fatal(err)
		}
	}
}
