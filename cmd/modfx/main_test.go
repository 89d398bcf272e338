package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-moddelay/dsp/buffer"
	"github.com/cwbudde/algo-moddelay/internal/testutil"
	"github.com/cwbudde/algo-moddelay/internal/wavio"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runLogged(t, args...)
	return out, err
}

// runLogged also returns what the command logged.
func runLogged(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, logs bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), logs.String(), err
}

func TestParamsListsVariant(t *testing.T) {
	out, err := run(t, "params", "--variant", "chorus", "--depth", "0.9", "--rate", "50")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"drywet", "phaseOffset", "0.900", "20.000 Hz"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "delaytime") {
		t.Fatalf("chorus should not list delaytime:\n%s", out)
	}
}

func TestParamsReportsSmoothing(t *testing.T) {
	tests := []struct {
		variant string
		want    string
	}{
		{"delay", "6905 samples"},
		{"utility", "1724 samples"},
		{"chorus", "smoothing: none"},
	}
	for _, tc := range tests {
		out, err := run(t, "params", "--variant", tc.variant)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, tc.want) {
			t.Fatalf("%s: output missing %q:\n%s", tc.variant, tc.want, out)
		}
	}
	if _, err := run(t, "params", "--sample-rate", "0"); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestModeIgnoredWarns(t *testing.T) {
	for _, variant := range []string{"delay", "utility"} {
		_, logs, err := runLogged(t, "params", "--variant", variant, "--mode", "flanger")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(logs, "parameter not used by this variant") || !strings.Contains(logs, "flag=mode") {
			t.Fatalf("%s: missing warning:\n%s", variant, logs)
		}
	}
	_, logs, err := runLogged(t, "params", "--variant", "chorus", "--mode", "flanger")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(logs, "not used") {
		t.Fatalf("chorus should accept --mode:\n%s", logs)
	}
}

func TestFlangerVariantSelectsMode(t *testing.T) {
	dir := t.TempDir()
	preset := filepath.Join(dir, "p.json")
	if _, err := run(t, "params", "--variant", "flanger", "--save-preset", preset); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(preset)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"type": 1`) {
		t.Fatalf("preset:\n%s", data)
	}

	// an explicit mode wins
	if _, err := run(t, "params", "--variant", "flanger", "--mode", "chorus", "--save-preset", preset); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(preset)
	if !strings.Contains(string(data), `"type": 0`) {
		t.Fatalf("preset:\n%s", data)
	}
}

func TestPresetAndStateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	preset := filepath.Join(dir, "delay.json")
	state := filepath.Join(dir, "delay.state")

	if _, err := run(t, "params", "--delaytime", "0.3", "--feedback", "0.2",
		"--save-preset", preset, "--save-state", state); err != nil {
		t.Fatal(err)
	}

	for _, args := range [][]string{{"--preset", preset}, {"--state", state}} {
		out, err := run(t, append([]string{"params"}, args...)...)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "0.300 s") || !strings.Contains(out, "0.200") {
			t.Fatalf("%v did not restore values:\n%s", args, out)
		}
	}

	// flags override the loaded values
	out, err := run(t, "params", "--preset", preset, "--feedback", "0.9")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "0.900") {
		t.Fatalf("flag did not override preset:\n%s", out)
	}
}

func TestBadFlagsFail(t *testing.T) {
	for _, args := range [][]string{
		{"params", "--variant", "reverb"},
		{"params", "--variant", "chorus", "--mode", "phaser"},
		{"params", "--log-level", "chatty"},
		{"params", "--preset", "/does/not/exist.json"},
		{"render"},
		{"render", "-o", "x.wav", "a.wav", "b.wav"},
		{"play"},
		{"response", "--interp", "cubic"},
		{"render", "--normalize", "0.5", "--normalize-db", "-6", "a.wav"},
	} {
		if _, err := run(t, args...); err == nil {
			t.Fatalf("%v: expected error", args)
		}
	}
}

func TestRenderWritesOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	src := &wavio.Audio{
		SampleRate: 8000,
		Channels:   2,
		Data: &buffer.Stereo{
			L: testutil.DeterministicSine(200, 8000, 0.5, 2000),
			R: testutil.DeterministicSine(300, 8000, 0.5, 2000),
		},
	}
	if err := wavio.WriteFile(in, src); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "render", "--variant", "chorus", "--tail", "0.5", "--outdir", dir, in); err != nil {
		t.Fatal(err)
	}
	out, err := wavio.ReadFile(filepath.Join(dir, "in.fx.wav"))
	if err != nil {
		t.Fatal(err)
	}
	if out.Frames() != 6000 {
		t.Fatalf("frames %d want 6000", out.Frames())
	}
}

func TestRenderNormalizeDB(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	src := &wavio.Audio{
		SampleRate: 8000,
		Channels:   1,
		Data: &buffer.Stereo{
			L: testutil.DeterministicSine(200, 8000, 0.2, 800),
			R: make([]float64, 800),
		},
	}
	if err := wavio.WriteFile(in, src); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out.wav")
	if _, err := run(t, "render", "--interp", "hermite", "--tail", "0", "--normalize-db", "-6", "-o", out, in); err != nil {
		t.Fatal(err)
	}
	a, err := wavio.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireNearlyEqual(t, "peak", wavio.Peak(a.Data), 0.5012, 1e-3)
}

func TestResponseReportsComb(t *testing.T) {
	out, err := run(t, "response", "--delaytime", "0.01", "--feedback", "0", "--fft-size", "8192", "--peaks", "3")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"peak spacing: 100.", "PEAK", "FREQ (Hz)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		in, output, dir, suffix, want string
	}{
		{"a/b.wav", "", "", ".fx", filepath.Join("a", "b.fx.wav")},
		{"a/b.wav", "", "out", "-wet", filepath.Join("out", "b-wet.wav")},
		{"a/b.wav", "x.wav", "out", ".fx", "x.wav"},
	}
	for _, tc := range tests {
		if got := outputPath(tc.in, tc.output, tc.dir, tc.suffix); got != tc.want {
			t.Fatalf("outputPath(%q) = %q want %q", tc.in, got, tc.want)
		}
	}
}
