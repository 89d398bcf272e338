package core

import (
	"math"
	"testing"
)

func TestApplyProcessorOptions(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(96000), WithBlockSize(2048), WithMaxDelaySeconds(1.5))
	if cfg.SampleRate != 96000 {
		t.Fatalf("sample rate = %v, want 96000", cfg.SampleRate)
	}
	if cfg.BlockSize != 2048 {
		t.Fatalf("block size = %d, want 2048", cfg.BlockSize)
	}
	if cfg.MaxDelaySeconds != 1.5 {
		t.Fatalf("max delay = %v, want 1.5", cfg.MaxDelaySeconds)
	}
}

func TestInvalidOptionsIgnored(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(0), WithBlockSize(-1), WithMaxDelaySeconds(math.Inf(1)), nil)
	def := DefaultProcessorConfig()
	if cfg != def {
		t.Fatalf("cfg = %#v, want %#v", cfg, def)
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultProcessorConfig().Validate(); err != nil {
		t.Fatalf("default config: %v", err)
	}

	bad := []ProcessorConfig{
		{SampleRate: 0, BlockSize: 1, MaxDelaySeconds: 1},
		{SampleRate: math.NaN(), BlockSize: 1, MaxDelaySeconds: 1},
		{SampleRate: 48000, BlockSize: 0, MaxDelaySeconds: 1},
		{SampleRate: 48000, BlockSize: 1, MaxDelaySeconds: -1},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: expected error for %#v", i, cfg)
		}
	}
}
