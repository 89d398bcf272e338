package core

import (
	"fmt"
	"math"
)

// ProcessorConfig defines common DSP processing settings.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
	// MaxDelaySeconds is the ring-buffer capacity requested at prepare time.
	MaxDelaySeconds float64
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns the host defaults used by the effect engines.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate:      48000,
		BlockSize:       512,
		MaxDelaySeconds: 2,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 && !math.IsInf(sampleRate, 0) {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the processing block size.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithMaxDelaySeconds sets the delay-line capacity in seconds.
func WithMaxDelaySeconds(seconds float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if seconds > 0 && !math.IsInf(seconds, 0) {
			cfg.MaxDelaySeconds = seconds
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate reports whether cfg can drive a prepare cycle.
func (cfg ProcessorConfig) Validate() error {
	if cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) || math.IsInf(cfg.SampleRate, 0) {
		return fmt.Errorf("core: sample rate must be > 0 and finite: %f", cfg.SampleRate)
	}
	if cfg.BlockSize <= 0 {
		return fmt.Errorf("core: block size must be > 0: %d", cfg.BlockSize)
	}
	if cfg.MaxDelaySeconds <= 0 || math.IsNaN(cfg.MaxDelaySeconds) || math.IsInf(cfg.MaxDelaySeconds, 0) {
		return fmt.Errorf("core: max delay must be > 0 and finite: %f", cfg.MaxDelaySeconds)
	}
	return nil
}
