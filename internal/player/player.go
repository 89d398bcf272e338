// Package player plays an engine-processed stream in real time and lets the
// terminal nudge parameters while it runs.
package player

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep/v2"
	"github.com/sirupsen/logrus"
)

const pollInterval = 50 * time.Millisecond

// Config sets up the output device.
type Config struct {
	SampleRate int
	// Latency is the device buffer length; 0 lets oto choose.
	Latency time.Duration
}

// Player owns the process-wide oto context. Create at most one.
type Player struct {
	ctx        *oto.Context
	sampleRate int
	log        logrus.FieldLogger
}

// New opens the audio device for stereo float32 output.
func New(cfg Config, log logrus.FieldLogger) (*Player, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("player: sample rate must be > 0: %d", cfg.SampleRate)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	op := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   cfg.Latency,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("player: open device: %w", err)
	}
	<-ready

	log.WithFields(logrus.Fields{
		"sampleRate": cfg.SampleRate,
		"latency":    cfg.Latency,
	}).Debug("audio device ready")

	return &Player{ctx: ctx, sampleRate: cfg.SampleRate, log: log}, nil
}

// SampleRate returns the device sample rate.
func (p *Player) SampleRate() int { return p.sampleRate }

// Play streams src until it drains, ctx is cancelled or the quit key is
// pressed. keys may be nil for non-interactive playback.
func (p *Player) Play(ctx context.Context, src beep.Streamer, keys *Keys) error {
	pl := p.ctx.NewPlayer(NewReader(src, p.sampleRate/20))
	defer pl.Close()

	var quit <-chan struct{}
	if keys != nil {
		t, err := startTerminal(keys)
		switch {
		case errors.Is(err, errNotTerminal):
			p.log.Warn("stdin is not a terminal, key control disabled")
		case err != nil:
			return err
		default:
			defer t.stop()
			quit = t.quit
		}
	}

	pl.Play()
	p.log.Info("playing")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-quit:
			return nil
		case <-ticker.C:
			if !pl.IsPlaying() {
				if err := pl.Err(); err != nil {
					return fmt.Errorf("player: %w", err)
				}
				p.log.Info("stream finished")
				return nil
			}
		}
	}
}
