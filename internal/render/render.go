// Package render runs WAV files through an engine offline.
package render

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-moddelay/dsp/buffer"
	"github.com/cwbudde/algo-moddelay/dsp/engine"
	"github.com/cwbudde/algo-moddelay/internal/wavio"
	"github.com/cwbudde/algo-moddelay/measure/level"
)

const (
	defaultBlockSize = 512
	// MaxAutoTail caps the ring-out added when Config.TailSeconds is negative.
	MaxAutoTail = 10.0
)

// Config describes one render setup shared by every job.
type Config struct {
	Variant         engine.Variant
	Params          engine.ParamSource
	MaxDelaySeconds float64
	BlockSize       int
	// TailSeconds of silence are appended so echoes can decay. Negative
	// means derive it from the feedback setting.
	TailSeconds float64
	// Normalize scales the output so its peak sits at this level; 0 leaves
	// the level alone.
	Normalize float64
	// Workers bounds concurrent jobs in RenderAll; 0 means one per job.
	Workers int
	Options []engine.Option
}

// Job is one input/output file pair.
type Job struct {
	Input  string
	Output string
}

// Stats reports what a render produced.
type Stats struct {
	Job      Job
	Frames   int
	Tail     int
	Peak     float64
	Gain     float64
	Duration time.Duration
	// Left and Right meter the written output after normalization.
	Left, Right level.Stats
}

// Renderer renders audio with a fixed configuration. It is safe for
// concurrent use; each render gets its own engine.
type Renderer struct {
	cfg  Config
	pool *buffer.Pool
	log  logrus.FieldLogger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger; the default is the logrus standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Renderer) {
		if log != nil {
			r.log = log
		}
	}
}

// New validates cfg and returns a Renderer.
func New(cfg Config, opts ...Option) (*Renderer, error) {
	if cfg.Params == nil {
		return nil, fmt.Errorf("render: params source is required")
	}
	if cfg.MaxDelaySeconds == 0 {
		cfg.MaxDelaySeconds = engine.DefaultMaxDelaySeconds
	}
	if cfg.BlockSize == 0 {
		cfg.BlockSize = defaultBlockSize
	}
	if cfg.BlockSize < 0 {
		return nil, fmt.Errorf("render: block size must be > 0: %d", cfg.BlockSize)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("render: workers must be >= 0: %d", cfg.Workers)
	}
	if _, err := engine.New(cfg.Variant, cfg.Options...); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	r := &Renderer{
		cfg:  cfg,
		pool: buffer.NewPool(),
		log:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Process runs in through a fresh engine and returns the rendered audio.
func (r *Renderer) Process(ctx context.Context, in *wavio.Audio) (*wavio.Audio, Stats, error) {
	start := time.Now()

	e, err := engine.New(r.cfg.Variant, r.cfg.Options...)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("render: %w", err)
	}
	var snap engine.Params
	r.cfg.Params.Load(&snap)
	e.SetTargets(snap)
	if err := e.Prepare(float64(in.SampleRate), r.cfg.MaxDelaySeconds); err != nil {
		return nil, Stats{}, fmt.Errorf("render: %w", err)
	}
	defer e.Release()

	tail := r.tailFrames(e, snap, in.SampleRate)
	tau, settle := e.SmoothingTime(float64(in.SampleRate), 1e-3)
	r.log.WithFields(logrus.Fields{
		"ringLength":  e.Len(),
		"tailFrames":  tail,
		"smoothingMs": tau * 1000,
		"settle":      settle,
	}).Debug("engine prepared")
	frames := in.Frames()
	total := frames + tail
	out := buffer.NewStereo(total)
	mono := in.Channels == 1

	blk := r.pool.Get(r.cfg.BlockSize)
	defer r.pool.Put(blk)

	for pos := 0; pos < total; pos += r.cfg.BlockSize {
		if err := ctx.Err(); err != nil {
			return nil, Stats{}, fmt.Errorf("render: %w", err)
		}

		n := min(r.cfg.BlockSize, total-pos)
		blk.Resize(n)
		if pos < frames {
			copy(blk.L, in.Data.L[pos:frames])
			copy(blk.R, in.Data.R[pos:frames])
		}

		if mono {
			e.ProcessBlock(blk.L, nil, r.cfg.Params)
			copy(blk.R, blk.L)
		} else {
			e.ProcessBlock(blk.L, blk.R, r.cfg.Params)
		}

		copy(out.L[pos:], blk.L)
		copy(out.R[pos:], blk.R)
	}

	stats := Stats{Frames: total, Tail: tail, Gain: 1}
	if r.cfg.Normalize > 0 {
		stats.Gain = wavio.Normalize(out, r.cfg.Normalize)
	}
	stats.Left = level.Calculate(out.L)
	stats.Right = level.Calculate(out.R)
	stats.Peak = max(stats.Left.Peak, stats.Right.Peak)
	stats.Duration = time.Since(start)

	return &wavio.Audio{
		SampleRate: in.SampleRate,
		Channels:   in.Channels,
		BitDepth:   in.BitDepth,
		Data:       out,
	}, stats, nil
}

func (r *Renderer) tailFrames(e *engine.Engine, p engine.Params, sampleRate int) int {
	seconds := r.cfg.TailSeconds
	if seconds < 0 {
		seconds = e.TailSeconds(p)
		if math.IsInf(seconds, 1) || seconds > MaxAutoTail {
			seconds = MaxAutoTail
		}
	}
	return int(math.Ceil(seconds * float64(sampleRate)))
}

// RenderFile reads job.Input, renders it and writes job.Output.
func (r *Renderer) RenderFile(ctx context.Context, job Job) (Stats, error) {
	log := r.log.WithFields(logrus.Fields{
		"input":   job.Input,
		"output":  job.Output,
		"variant": r.cfg.Variant,
	})

	in, err := wavio.ReadFile(job.Input)
	if err != nil {
		return Stats{}, fmt.Errorf("render: %w", err)
	}
	log.WithFields(logrus.Fields{
		"sampleRate": in.SampleRate,
		"channels":   in.Channels,
		"frames":     in.Frames(),
	}).Debug("decoded input")

	out, stats, err := r.Process(ctx, in)
	if err != nil {
		return Stats{}, err
	}
	stats.Job = job

	if err := wavio.WriteFile(job.Output, out); err != nil {
		return Stats{}, fmt.Errorf("render: %w", err)
	}

	log.WithFields(logrus.Fields{
		"frames":  stats.Frames,
		"tail":    stats.Tail,
		"peak":    stats.Peak,
		"gain":    stats.Gain,
		"rmsL":    fmt.Sprintf("%.1f dB", stats.Left.RMS_dB),
		"rmsR":    fmt.Sprintf("%.1f dB", stats.Right.RMS_dB),
		"elapsed": stats.Duration,
	}).Info("rendered")
	if clipped := stats.Left.Clipped + stats.Right.Clipped; clipped > 0 {
		log.WithFields(logrus.Fields{
			"peak":    stats.Peak,
			"samples": clipped,
		}).Warn("output clipped")
	}

	return stats, nil
}

// RenderAll renders jobs concurrently, at most Config.Workers at a time.
// The first failure cancels the remaining jobs.
func (r *Renderer) RenderAll(ctx context.Context, jobs []Job) ([]Stats, error) {
	g, ctx := errgroup.WithContext(ctx)
	if r.cfg.Workers > 0 {
		g.SetLimit(r.cfg.Workers)
	}

	stats := make([]Stats, len(jobs))
	for i, job := range jobs {
		g.Go(func() error {
			s, err := r.RenderFile(ctx, job)
			if err != nil {
				r.log.WithError(err).WithField("input", job.Input).Error("render failed")
				return err
			}
			stats[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
