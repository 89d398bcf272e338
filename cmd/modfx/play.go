package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-moddelay/dsp/engine"
	"github.com/cwbudde/algo-moddelay/dsp/stream"
	"github.com/cwbudde/algo-moddelay/internal/player"
	"github.com/cwbudde/algo-moddelay/internal/wavio"
)

func newPlayCmd(o *options) *cobra.Command {
	var (
		tone       float64
		sampleRate int
		latency    time.Duration
		noKeys     bool
		tail       float64
	)

	cmd := &cobra.Command{
		Use:   "play [flags] [input.wav]",
		Short: "Play a file or test tone through the effect in real time",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && tone <= 0 {
				return errors.New("need an input file or --tone")
			}

			reg, err := o.registry(cmd)
			if err != nil {
				return err
			}

			var src beep.Streamer
			rate := sampleRate
			if len(args) == 1 {
				a, err := wavio.ReadFile(args[0])
				if err != nil {
					return err
				}
				rate = a.SampleRate
				src = stream.FromStereo(a.Data)
				o.log.WithFields(logrus.Fields{
					"file":     args[0],
					"duration": fmt.Sprintf("%.2fs", a.Duration()),
				}).Info("loaded")
			} else {
				src, err = generators.SineTone(beep.SampleRate(rate), tone)
				if err != nil {
					return err
				}
				src = beep.Take(beep.SampleRate(rate).N(10*time.Minute), src)
			}

			opts, err := o.engineOptions()
			if err != nil {
				return err
			}
			e, err := engine.New(reg.Variant(), opts...)
			if err != nil {
				return err
			}
			e.SetTargets(reg.Snapshot())
			if err := e.Prepare(float64(rate), o.maxDelay); err != nil {
				return err
			}

			if tail < 0 {
				tail = min(e.TailSeconds(reg.Snapshot()), 10)
			}
			fx, err := stream.New(src, e, reg, stream.WithTail(beep.SampleRate(rate).N(time.Duration(tail*float64(time.Second)))))
			if err != nil {
				return err
			}

			p, err := player.New(player.Config{SampleRate: rate, Latency: latency}, o.log)
			if err != nil {
				return err
			}

			var keys *player.Keys
			if !noKeys {
				keys = player.NewKeys(reg, fx)
			}
			err = p.Play(cmd.Context(), fx, keys)
			if err != nil && cmd.Context().Err() != nil {
				// interrupted by a signal
				return nil
			}
			return err
		},
	}

	f := cmd.Flags()
	f.Float64Var(&tone, "tone", 0, "play a sine test tone at this frequency instead of a file")
	f.IntVar(&sampleRate, "sample-rate", 48000, "sample rate for the test tone")
	f.DurationVar(&latency, "latency", 0, "device buffer length (0 = driver default)")
	f.BoolVar(&noKeys, "no-keys", false, "disable terminal key control")
	f.Float64Var(&tail, "tail", -1, "seconds of ring-out after the input ends; negative derives it from the feedback")

	return cmd
}
