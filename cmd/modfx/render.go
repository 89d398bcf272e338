package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-moddelay/dsp/core"
	"github.com/cwbudde/algo-moddelay/internal/render"
)

func newRenderCmd(o *options) *cobra.Command {
	var (
		output    string
		outDir    string
		suffix    string
		tail      float64
		normalize float64
		normDB    float64
		workers   int
		blockSize int
	)

	cmd := &cobra.Command{
		Use:   "render [flags] input.wav ...",
		Short: "Render WAV files through the effect",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" && len(args) > 1 {
				return fmt.Errorf("--output takes a single input; use --outdir for %d files", len(args))
			}

			reg, err := o.registry(cmd)
			if err != nil {
				return err
			}
			opts, err := o.engineOptions()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("normalize-db") {
				normalize = core.DBToLinear(normDB)
			}

			r, err := render.New(render.Config{
				Variant:         reg.Variant(),
				Params:          reg,
				MaxDelaySeconds: o.maxDelay,
				BlockSize:       blockSize,
				TailSeconds:     tail,
				Normalize:       normalize,
				Workers:         workers,
				Options:         opts,
			}, render.WithLogger(o.log))
			if err != nil {
				return err
			}

			jobs := make([]render.Job, len(args))
			for i, in := range args {
				jobs[i] = render.Job{Input: in, Output: outputPath(in, output, outDir, suffix)}
			}

			stats, err := r.RenderAll(cmd.Context(), jobs)
			if err != nil {
				return err
			}

			var frames int
			for _, s := range stats {
				frames += s.Frames
			}
			o.log.WithFields(logrus.Fields{"files": len(stats), "frames": frames}).Info("done")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output file (single input only)")
	f.StringVar(&outDir, "outdir", "", "directory for rendered files (default: next to the input)")
	f.StringVar(&suffix, "suffix", ".fx", "name suffix when --output is not set")
	f.Float64Var(&tail, "tail", -1, "seconds of ring-out appended; negative derives it from the feedback")
	f.Float64Var(&normalize, "normalize", 0, "normalize the output peak to this level (0 = off)")
	f.Float64Var(&normDB, "normalize-db", 0, "normalize the output peak to this level in dBFS")
	cmd.MarkFlagsMutuallyExclusive("normalize", "normalize-db")
	f.IntVarP(&workers, "workers", "j", 0, "files rendered concurrently (0 = all)")
	f.IntVar(&blockSize, "block-size", 512, "processing block size in frames")

	return cmd
}

func outputPath(in, output, outDir, suffix string) string {
	if output != "" {
		return output
	}
	ext := filepath.Ext(in)
	name := strings.TrimSuffix(filepath.Base(in), ext) + suffix + ext
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(in)
	}
	return filepath.Join(dir, name)
}
