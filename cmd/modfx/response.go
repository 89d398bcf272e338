package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-moddelay/measure/response"
)

func newResponseCmd(o *options) *cobra.Command {
	var (
		sampleRate float64
		fftSize    int
		peaks      int
	)

	cmd := &cobra.Command{
		Use:   "response",
		Short: "Print the magnitude response of the configured effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := o.registry(cmd)
			if err != nil {
				return err
			}

			opts, err := o.engineOptions()
			if err != nil {
				return err
			}
			snap := reg.Snapshot()
			res, err := response.Measure(response.Config{
				SampleRate:      sampleRate,
				FFTSize:         fftSize,
				MaxDelaySeconds: o.maxDelay,
				Variant:         reg.Variant(),
				Params:          &snap,
				Options:         opts,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "variant:      %s\n", reg.Variant())
			fmt.Fprintf(out, "fft size:     %d (%.2f Hz/bin)\n", res.FFTSize, res.BinFreq(1))
			fmt.Fprintf(out, "dc gain:      %.2f dB\n", res.MagnitudeDB[0])
			fmt.Fprintf(out, "peaks:        %d\n", len(res.Peaks))
			if spacing := res.PeakSpacing(); spacing > 0 {
				fmt.Fprintf(out, "peak spacing: %.2f Hz (%.2f ms)\n", spacing, 1000/spacing)
			}
			if ripple := res.Ripple(); ripple > 0 {
				fmt.Fprintf(out, "ripple:       %.2f dB\n", ripple)
			}

			n := min(peaks, len(res.Peaks))
			if n == 0 {
				return nil
			}
			fmt.Fprintln(out)
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "PEAK\tFREQ (Hz)\tLEVEL (dB)\t")
			for i, p := range res.Peaks[:n] {
				fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t\n", i+1, p.Freq, p.LevelDB)
			}
			return tw.Flush()
		},
	}

	f := cmd.Flags()
	f.Float64Var(&sampleRate, "sample-rate", 48000, "sample rate of the measurement")
	f.IntVar(&fftSize, "fft-size", 1<<15, "FFT length (rounded up to a power of two)")
	f.IntVar(&peaks, "peaks", 10, "number of peaks to list")

	return cmd
}
