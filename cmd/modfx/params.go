package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-moddelay/dsp/engine"
	"github.com/cwbudde/algo-moddelay/dsp/params"
)

const settleTolerance = 1e-3

func newParamsCmd(o *options) *cobra.Command {
	var (
		savePreset, saveState string
		sampleRate            float64
	)

	cmd := &cobra.Command{
		Use:   "params",
		Short: "List the variant's parameters and optionally save them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !(sampleRate > 0) {
				return fmt.Errorf("sample rate must be > 0: %g", sampleRate)
			}
			reg, err := o.registry(cmd)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tNAME\tRANGE\tDEFAULT\tVALUE")
			for _, p := range reg.All() {
				fmt.Fprintf(tw, "%s\t%s\t[%g, %g]\t%g\t%s\n", p.Key, p.Name, p.Min, p.Max, p.Default, p.Format())
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			eng, err := engine.New(reg.Variant())
			if err != nil {
				return err
			}
			if tau, settle := eng.SmoothingTime(sampleRate, settleTolerance); settle > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\nsmoothing: %.2f ms time constant, %d samples to settle within %g at %g Hz\n",
					tau*1000, settle, settleTolerance, sampleRate)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "\nsmoothing: none, the LFO moves the delay continuously")
			}

			if savePreset != "" {
				if err := saveFile(savePreset, reg.WritePreset); err != nil {
					return err
				}
				o.log.WithField("path", savePreset).Info("preset saved")
			}
			if saveState != "" {
				if err := saveFile(saveState, reg.WriteState); err != nil {
					return err
				}
				o.log.WithFields(logrus.Fields{"path": saveState, "version": params.StateVersion}).Info("state saved")
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&savePreset, "save-preset", "", "write the values as a JSON preset")
	f.StringVar(&saveState, "save-state", "", "write the values as a binary state record")
	f.Float64Var(&sampleRate, "sample-rate", 48000, "sample rate for the smoothing report")

	return cmd
}

func saveFile(path string, save func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
