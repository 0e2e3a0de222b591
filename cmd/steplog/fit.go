package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mecha-labs/steplog/pkg/run"
	"github.com/mecha-labs/steplog/pkg/stepfit"
)

// newFitCmd builds the fit subcommand: estimate the first-order model of a
// recorded run. With no argument it fits the last recorded run, found via
// the status file in the data directory.
func newFitCmd(zl zerolog.Logger) *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "fit [run.csv]",
		Short: "Fit a first-order model to a recorded step response",
		Example: `  steplog fit
  steplog fit runs/run-20240116T120000-a1b2c3d4.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveRunPath(args, dataDir)
			if err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open run: %w", err)
			}
			defer f.Close()

			samples, err := run.DecodeCSV(f)
			if err != nil {
				return fmt.Errorf("decode run: %w", err)
			}

			fit, err := stepfit.FirstOrder(samples)
			if err != nil {
				return fmt.Errorf("fit: %w", err)
			}

			fmt.Printf("run:           %s\n", path)
			fmt.Printf("samples:       %d\n", len(samples))
			fmt.Printf("final value:   %.3f V\n", fit.FinalVolts)
			fmt.Printf("time constant: %v\n", fit.Tau)
			fmt.Printf("rise time:     %v (10-90%%)\n", fit.RiseTime)
			fmt.Printf("settling time: %v (2%%)\n", fit.SettlingTime)
			fmt.Printf("r-squared:     %.4f\n", fit.RSquared)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", defaultDataDir(), "directory holding exported runs and the status file")

	return cmd
}

// resolveRunPath picks the run to fit: the explicit argument, or the last
// completed run recorded in the status file.
func resolveRunPath(args []string, dataDir string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	st, err := run.NewFileRepository(dataDir).LoadStatus(context.Background())
	if err != nil {
		return "", fmt.Errorf("load status: %w", err)
	}
	if st.Path == "" {
		return "", fmt.Errorf("no recorded runs in %s; pass a run file", dataDir)
	}
	return st.Path, nil
}

func defaultDataDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".steplog", "runs")
	}
	return "steplog-runs"
}
