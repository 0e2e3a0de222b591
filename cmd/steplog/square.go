package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	clockAdapter "github.com/mecha-labs/steplog/internal/adapters/clock"
	"github.com/mecha-labs/steplog/internal/adapters/periphio"
	"github.com/mecha-labs/steplog/internal/adapters/sim"
	"github.com/mecha-labs/steplog/internal/app"
	"github.com/mecha-labs/steplog/internal/ports"
	logPkg "github.com/mecha-labs/steplog/pkg/log"
)

// newSquareCmd builds the square subcommand: a square-wave exerciser for
// driving a plant by hand while watching its response elsewhere.
func newSquareCmd(zl zerolog.Logger) *cobra.Command {
	var (
		stimulusPin string
		halfPeriod  time.Duration
		useSim      bool
	)

	cmd := &cobra.Command{
		Use:   "square",
		Short: "Toggle the stimulus output as a square wave until interrupted",
		Example: `  steplog square --stimulus-pin GPIO17
  steplog square --half-period 2s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if halfPeriod <= 0 {
				return fmt.Errorf("half period must be positive")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			clk := clockAdapter.New()

			var driver ports.StimulusDriver
			if useSim {
				driver = sim.NewPlant(sim.DefaultConfig(), clk)
			} else {
				pin, err := periphio.OpenStimulusPin(stimulusPin)
				if err != nil {
					return fmt.Errorf("open stimulus pin: %w", err)
				}
				defer pin.Close()
				driver = pin
			}

			logger := logPkg.NewZerologAdapterWithLogger(zl)
			zl.Info().Dur("half_period", halfPeriod).Msg("square wave running, ctrl-c to stop")

			if err := app.SquareWave(ctx, driver, clk, halfPeriod, logger); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&stimulusPin, "stimulus-pin", "GPIO17", "GPIO pin driving the output")
	cmd.Flags().DurationVar(&halfPeriod, "half-period", app.DefaultHalfPeriod, "time at each level")
	cmd.Flags().BoolVar(&useSim, "sim", false, "drive the simulated plant instead of hardware")

	return cmd
}
