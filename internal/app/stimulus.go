package app

import (
	"context"
	"fmt"
	"time"

	"github.com/mecha-labs/steplog/internal/ports"
)

// DefaultHalfPeriod is the classic plant exerciser cadence: 5 s low, 5 s high.
const DefaultHalfPeriod = 5 * time.Second

// SquareWave toggles the stimulus output every half period until ctx is
// canceled, then leaves the output low. Useful for exercising a plant by hand
// while watching the response on a scope.
func SquareWave(ctx context.Context, driver ports.StimulusDriver, clock ports.Clock, halfPeriod time.Duration, logger ports.Logger) error {
	if driver == nil {
		return fmt.Errorf("square wave: stimulus driver is required")
	}
	if halfPeriod <= 0 {
		halfPeriod = DefaultHalfPeriod
	}
	if logger == nil {
		logger = noopLogger{}
	}

	high := false
	if err := driver.Out(high); err != nil {
		return fmt.Errorf("square wave: %w", err)
	}
	logger.Info("square wave started", ports.Duration("half_period", halfPeriod))

	ticker := clock.NewTicker(halfPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Park the output low on the way out.
			if err := driver.Out(false); err != nil {
				logger.Warn("square wave: park low failed", ports.Err(err))
			}
			logger.Info("square wave stopped")
			return ctx.Err()
		case <-ticker.C():
			high = !high
			if err := driver.Out(high); err != nil {
				logger.Warn("square wave: toggle failed",
					ports.Bool("high", high),
					ports.Err(err),
				)
			}
		}
	}
}
