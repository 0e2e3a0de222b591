package domain

import (
	"fmt"
	"time"
)

// Default acquisition settings. The sample period and queue depth match the
// classic 100 Hz, 200-sample step response capture.
const (
	DefaultSamplePeriod    = 10 * time.Millisecond
	DefaultMaxSamples      = 200
	DefaultShutdownTimeout = 5 * time.Second
)

// Settings holds the validated acquisition parameters for one run.
type Settings struct {
	// SamplePeriod is the fixed interval between analog reads. Must be > 0.
	SamplePeriod time.Duration

	// Duration bounds the acquisition. Zero means unbounded: the run continues
	// until Stop() is called or MaxSamples is reached.
	Duration time.Duration

	// MaxSamples caps the number of samples in a run. Zero means no cap.
	MaxSamples int

	// ShutdownTimeout is the maximum time Stop() waits for the sampling
	// goroutine to exit.
	ShutdownTimeout time.Duration
}

// SetDefaults fills the shutdown timeout when unset. Acquisition parameters
// are never defaulted here: a zero sample period is invalid, and zero is
// meaningful for both Duration and MaxSamples.
func (s *Settings) SetDefaults() {
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// Validate checks the settings before any acquisition state is created.
// All errors wrap ErrInvalidConfig.
func (s Settings) Validate() error {
	if s.SamplePeriod <= 0 {
		return fmt.Errorf("%w: sample period must be positive, got %v", ErrInvalidConfig, s.SamplePeriod)
	}
	if s.Duration < 0 {
		return fmt.Errorf("%w: duration must not be negative, got %v", ErrInvalidConfig, s.Duration)
	}
	if s.Duration > 0 && s.Duration < s.SamplePeriod {
		return fmt.Errorf("%w: duration %v is shorter than one sample period %v", ErrInvalidConfig, s.Duration, s.SamplePeriod)
	}
	if s.MaxSamples < 0 {
		return fmt.Errorf("%w: max samples must not be negative, got %d", ErrInvalidConfig, s.MaxSamples)
	}
	if s.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown timeout must be positive, got %v", ErrInvalidConfig, s.ShutdownTimeout)
	}
	return nil
}
