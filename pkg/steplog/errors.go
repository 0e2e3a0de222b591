package steplog

import "github.com/mecha-labs/steplog/internal/domain"

// Sentinel errors returned by the facade. Check with errors.Is.
var (
	// ErrInvalidConfig indicates a configuration validation failure.
	ErrInvalidConfig = domain.ErrInvalidConfig

	// ErrAlreadyRunning is returned by Start while acquiring.
	ErrAlreadyRunning = domain.ErrAlreadyRunning

	// ErrAlreadyStopped is returned by Start after the run has finished.
	// Stopped is terminal; a new acquisition needs a new instance.
	ErrAlreadyStopped = domain.ErrAlreadyStopped

	// ErrNotRunning is returned by Stop before Start.
	ErrNotRunning = domain.ErrNotRunning

	// ErrShutdownTimeout is returned when the sampling goroutine does not
	// exit within the shutdown timeout.
	ErrShutdownTimeout = domain.ErrShutdownTimeout
)
