package domain

import "errors"

// Domain errors represent error conditions in the steplog domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("steplog: invalid configuration")

	// ErrAlreadyRunning is returned when Start() is called while acquiring.
	ErrAlreadyRunning = errors.New("steplog: already running")

	// ErrAlreadyStopped is returned when Start() is called after the recorder
	// has stopped. Stopped is terminal; a new acquisition needs a new recorder.
	ErrAlreadyStopped = errors.New("steplog: already stopped")

	// ErrNotRunning is returned when Stop() is called before Start().
	ErrNotRunning = errors.New("steplog: not running")

	// ErrShutdownTimeout is returned when the sampling goroutine does not
	// exit within the shutdown timeout.
	ErrShutdownTimeout = errors.New("steplog: shutdown timeout")
)
