// Package clock provides the wall-clock implementation of ports.Clock.
package clock

import (
	"time"

	"github.com/mecha-labs/steplog/internal/ports"
)

// WallClock implements ports.Clock using the system clock.
type WallClock struct{}

// New returns the wall clock.
func New() WallClock {
	return WallClock{}
}

// Now returns the current system time.
func (WallClock) Now() time.Time {
	return time.Now()
}

// NewTicker returns a ticker backed by time.Ticker.
func (WallClock) NewTicker(d time.Duration) ports.Ticker {
	return &wallTicker{t: time.NewTicker(d)}
}

type wallTicker struct {
	t *time.Ticker
}

func (w *wallTicker) C() <-chan time.Time { return w.t.C }
func (w *wallTicker) Stop()               { w.t.Stop() }
