package ports

import "time"

// Clock supplies wall time and periodic tickers.
// Injecting it keeps the recorder testable with a fake timebase.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// NewTicker returns a ticker firing every d.
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	// C returns the tick channel.
	C() <-chan time.Time

	// Stop stops tick delivery. It does not close the channel.
	Stop()
}
