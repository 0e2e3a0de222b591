// Package steplog provides a lightweight agent for recording step responses
// from lab DAQ boards.
//
// This root package re-exports the embeddable API from pkg/steplog and adds
// a one-shot Record helper.
//
// Example usage:
//
//	cfg := steplog.Config{
//	    SamplePeriod: 10 * time.Millisecond,
//	    Duration:     2 * time.Second,
//	}
//	frozen, err := steplog.Record(context.Background(), cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, s := range frozen.Samples() {
//	    fmt.Println(s.Elapsed, s.Volts)
//	}
package steplog

import (
	"context"

	"github.com/mecha-labs/steplog/pkg/run"
	"github.com/mecha-labs/steplog/pkg/steplog"
)

// Re-exported facade types. Import pkg/steplog directly for the full
// surface (events, plugins, options).
type (
	// Steplog is the embeddable acquisition agent.
	Steplog = steplog.Steplog

	// Config holds the configuration for a Steplog instance.
	Config = steplog.Config

	// Option configures optional behavior of a Steplog instance.
	Option = steplog.Option

	// State is the lifecycle state of a Steplog instance.
	State = steplog.State

	// Run is a frozen, ordered sequence of samples.
	Run = run.Run

	// Sample is a single timestamped reading.
	Sample = run.Sample
)

// Lifecycle states.
const (
	StateIdle      = steplog.StateIdle
	StateAcquiring = steplog.StateAcquiring
	StateStopped   = steplog.StateStopped
)

// New creates a Steplog instance. See pkg/steplog for options.
func New(cfg Config, opts ...Option) (*Steplog, error) {
	return steplog.New(cfg, opts...)
}

// Record runs a single acquisition to completion and returns the frozen
// run. It blocks until the configured duration elapses, the sample cap is
// reached, or ctx is cancelled; the run is exported (and uploaded, when
// configured) before Record returns.
func Record(ctx context.Context, cfg Config, opts ...Option) (*run.Run, error) {
	agent, err := steplog.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := agent.Start(ctx); err != nil {
		return nil, err
	}
	<-agent.Done()
	return agent.Stop()
}
