package steplog

import (
	"time"

	"github.com/mecha-labs/steplog/internal/app"
	"github.com/mecha-labs/steplog/pkg/run"
)

// State represents the lifecycle state of a Steplog instance.
type State int

const (
	// StateIdle means the instance was created but not started.
	StateIdle State = iota

	// StateAcquiring means samples are being taken.
	StateAcquiring

	// StateStopped means the acquisition finished. Terminal.
	StateStopped
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// SampleDroppedEvent is emitted when a tick fails to produce a sample.
// The run continues; the drop is counted on the run.
type SampleDroppedEvent struct {
	// Elapsed is the timeline position of the failed tick.
	Elapsed time.Duration

	// Err is the read or append error that caused the drop.
	Err error
}

// RunCompleteEvent is emitted once per run, after the frozen run has been
// exported (and uploaded, when uploads are configured).
type RunCompleteEvent struct {
	// Run is the frozen run.
	Run *run.Run

	// Path is the exported CSV file, empty if the export failed.
	Path string

	// Uploaded reports whether the run reached the ingest service.
	Uploaded bool
}

// EventHandler receives notifications about steplog operations.
// Events are called synchronously from steplog goroutines; implementations
// should return quickly to avoid delaying the next tick.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnSampleDropped(event SampleDroppedEvent)
	OnRunComplete(event RunCompleteEvent)
}

// BaseEventHandler provides no-op implementations of all EventHandler
// methods. Embed it to implement only the events you care about.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(event StateChangeEvent)     {}
func (BaseEventHandler) OnSampleDropped(event SampleDroppedEvent) {}
func (BaseEventHandler) OnRunComplete(event RunCompleteEvent)     {}

func convertState(s app.State) State {
	switch s {
	case app.StateIdle:
		return StateIdle
	case app.StateAcquiring:
		return StateAcquiring
	case app.StateStopped:
		return StateStopped
	default:
		return StateIdle
	}
}
