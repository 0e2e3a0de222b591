package run

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Run errors can be checked with errors.Is.
var (
	// ErrRunFrozen is returned when appending to a frozen run.
	ErrRunFrozen = errors.New("run: frozen")

	// ErrOutOfOrder is returned when an appended sample does not advance the
	// elapsed time of the run.
	ErrOutOfOrder = errors.New("run: sample out of order")
)

// Sample is one timestamped analog reading. Immutable once recorded.
type Sample struct {
	// Elapsed is the time since acquisition start.
	Elapsed time.Duration `json:"elapsed"`

	// Raw is the ADC reading in counts, as returned by the analog front end.
	Raw int32 `json:"raw"`

	// Volts is the converted voltage.
	Volts float64 `json:"volts"`
}

// Run is one acquisition session's ordered sample sequence.
//
// A Run is created when acquisition starts, appended to only by the recorder
// while acquiring, and frozen once acquisition stops. After Freeze the run is
// read-only and owned by whoever holds the pointer; every accessor remains
// safe for concurrent use.
//
// Invariant: elapsed times are strictly increasing across the run.
type Run struct {
	id        uuid.UUID
	startedAt time.Time
	period    time.Duration

	mu      sync.Mutex
	samples []Sample
	dropped int
	frozen  bool
}

// New creates an empty run for an acquisition starting at startedAt with the
// given sample period.
func New(startedAt time.Time, period time.Duration) *Run {
	return &Run{
		id:        uuid.New(),
		startedAt: startedAt,
		period:    period,
	}
}

// ID returns the unique identifier of the run.
func (r *Run) ID() uuid.UUID { return r.id }

// StartedAt returns the wall-clock time acquisition began.
func (r *Run) StartedAt() time.Time { return r.startedAt }

// Period returns the configured sample period.
func (r *Run) Period() time.Duration { return r.period }

// Append adds a sample to the run.
// Returns ErrRunFrozen after Freeze, and ErrOutOfOrder if the sample's
// elapsed time does not exceed the previous sample's.
func (r *Run) Append(s Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrRunFrozen
	}
	if n := len(r.samples); n > 0 && s.Elapsed <= r.samples[n-1].Elapsed {
		return ErrOutOfOrder
	}
	r.samples = append(r.samples, s)
	return nil
}

// RecordDrop counts a tick whose analog read failed. Drops are bookkeeping
// only and are accepted even after Freeze is racing with a final tick.
func (r *Run) RecordDrop() {
	r.mu.Lock()
	r.dropped++
	r.mu.Unlock()
}

// Freeze makes the run read-only. Idempotent.
func (r *Run) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether the run has been frozen.
func (r *Run) Frozen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frozen
}

// Len returns the number of recorded samples.
func (r *Run) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

// Dropped returns the number of ticks lost to failed analog reads.
func (r *Run) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Samples returns a copy of the recorded samples in acquisition order.
func (r *Run) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Last returns the most recent sample and true, or a zero sample and false
// when the run is empty.
func (r *Run) Last() (Sample, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.samples) == 0 {
		return Sample{}, false
	}
	return r.samples[len(r.samples)-1], true
}
