package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mecha-labs/steplog/internal/domain"
	"github.com/mecha-labs/steplog/internal/ports"
	"github.com/mecha-labs/steplog/pkg/run"
)

// DropEventEmitter is called when a tick's analog read fails.
type DropEventEmitter interface {
	OnSampleDropped(elapsed time.Duration, err error)
}

// RecorderDeps bundles the capabilities a Recorder needs.
// Reader and Clock are required; the rest are optional.
type RecorderDeps struct {
	Reader   ports.AnalogReader
	Stimulus ports.StimulusDriver
	Clock    ports.Clock
	Logger   ports.Logger
	Emitter  EventEmitter
	Drops    DropEventEmitter
}

// Recorder produces a Run by sampling the analog input at a fixed period.
//
// A Recorder drives one acquisition: Start arms the ticker and begins
// appending samples, Stop (or duration expiry, or the sample cap) freezes the
// run and returns it. The lifecycle is Idle -> Acquiring -> Stopped with
// Stopped terminal, so a fresh Recorder is needed for each run.
type Recorder struct {
	settings domain.Settings
	reader   ports.AnalogReader
	stimulus ports.StimulusDriver
	clock    ports.Clock
	logger   ports.Logger
	drops    DropEventEmitter

	lifecycle *Lifecycle

	mu        sync.Mutex
	active    *run.Run
	startedAt time.Time
	cancel    context.CancelFunc

	finishOnce sync.Once
	done       chan struct{}
}

// NewRecorder validates the settings and builds a recorder.
// Settings errors wrap domain.ErrInvalidConfig and are returned before any
// acquisition state is created.
func NewRecorder(settings domain.Settings, deps RecorderDeps) (*Recorder, error) {
	settings.SetDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if deps.Reader == nil {
		return nil, fmt.Errorf("%w: analog reader is required", domain.ErrInvalidConfig)
	}
	if deps.Clock == nil {
		return nil, fmt.Errorf("%w: clock is required", domain.ErrInvalidConfig)
	}
	logger := deps.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	return &Recorder{
		settings:  settings,
		reader:    deps.Reader,
		stimulus:  deps.Stimulus,
		clock:     deps.Clock,
		logger:    logger,
		drops:     deps.Drops,
		lifecycle: NewLifecycle(logger, deps.Emitter),
		done:      make(chan struct{}),
	}, nil
}

// Start transitions Idle -> Acquiring and begins periodic sampling.
//
// It drives the stimulus output high (when configured), creates the run, arms
// the ticker and spawns the sampling goroutine. Returns ErrAlreadyRunning
// while acquiring and ErrAlreadyStopped after the run has finished. Canceling
// ctx stops the acquisition the same way Stop does.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.lifecycle.State() {
	case StateAcquiring:
		return domain.ErrAlreadyRunning
	case StateStopped:
		return domain.ErrAlreadyStopped
	}

	// The step has to precede the first sample, so the output is driven
	// before the ticker is armed.
	if r.stimulus != nil {
		if err := r.stimulus.Out(true); err != nil {
			return fmt.Errorf("drive stimulus high: %w", err)
		}
	}

	now := r.clock.Now()
	r.startedAt = now
	r.active = run.New(now, r.settings.SamplePeriod)

	if err := r.lifecycle.TransitionTo(StateAcquiring, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.lifecycle.SetCancel(cancel)

	r.lifecycle.AddWorker()
	go r.loop(runCtx)

	r.logger.Info("acquisition started",
		ports.Duration("period", r.settings.SamplePeriod),
		ports.Duration("duration", r.settings.Duration),
		ports.Int("max_samples", r.settings.MaxSamples),
	)
	return nil
}

// Stop disarms the ticker, freezes the run, and returns it.
//
// Idempotent: a second Stop returns the same frozen run with nil error.
// Returns ErrNotRunning before Start and ErrShutdownTimeout if the sampling
// goroutine does not exit in time.
func (r *Recorder) Stop() (*run.Run, error) {
	r.mu.Lock()
	if r.lifecycle.State() == StateIdle {
		r.mu.Unlock()
		return nil, domain.ErrNotRunning
	}
	active := r.active
	r.mu.Unlock()

	// Freeze before canceling so a tick racing Stop cannot extend the run.
	r.finish("Stop() called")
	r.lifecycle.Cancel()

	if err := r.lifecycle.WaitWithTimeout(r.settings.ShutdownTimeout); err != nil {
		return nil, err
	}
	return active, nil
}

// Run returns the frozen run after the recorder has stopped, nil before.
func (r *Recorder) Run() *run.Run {
	if r.lifecycle.State() != StateStopped {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (r *Recorder) Status() State {
	return r.lifecycle.State()
}

// Done returns a channel closed when acquisition finishes, whether by Stop,
// duration expiry, the sample cap, or context cancellation.
func (r *Recorder) Done() <-chan struct{} {
	return r.done
}

// loop is the sampling goroutine: one tick per period until the context is
// canceled or the run completes itself.
func (r *Recorder) loop(ctx context.Context) {
	defer r.lifecycle.WorkerDone()

	ticker := r.clock.NewTicker(r.settings.SamplePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.finish("context canceled")
			return
		case now := <-ticker.C():
			if done, reason := r.tick(now); done {
				r.finish(reason)
				return
			}
		}
	}
}

// tick reads the analog input once and appends the sample, stamped with the
// ticker's fire time so jitter in the read itself never skews the timeline.
// A failed read is recorded as a drop and never ends the run; the return
// value reports whether a completion condition was reached.
func (r *Recorder) tick(now time.Time) (bool, string) {
	elapsed := now.Sub(r.startedAt)

	reading, err := r.reader.Read()
	if err != nil {
		r.active.RecordDrop()
		r.logger.Warn("analog read failed, sample dropped",
			ports.Duration("elapsed", elapsed),
			ports.Err(err),
		)
		if r.drops != nil {
			r.drops.OnSampleDropped(elapsed, err)
		}
	} else {
		sample := run.Sample{Elapsed: elapsed, Raw: reading.Raw, Volts: reading.Volts}
		if appendErr := r.active.Append(sample); appendErr != nil {
			if errors.Is(appendErr, run.ErrRunFrozen) {
				// Stop won the race; the run is over.
				return true, "run frozen"
			}
			r.active.RecordDrop()
			r.logger.Warn("sample rejected",
				ports.Duration("elapsed", elapsed),
				ports.Err(appendErr),
			)
			if r.drops != nil {
				r.drops.OnSampleDropped(elapsed, appendErr)
			}
		}
	}

	if r.settings.MaxSamples > 0 && r.active.Len() >= r.settings.MaxSamples {
		return true, "sample capacity reached"
	}
	if r.settings.Duration > 0 && elapsed >= r.settings.Duration {
		return true, "duration elapsed"
	}
	return false, ""
}

// finish freezes the run, drives the stimulus low, and lands the state
// machine in Stopped. Safe to call from both the sampling goroutine and the
// control goroutine; only the first call acts.
func (r *Recorder) finish(reason string) {
	r.finishOnce.Do(func() {
		r.active.Freeze()

		if r.stimulus != nil {
			if err := r.stimulus.Out(false); err != nil {
				r.logger.Warn("drive stimulus low failed", ports.Err(err))
			}
		}

		if err := r.lifecycle.TransitionTo(StateStopped, reason); err != nil {
			r.logger.Error("stop transition failed", ports.Err(err))
		}

		r.logger.Info("acquisition finished",
			ports.String("reason", reason),
			ports.Int("samples", r.active.Len()),
			ports.Int("dropped", r.active.Dropped()),
		)
		close(r.done)
	})
}

// noopLogger is the default logger when none is injected.
type noopLogger struct{}

func (noopLogger) Debug(msg string, fields ...ports.Field) {}
func (noopLogger) Info(msg string, fields ...ports.Field)  {}
func (noopLogger) Warn(msg string, fields ...ports.Field)  {}
func (noopLogger) Error(msg string, fields ...ports.Field) {}
