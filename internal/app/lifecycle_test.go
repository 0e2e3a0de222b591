package app

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mecha-labs/steplog/internal/domain"
	"github.com/mecha-labs/steplog/internal/ports"
)

// mockLogger implements ports.Logger for testing.
type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...ports.Field) {}
func (mockLogger) Info(msg string, fields ...ports.Field)  {}
func (mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (mockLogger) Error(msg string, fields ...ports.Field) {}

// mockEmitter tracks state change events for testing.
type mockEmitter struct {
	mu     sync.Mutex
	events []stateChangeEvent
}

type stateChangeEvent struct {
	previous State
	current  State
	reason   string
}

func (m *mockEmitter) OnStateChange(previous, current State, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, stateChangeEvent{previous, current, reason})
}

func (m *mockEmitter) Events() []stateChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stateChangeEvent{}, m.events...)
}

func TestNewLifecycle(t *testing.T) {
	l := NewLifecycle(&mockLogger{}, nil)

	if l == nil {
		t.Fatal("NewLifecycle returned nil")
	}
	if l.State() != StateIdle {
		t.Errorf("initial state = %v, want StateIdle", l.State())
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "Idle"},
		{StateAcquiring, "Acquiring"},
		{StateStopped, "Stopped"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		got := tt.state.String()
		if got != tt.want {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestLifecycle_TransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		to      State
		wantErr error
	}{
		{"idle to acquiring", StateIdle, StateAcquiring, nil},
		{"acquiring to stopped", StateAcquiring, StateStopped, nil},
		{"idle to stopped", StateIdle, StateStopped, domain.ErrNotRunning},
		{"acquiring to acquiring", StateAcquiring, StateAcquiring, domain.ErrAlreadyRunning},
		{"acquiring to idle", StateAcquiring, StateIdle, domain.ErrAlreadyRunning},
		{"stopped to acquiring", StateStopped, StateAcquiring, domain.ErrAlreadyStopped},
		{"stopped to idle", StateStopped, StateIdle, domain.ErrAlreadyStopped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLifecycle(&mockLogger{}, nil)
			l.state = tt.from

			err := l.TransitionTo(tt.to, "test")
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("TransitionTo() error = %v, want nil", err)
				}
				if l.State() != tt.to {
					t.Errorf("state = %v, want %v", l.State(), tt.to)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("TransitionTo() error = %v, want %v", err, tt.wantErr)
			}
			if l.State() != tt.from {
				t.Errorf("state after invalid transition = %v, want %v", l.State(), tt.from)
			}
		})
	}
}

func TestLifecycle_EmitsStateChanges(t *testing.T) {
	emitter := &mockEmitter{}
	l := NewLifecycle(&mockLogger{}, emitter)

	if err := l.TransitionTo(StateAcquiring, "start"); err != nil {
		t.Fatalf("TransitionTo(Acquiring) error = %v", err)
	}
	if err := l.TransitionTo(StateStopped, "done"); err != nil {
		t.Fatalf("TransitionTo(Stopped) error = %v", err)
	}

	events := emitter.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].previous != StateIdle || events[0].current != StateAcquiring || events[0].reason != "start" {
		t.Errorf("event 0 = %+v", events[0])
	}
	if events[1].previous != StateAcquiring || events[1].current != StateStopped || events[1].reason != "done" {
		t.Errorf("event 1 = %+v", events[1])
	}
}

func TestLifecycle_CanStartCanStop(t *testing.T) {
	l := NewLifecycle(&mockLogger{}, nil)

	if !l.CanStart() || l.CanStop() {
		t.Errorf("Idle: CanStart() = %v, CanStop() = %v, want true/false", l.CanStart(), l.CanStop())
	}

	l.state = StateAcquiring
	if l.CanStart() || !l.CanStop() {
		t.Errorf("Acquiring: CanStart() = %v, CanStop() = %v, want false/true", l.CanStart(), l.CanStop())
	}

	l.state = StateStopped
	if l.CanStart() || l.CanStop() {
		t.Errorf("Stopped: CanStart() = %v, CanStop() = %v, want false/false", l.CanStart(), l.CanStop())
	}
}

func TestLifecycle_WaitWithTimeout(t *testing.T) {
	l := NewLifecycle(&mockLogger{}, nil)

	// No workers: returns immediately.
	if err := l.WaitWithTimeout(10 * time.Millisecond); err != nil {
		t.Errorf("WaitWithTimeout() with no workers = %v", err)
	}

	// Worker finishes in time.
	l.AddWorker()
	go func() {
		time.Sleep(5 * time.Millisecond)
		l.WorkerDone()
	}()
	if err := l.WaitWithTimeout(time.Second); err != nil {
		t.Errorf("WaitWithTimeout() = %v, want nil", err)
	}

	// Worker exceeds the timeout.
	l.AddWorker()
	defer l.WorkerDone()
	if err := l.WaitWithTimeout(10 * time.Millisecond); !errors.Is(err, domain.ErrShutdownTimeout) {
		t.Errorf("WaitWithTimeout() = %v, want ErrShutdownTimeout", err)
	}
}
