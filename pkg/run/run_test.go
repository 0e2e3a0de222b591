package run

import (
	"errors"
	"testing"
	"time"
)

func TestRun_Append(t *testing.T) {
	r := New(time.Now(), 10*time.Millisecond)

	if err := r.Append(Sample{Elapsed: 10 * time.Millisecond, Raw: 100, Volts: 0.08}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := r.Append(Sample{Elapsed: 20 * time.Millisecond, Raw: 200, Volts: 0.16}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}

	last, ok := r.Last()
	if !ok {
		t.Fatal("Last() ok = false, want true")
	}
	if last.Elapsed != 20*time.Millisecond {
		t.Errorf("Last().Elapsed = %v, want 20ms", last.Elapsed)
	}
}

func TestRun_Append_OutOfOrder(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
	}{
		{"equal elapsed", 10 * time.Millisecond},
		{"earlier elapsed", 5 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(time.Now(), 10*time.Millisecond)
			if err := r.Append(Sample{Elapsed: 10 * time.Millisecond}); err != nil {
				t.Fatalf("first Append() error = %v", err)
			}

			err := r.Append(Sample{Elapsed: tt.elapsed})
			if !errors.Is(err, ErrOutOfOrder) {
				t.Errorf("Append() error = %v, want ErrOutOfOrder", err)
			}
			if r.Len() != 1 {
				t.Errorf("Len() = %d, want 1 (rejected sample must not be stored)", r.Len())
			}
		})
	}
}

func TestRun_Freeze(t *testing.T) {
	r := New(time.Now(), 10*time.Millisecond)
	if err := r.Append(Sample{Elapsed: 10 * time.Millisecond}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	r.Freeze()
	if !r.Frozen() {
		t.Error("Frozen() = false after Freeze()")
	}

	err := r.Append(Sample{Elapsed: 20 * time.Millisecond})
	if !errors.Is(err, ErrRunFrozen) {
		t.Errorf("Append() after Freeze() error = %v, want ErrRunFrozen", err)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}

	// Freeze is idempotent.
	r.Freeze()
	if !r.Frozen() {
		t.Error("Frozen() = false after second Freeze()")
	}
}

func TestRun_Samples_ReturnsCopy(t *testing.T) {
	r := New(time.Now(), 10*time.Millisecond)
	if err := r.Append(Sample{Elapsed: 10 * time.Millisecond, Volts: 1.0}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got := r.Samples()
	got[0].Volts = 99.0

	again := r.Samples()
	if again[0].Volts != 1.0 {
		t.Errorf("mutating the snapshot changed the run: Volts = %v, want 1.0", again[0].Volts)
	}
}

func TestRun_RecordDrop(t *testing.T) {
	r := New(time.Now(), 10*time.Millisecond)

	r.RecordDrop()
	r.RecordDrop()

	if r.Dropped() != 2 {
		t.Errorf("Dropped() = %d, want 2", r.Dropped())
	}
}

func TestRun_IDsAreUnique(t *testing.T) {
	a := New(time.Now(), time.Millisecond)
	b := New(time.Now(), time.Millisecond)
	if a.ID() == b.ID() {
		t.Error("two runs share the same ID")
	}
}

func TestConverter_Volts(t *testing.T) {
	c := DefaultConverter()

	tests := []struct {
		raw  int32
		want float64
	}{
		{0, 0},
		{4096, 3.3},
		{2048, 1.65},
	}

	for _, tt := range tests {
		got := c.Volts(tt.raw)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("Volts(%d) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestConverter_Counts_Clamps(t *testing.T) {
	c := DefaultConverter()

	if got := c.Counts(-1.0); got != 0 {
		t.Errorf("Counts(-1.0) = %d, want 0", got)
	}
	if got := c.Counts(5.0); got != c.Resolution {
		t.Errorf("Counts(5.0) = %d, want %d", got, c.Resolution)
	}
	if got := c.Counts(1.65); got != 2048 {
		t.Errorf("Counts(1.65) = %d, want 2048", got)
	}
}
