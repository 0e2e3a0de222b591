package app

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSquareWave_Toggles(t *testing.T) {
	clock := newFakeClock()
	stim := &fakeStimulus{}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- SquareWave(ctx, stim, clock, 5*time.Second, mockLogger{})
	}()

	// Initial level is low, then each half period flips it.
	for i := 0; i < 3; i++ {
		clock.Tick()
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("SquareWave() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("SquareWave did not return after cancel")
	}

	// low, high, low, high, then parked low on exit.
	want := []bool{false, true, false, true, false}
	got := stim.Levels()
	if len(got) != len(want) {
		t.Fatalf("levels = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("levels = %v, want %v", got, want)
		}
	}
}

func TestSquareWave_RequiresDriver(t *testing.T) {
	clock := newFakeClock()
	if err := SquareWave(context.Background(), nil, clock, time.Second, nil); err == nil {
		t.Error("SquareWave() with nil driver = nil, want error")
	}
}
