package progress

import (
	"context"
	"testing"
	"time"
)

func waitForDisplayed(t *testing.T, state *State, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if state.Displayed() >= want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("state stalled at %d, want at least %d", state.Displayed(), want)
}

func TestSimulatorStopsAtCeiling(t *testing.T) {
	state := NewState(nil)
	sim := NewSimulator(state,
		WithTick(time.Millisecond),
		WithIncrement(func() int { return 40 }),
	)

	sim.Start(context.Background())
	waitForDisplayed(t, state, simulatorCeiling)
	sim.Stop()

	if got := state.Displayed(); got != simulatorCeiling {
		t.Fatalf("Displayed() = %d, want %d", got, simulatorCeiling)
	}
	if state.Completed() {
		t.Fatal("simulator must never complete the state on its own")
	}
}

func TestSimulatorNeverExceedsCeiling(t *testing.T) {
	var values []int
	state := NewState(func(value int) {
		values = append(values, value)
	})
	sim := NewSimulator(state,
		WithTick(time.Millisecond),
		WithIncrement(func() int { return 93 }),
	)

	sim.Start(context.Background())
	waitForDisplayed(t, state, simulatorCeiling)
	sim.Stop()

	for _, value := range values {
		if value > simulatorCeiling {
			t.Fatalf("simulator proposed %d, ceiling is %d", value, simulatorCeiling)
		}
	}
}

func TestSimulatorStopIsIdempotent(t *testing.T) {
	state := NewState(nil)
	sim := NewSimulator(state, WithTick(time.Millisecond))

	// Stop before Start must not panic or block.
	sim.Stop()

	sim.Start(context.Background())
	sim.Stop()
	sim.Stop()
}

func TestSimulatorHonorsContextCancellation(t *testing.T) {
	state := NewState(nil)
	sim := NewSimulator(state,
		WithTick(time.Millisecond),
		WithIncrement(func() int { return 5 }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	sim.Start(ctx)
	cancel()

	// Stop waits for the goroutine, so this returning proves the loop exited.
	sim.Stop()
}

func TestSimulatorDoesNotRollBackRealProgress(t *testing.T) {
	state := NewState(nil)
	state.Propose(80)

	sim := NewSimulator(state,
		WithTick(time.Millisecond),
		WithIncrement(func() int { return 10 }),
	)
	sim.Start(context.Background())
	waitForDisplayed(t, state, simulatorCeiling)
	sim.Stop()

	if got := state.Displayed(); got < 80 {
		t.Fatalf("Displayed() = %d, simulator rolled back a real value", got)
	}
}

func TestSimulatorDefaultIncrementStaysInRange(t *testing.T) {
	sim := NewSimulator(NewState(nil))
	for i := 0; i < 1000; i++ {
		got := sim.increment()
		if got < minIncrement || got > maxIncrement {
			t.Fatalf("increment() = %d, want between %d and %d", got, minIncrement, maxIncrement)
		}
	}
}
