package progress

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	// simulatorCeiling is the highest value the simulator will ever
	// propose; everything beyond it has to come from the server.
	simulatorCeiling = 95

	minIncrement = 5
	maxIncrement = 20

	defaultTick = 500 * time.Millisecond
)

// Simulator manufactures plausible intermediate progress while the server
// has not yet reported real numbers. It proposes pseudo-random increments
// into a shared State, capped at simulatorCeiling, and stops advancing once
// the cap is reached.
type Simulator struct {
	state     *State
	tick      time.Duration
	increment func() int

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// SimulatorOption customises Simulator construction.
type SimulatorOption func(*Simulator)

// WithTick overrides the tick interval.
func WithTick(d time.Duration) SimulatorOption {
	return func(s *Simulator) {
		if d > 0 {
			s.tick = d
		}
	}
}

// WithIncrement overrides the per-tick increment source (used in tests).
func WithIncrement(fn func() int) SimulatorOption {
	return func(s *Simulator) {
		if fn != nil {
			s.increment = fn
		}
	}
}

// NewSimulator builds a simulator that writes into state.
func NewSimulator(state *State, opts ...SimulatorOption) *Simulator {
	sim := &Simulator{
		state: state,
		tick:  defaultTick,
		increment: func() int {
			return minIncrement + rand.IntN(maxIncrement-minIncrement+1)
		},
	}
	for _, opt := range opts {
		opt(sim)
	}
	return sim
}

// Start begins ticking. Calling Start on a running simulator is a no-op.
// The simulator stops on its own when it reaches the ceiling, when ctx is
// cancelled, or when Stop is called.
func (s *Simulator) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.started = true

	go s.run(ctx)
}

func (s *Simulator) run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	counter := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			counter += s.increment()
			if counter > simulatorCeiling {
				counter = simulatorCeiling
			}
			s.state.Propose(counter)
			if counter >= simulatorCeiling {
				// Nothing left to invent; real progress takes over.
				return
			}
		}
	}
}

// Stop cancels the tick loop and waits for it to exit. The shared State is
// left untouched. Stop is safe to call multiple times and on a simulator
// that was never started.
func (s *Simulator) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
