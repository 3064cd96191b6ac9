package progress

import "sync"

// State is a monotonic 0-100 progress gauge with a completion latch.
//
// Values only move forward: a proposal below the displayed value is ignored,
// and once 100 is reached the state is latched and every further proposal is
// a no-op. Both the simulator and the status poller write through Propose,
// so a stale simulated tick can never roll back a fresher server value.
type State struct {
	mu        sync.Mutex
	displayed int
	completed bool
	onChange  func(int)
}

// NewState constructs a State. onChange, when non-nil, is invoked with the
// new displayed value every time the gauge advances. It is called with the
// internal lock held, so implementations must not call back into the State.
func NewState(onChange func(int)) *State {
	return &State{onChange: onChange}
}

// Propose offers a new progress value. The displayed value becomes the max
// of itself and value; a value of 100 or more latches the state.
func (s *State) Propose(value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed {
		return
	}
	if value < 0 {
		value = 0
	}
	if value >= 100 {
		value = 100
		s.completed = true
	}
	if value <= s.displayed && !s.completed {
		return
	}
	if value > s.displayed {
		s.displayed = value
		if s.onChange != nil {
			s.onChange(s.displayed)
		}
	}
}

// Displayed returns the last value shown to observers.
func (s *State) Displayed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayed
}

// Completed reports whether the gauge has latched at 100.
func (s *State) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// Reset clears the gauge. Only valid before a new operation begins; resetting
// a gauge that is still being written to breaks the monotonic guarantee.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.displayed = 0
	s.completed = false
}
