package config

import "time"

// PollInterval returns the status poll spacing as a duration.
func (t Tracker) PollInterval() time.Duration {
	return time.Duration(t.PollIntervalMS) * time.Millisecond
}

// CompletionGrace returns the post-completion pause as a duration.
func (t Tracker) CompletionGrace() time.Duration {
	return time.Duration(t.CompletionGraceMS) * time.Millisecond
}

// SimulatorTick returns the simulated progress tick interval as a duration.
func (t Tracker) SimulatorTick() time.Duration {
	return time.Duration(t.SimulatorTickMS) * time.Millisecond
}

// Timeout returns the per-request timeout as a duration.
func (s Service) Timeout() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}
