// Package progress holds the monotonic progress gauge shared by the status
// poller and the progress simulator.
//
// The State type guarantees that observed progress never moves backwards
// regardless of how simulated and server-reported updates interleave; the
// Simulator fills the gap before the server emits its first real number.
package progress
