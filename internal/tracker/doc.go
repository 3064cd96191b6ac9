// Package tracker is the asynchronous operation lifecycle core: submission,
// progress simulation, status polling, terminal resolution, batch fan-out,
// and artifact retrieval.
//
// The remote service owns the actual embed/extract work; this package's job
// is to drive one operation id to a terminal state, keep the displayed
// progress monotonic along the way, classify failures, and hand back a
// downloadable artifact. Every feature surface of the application funnels
// through this one implementation instead of duplicating the loop.
package tracker
