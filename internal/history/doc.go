// Package history records finished operations in a local SQLite database.
//
// The tracking core is stateless by design; the CLI persists terminal
// outcomes here so users can list past operations and re-download artifacts
// without keeping the original terminal session open.
package history
