// Package classify maps raw backend failures onto a small taxonomy of
// user-facing categories.
//
// The remote service reports errors as HTTP statuses, `{detail}` bodies, or
// free-form text on failed operations. Some of those failures are benign:
// the service occasionally fails to record telemetry for a job that
// nonetheless produced a usable artifact. The classifier keeps the matching
// rules in enumerable tables so they stay auditable, and every category maps
// to one stable, non-technical sentence; the raw diagnostic survives only
// for logging.
package classify
