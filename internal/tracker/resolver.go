package tracker

import (
	"veil/internal/classify"
	"veil/internal/stego"
)

// OutcomeKind tags the variant of an Outcome.
type OutcomeKind string

const (
	// OutcomeSuccess is a completed operation whose result carries no
	// per-item failures.
	OutcomeSuccess OutcomeKind = "success"
	// OutcomePartial is a completed batch whose per-item entries contain
	// at least one failure. The operation as a whole is not retried;
	// callers inspect the items.
	OutcomePartial OutcomeKind = "partial"
	// OutcomeFailure is a failed operation with a classified error.
	OutcomeFailure OutcomeKind = "failure"
)

// Outcome is the typed interpretation of a terminal status payload.
type Outcome struct {
	Kind    OutcomeKind
	Result  *stego.OperationResult
	Failure classify.Classification
}

// Succeeded reports whether the artifact is expected to be retrievable.
// Logging-only failures count: the job very likely produced an artifact
// even though the service's bookkeeping failed.
func (o Outcome) Succeeded() bool {
	switch o.Kind {
	case OutcomeSuccess, OutcomePartial:
		return true
	case OutcomeFailure:
		return o.Failure.Category == classify.CategoryLoggingOnly
	}
	return false
}

// Resolve maps a terminal (status, payload) pair onto an Outcome. It is a
// pure function: identical inputs always yield the identical outcome, which
// keeps it unit-testable without any network mocking.
func Resolve(status stego.OperationStatus, result *stego.OperationResult, errText string) Outcome {
	switch status {
	case stego.StatusCompleted:
		if hasItemFailures(result) {
			return Outcome{Kind: OutcomePartial, Result: result}
		}
		return Outcome{Kind: OutcomeSuccess, Result: result}
	case stego.StatusFailed:
		return Outcome{Kind: OutcomeFailure, Failure: classify.Message(errText)}
	default:
		// Non-terminal statuses never reach the resolver through the
		// poller; treat them as unknown failures rather than panicking.
		return Outcome{Kind: OutcomeFailure, Failure: classify.Message(errText)}
	}
}

func hasItemFailures(result *stego.OperationResult) bool {
	if result == nil {
		return false
	}
	for _, item := range result.Items {
		if !item.Success {
			return true
		}
	}
	return false
}
