package history

import (
	"time"
)

// Record is one finished operation as remembered by the CLI. The tracking
// core itself holds no state; persistence happens at the caller layer once
// an operation resolves.
type Record struct {
	ID          int64
	OperationID string
	Kind        string // embed or extract
	Mode        string // single or batch
	Outcome     string // success, partial, failure
	Category    string // classifier category, empty on success
	UserMessage string
	RawError    string
	ResultJSON  string
	OutputFile  string
	CreatedAt   time.Time
}
