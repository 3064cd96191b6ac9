package tracker

import (
	"context"

	"veil/internal/classify"
	"veil/internal/progress"
	"veil/internal/stego"
)

// BatchReport is the aggregate view of a completed batch operation: one
// operation id, one outcome, and the per-carrier item entries from the
// terminal result.
type BatchReport struct {
	Operation *Operation
	Outcome   Outcome
	Items     []stego.BatchItem
}

// RunBatch submits N carriers sharing one payload as a single operation and
// tracks it exactly like a single-mode operation: one id, one polling
// session, one terminal resolution. Individual failed items are never
// retried; they surface inside the report for callers to inspect.
func (t *Tracker) RunBatch(ctx context.Context, req stego.EmbedRequest, state *progress.State) (*BatchReport, error) {
	if len(req.Carriers) < 2 {
		return nil, classify.NewErrorf(classify.CategoryInvalidInput, "batch mode requires at least two carrier files")
	}

	op, err := t.Embed(ctx, req)
	if err != nil {
		return nil, err
	}

	outcome, err := t.Track(ctx, op, state)
	if err != nil {
		return nil, err
	}

	report := &BatchReport{Operation: op, Outcome: outcome}
	if outcome.Result != nil {
		report.Items = outcome.Result.Items
	}
	return report, nil
}
