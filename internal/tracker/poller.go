package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"veil/internal/classify"
	"veil/internal/logging"
	"veil/internal/progress"
	"veil/internal/stego"
)

// StatusClient is the slice of the service client the poller needs.
type StatusClient interface {
	Status(ctx context.Context, operationID string) (*stego.StatusResponse, error)
}

// Poller drives one operation to a terminal state. Polls are strictly
// sequential: the next request is not issued until the previous one has
// resolved, so at most one poll is ever in flight per operation.
type Poller struct {
	client   StatusClient
	interval time.Duration
	attempts int
	grace    time.Duration
	logger   *slog.Logger
}

// PollerOption customises Poller construction.
type PollerOption func(*Poller)

// WithPollLogger attaches a logger for poll diagnostics.
func WithPollLogger(logger *slog.Logger) PollerOption {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger.With("component", "poller")
		}
	}
}

// NewPoller builds a poller. interval is the spacing between polls,
// attempts the ceiling before a timeout is synthesized, and grace the pause
// after completion before the result is handed to the resolver.
func NewPoller(client StatusClient, interval time.Duration, attempts int, grace time.Duration, opts ...PollerOption) *Poller {
	if interval <= 0 {
		interval = time.Second
	}
	if attempts < 1 {
		attempts = 1
	}
	poller := &Poller{
		client:   client,
		interval: interval,
		attempts: attempts,
		grace:    grace,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(poller)
	}
	return poller
}

// Run polls op until a terminal status, the attempt ceiling, or context
// cancellation. Real progress values are proposed into state after the
// simulator is stopped, so a stale simulated tick can never overwrite a
// fresher server value. The returned error is non-nil only on cancellation;
// every service-side failure comes back as a Failure outcome.
func (p *Poller) Run(ctx context.Context, op *Operation, state *progress.State, sim *progress.Simulator) (Outcome, error) {
	var lastErr error
	failures := 0

	for attempt := 1; attempt <= p.attempts; attempt++ {
		resp, err := p.client.Status(ctx, op.ID)
		if ctx.Err() != nil {
			return Outcome{}, ctx.Err()
		}
		if err != nil {
			failures++
			lastErr = err
			p.logger.Debug("status poll failed",
				"operation_id", op.ID,
				"attempt", attempt,
				"error", err)
			if attempt == p.attempts {
				break
			}
			if waitErr := sleepCtx(ctx, p.interval); waitErr != nil {
				return Outcome{}, waitErr
			}
			continue
		}

		op.apply(resp)
		if resp.Progress != nil {
			if sim != nil {
				sim.Stop()
			}
			state.Propose(*resp.Progress)
		}

		switch resp.Status {
		case stego.StatusCompleted:
			if sim != nil {
				sim.Stop()
			}
			state.Propose(100)
			// Let observers see 100% before the result replaces the
			// progress display.
			if p.grace > 0 {
				if waitErr := sleepCtx(ctx, p.grace); waitErr != nil {
					return Outcome{}, waitErr
				}
			}
			p.logger.Info("operation completed", "operation_id", op.ID, "attempts", attempt)
			return Resolve(resp.Status, resp.Result, ""), nil
		case stego.StatusFailed:
			if sim != nil {
				sim.Stop()
			}
			p.logger.Info("operation failed",
				"operation_id", op.ID,
				"attempts", attempt,
				"error", resp.Error)
			return Resolve(resp.Status, resp.Result, resp.Error), nil
		}

		if attempt == p.attempts {
			break
		}
		if waitErr := sleepCtx(ctx, p.interval); waitErr != nil {
			return Outcome{}, waitErr
		}
	}

	if failures == p.attempts {
		// The service never answered a single poll.
		raw := fmt.Sprintf("status polling failed %d times: %v", failures, lastErr)
		p.logger.Warn("operation unreachable", "operation_id", op.ID, "error", lastErr)
		return Outcome{
			Kind:    OutcomeFailure,
			Failure: classify.As(classify.CategoryServiceUnavailable, raw),
		}, nil
	}

	raw := fmt.Sprintf("no terminal status after %d polls", p.attempts)
	p.logger.Warn("operation timed out", "operation_id", op.ID, "attempts", p.attempts)
	return Outcome{
		Kind:    OutcomeFailure,
		Failure: classify.As(classify.CategoryTransientServer, raw),
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
