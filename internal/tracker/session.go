package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"veil/internal/classify"
	"veil/internal/config"
	"veil/internal/logging"
	"veil/internal/notifications"
	"veil/internal/progress"
	"veil/internal/stego"
)

// ServiceClient is the full surface of the remote service the tracker uses.
// *stego.Client satisfies it; tests substitute fakes.
type ServiceClient interface {
	StatusClient
	SubmitEmbed(ctx context.Context, req stego.EmbedRequest) (string, error)
	SubmitExtract(ctx context.Context, req stego.ExtractRequest) (string, error)
	Download(ctx context.Context, operationID string) ([]byte, string, error)
}

// Tracker ties submission, progress simulation, polling, resolution, and
// notification together into one reusable tracking core. It enforces the
// one-poller-per-operation rule through an in-process registry.
type Tracker struct {
	client   ServiceClient
	cfg      config.Tracker
	notifier notifications.Notifier
	logger   *slog.Logger

	mu     sync.Mutex
	active map[string]struct{}
}

// TrackerOption customises Tracker construction.
type TrackerOption func(*Tracker)

// WithNotifier installs the outcome notifier. Defaults to a noop.
func WithNotifier(notifier notifications.Notifier) TrackerOption {
	return func(t *Tracker) {
		if notifier != nil {
			t.notifier = notifier
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger.With("component", "tracker")
		}
	}
}

// New builds a Tracker around a service client using the supplied timing
// configuration.
func New(client ServiceClient, cfg config.Tracker, opts ...TrackerOption) *Tracker {
	tracker := &Tracker{
		client:   client,
		cfg:      cfg,
		notifier: notifications.Noop{},
		logger:   logging.NewNop(),
		active:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(tracker)
	}
	return tracker
}

// Embed submits an embed job and returns the new operation shell. Batch
// mode is implied by the carrier count; the request is one network call
// producing one operation id either way.
func (t *Tracker) Embed(ctx context.Context, req stego.EmbedRequest) (*Operation, error) {
	id, err := t.client.SubmitEmbed(ctx, req)
	if err != nil {
		return nil, err
	}
	mode := ModeSingle
	if len(req.Carriers) > 1 {
		mode = ModeBatch
	}
	carrierName := ""
	if len(req.Carriers) > 0 {
		carrierName = req.Carriers[0].Name
	}
	return newOperation(id, KindEmbed, mode, carrierName), nil
}

// Extract submits an extract job and returns the new operation shell.
func (t *Tracker) Extract(ctx context.Context, req stego.ExtractRequest) (*Operation, error) {
	id, err := t.client.SubmitExtract(ctx, req)
	if err != nil {
		return nil, err
	}
	return newOperation(id, KindExtract, ModeSingle, req.Stego.Name), nil
}

// Track polls op to a terminal state, driving the simulator into state
// until the first real progress signal. Cancellation through ctx stops both
// timers and returns ctx.Err(); every other ending is an Outcome. The
// notifier receives the outcome message.
func (t *Tracker) Track(ctx context.Context, op *Operation, state *progress.State) (Outcome, error) {
	if err := t.acquire(op.ID); err != nil {
		return Outcome{}, err
	}
	defer t.release(op.ID)

	sim := progress.NewSimulator(state, progress.WithTick(t.cfg.SimulatorTick()))
	sim.Start(ctx)
	defer sim.Stop()

	poller := NewPoller(t.client, t.cfg.PollInterval(), t.cfg.PollAttempts, t.completionGrace(), WithPollLogger(t.logger))
	outcome, err := poller.Run(ctx, op, state, sim)
	if err != nil {
		return Outcome{}, err
	}

	t.notify(ctx, op, outcome)
	return outcome, nil
}

// Fetch downloads the artifact for a resolved operation and derives its
// filename from the response headers, the terminal result, and the original
// carrier name.
func (t *Tracker) Fetch(ctx context.Context, op *Operation, result *stego.OperationResult) ([]byte, string, error) {
	data, dispositionName, err := t.client.Download(ctx, op.ID)
	if err != nil {
		return nil, "", err
	}
	if result == nil {
		result = op.Result
	}
	name := stego.DeriveFilename(dispositionName, result, op.ID, op.CarrierName)
	return data, name, nil
}

func (t *Tracker) completionGrace() time.Duration {
	grace := t.cfg.CompletionGrace()
	// Sub-100ms poll intervals mean a test is driving time; skip the
	// cosmetic pause there.
	if t.cfg.PollInterval() < 100*time.Millisecond {
		return 0
	}
	return grace
}

func (t *Tracker) acquire(operationID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.active[operationID]; ok {
		return fmt.Errorf("operation %s is already being tracked", operationID)
	}
	t.active[operationID] = struct{}{}
	return nil
}

func (t *Tracker) release(operationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.active, operationID)
}

func (t *Tracker) notify(ctx context.Context, op *Operation, outcome Outcome) {
	switch outcome.Kind {
	case OutcomeSuccess:
		_ = t.notifier.Success(ctx, fmt.Sprintf("%s operation finished", op.Kind))
	case OutcomePartial:
		_ = t.notifier.Warn(ctx, fmt.Sprintf("%s operation finished with some failed items", op.Kind))
	case OutcomeFailure:
		if outcome.Failure.Category == classify.CategoryLoggingOnly {
			_ = t.notifier.Warn(ctx, outcome.Failure.UserMessage)
			return
		}
		_ = t.notifier.Error(ctx, outcome.Failure.UserMessage)
	}
}
