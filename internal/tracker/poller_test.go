package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"veil/internal/classify"
	"veil/internal/progress"
	"veil/internal/stego"
)

// scriptedClient replays a fixed sequence of status responses; the final
// entry repeats if polled past the end.
type scriptedClient struct {
	mu      sync.Mutex
	calls   int
	replies []scriptedReply
}

type scriptedReply struct {
	resp *stego.StatusResponse
	err  error
}

func (c *scriptedClient) Status(ctx context.Context, operationID string) (*stego.StatusResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.calls
	if idx >= len(c.replies) {
		idx = len(c.replies) - 1
	}
	c.calls++
	reply := c.replies[idx]
	return reply.resp, reply.err
}

func (c *scriptedClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func intPtr(v int) *int { return &v }

func processing(progressValue *int) scriptedReply {
	return scriptedReply{resp: &stego.StatusResponse{Status: stego.StatusProcessing, Progress: progressValue}}
}

func completed(result *stego.OperationResult) scriptedReply {
	return scriptedReply{resp: &stego.StatusResponse{Status: stego.StatusCompleted, Progress: intPtr(100), Result: result}}
}

func failed(errText string) scriptedReply {
	return scriptedReply{resp: &stego.StatusResponse{Status: stego.StatusFailed, Error: errText}}
}

func TestPollerCompletesAtHundred(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{
		processing(nil),
		processing(intPtr(40)),
		processing(intPtr(75)),
		completed(&stego.OperationResult{OutputFilename: "stego_photo.png"}),
	}}
	poller := NewPoller(client, time.Millisecond, 10, 0)
	op := newOperation("op-1", KindEmbed, ModeSingle, "photo.png")
	state := progress.NewState(nil)

	outcome, err := poller.Run(context.Background(), op, state, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Kind != OutcomeSuccess {
		t.Fatalf("Kind = %s, want %s", outcome.Kind, OutcomeSuccess)
	}
	if !state.Completed() || state.Displayed() != 100 {
		t.Fatalf("state = %d completed=%t, want 100/latched", state.Displayed(), state.Completed())
	}
	if op.Status != stego.StatusCompleted {
		t.Fatalf("operation status = %s", op.Status)
	}
	if client.callCount() != 4 {
		t.Fatalf("polled %d times, want 4", client.callCount())
	}
}

func TestPollerStopsSimulatorOnFirstRealProgress(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{
		processing(intPtr(40)),
		completed(nil),
	}}
	poller := NewPoller(client, time.Millisecond, 10, 0)
	op := newOperation("op-1", KindEmbed, ModeSingle, "photo.png")
	state := progress.NewState(nil)
	sim := progress.NewSimulator(state,
		progress.WithTick(time.Millisecond),
		progress.WithIncrement(func() int { return 5 }),
	)
	sim.Start(context.Background())

	outcome, err := poller.Run(context.Background(), op, state, sim)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Kind != OutcomeSuccess {
		t.Fatalf("Kind = %s", outcome.Kind)
	}
	// Run stopped the simulator itself; a second Stop must be a no-op.
	sim.Stop()
	if !state.Completed() {
		t.Fatal("state did not latch")
	}
}

func TestPollerFailedStatusDoesNotRetry(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{
		failed("HTTP 422: decryption failed"),
	}}
	poller := NewPoller(client, time.Millisecond, 10, 0)
	op := newOperation("op-1", KindExtract, ModeSingle, "stego.png")
	state := progress.NewState(nil)

	outcome, err := poller.Run(context.Background(), op, state, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Kind != OutcomeFailure {
		t.Fatalf("Kind = %s", outcome.Kind)
	}
	if outcome.Failure.Category != classify.CategoryInvalidInput {
		t.Fatalf("category = %s, want %s", outcome.Failure.Category, classify.CategoryInvalidInput)
	}
	if client.callCount() != 1 {
		t.Fatalf("polled %d times after terminal failure, want 1", client.callCount())
	}
}

func TestPollerCeilingWithoutTerminalIsTransient(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{processing(intPtr(10))}}
	poller := NewPoller(client, time.Millisecond, 5, 0)
	op := newOperation("op-1", KindEmbed, ModeSingle, "photo.png")
	state := progress.NewState(nil)

	outcome, err := poller.Run(context.Background(), op, state, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Kind != OutcomeFailure {
		t.Fatalf("Kind = %s", outcome.Kind)
	}
	if outcome.Failure.Category != classify.CategoryTransientServer {
		t.Fatalf("category = %s, want %s", outcome.Failure.Category, classify.CategoryTransientServer)
	}
	if client.callCount() != 5 {
		t.Fatalf("polled %d times, want exactly the ceiling of 5", client.callCount())
	}
}

func TestPollerAllPollsFailedIsServiceUnavailable(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{
		{err: errors.New("connection refused")},
	}}
	poller := NewPoller(client, time.Millisecond, 4, 0)
	op := newOperation("op-1", KindEmbed, ModeSingle, "photo.png")
	state := progress.NewState(nil)

	outcome, err := poller.Run(context.Background(), op, state, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Failure.Category != classify.CategoryServiceUnavailable {
		t.Fatalf("category = %s, want %s", outcome.Failure.Category, classify.CategoryServiceUnavailable)
	}
	if client.callCount() != 4 {
		t.Fatalf("polled %d times, want 4", client.callCount())
	}
}

func TestPollerMixedFailuresAtCeilingIsTransient(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{
		{err: errors.New("connection reset")},
		processing(intPtr(10)),
	}}
	poller := NewPoller(client, time.Millisecond, 3, 0)
	op := newOperation("op-1", KindEmbed, ModeSingle, "photo.png")
	state := progress.NewState(nil)

	outcome, err := poller.Run(context.Background(), op, state, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Failure.Category != classify.CategoryTransientServer {
		t.Fatalf("category = %s, want %s", outcome.Failure.Category, classify.CategoryTransientServer)
	}
}

func TestPollerRecoversFromTransientPollErrors(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{
		{err: errors.New("temporary outage")},
		{err: errors.New("temporary outage")},
		completed(nil),
	}}
	poller := NewPoller(client, time.Millisecond, 10, 0)
	op := newOperation("op-1", KindEmbed, ModeSingle, "photo.png")
	state := progress.NewState(nil)

	outcome, err := poller.Run(context.Background(), op, state, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Kind != OutcomeSuccess {
		t.Fatalf("Kind = %s, want success after recovery", outcome.Kind)
	}
}

func TestPollerContextCancellation(t *testing.T) {
	client := &scriptedClient{replies: []scriptedReply{processing(nil)}}
	poller := NewPoller(client, 50*time.Millisecond, 1000, 0)
	op := newOperation("op-1", KindEmbed, ModeSingle, "photo.png")
	state := progress.NewState(nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err := poller.Run(ctx, op, state, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
