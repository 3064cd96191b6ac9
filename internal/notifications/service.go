package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"veil/internal/config"
)

const userAgent = "Veil-Go/0.1.0"

// Notifier is the presentation hook the tracking core calls with outcome
// messages. The core never owns presentation state; callers supply an
// implementation (Memory for tests, ntfy in production, Noop by default).
type Notifier interface {
	Success(ctx context.Context, message string) error
	Warn(ctx context.Context, message string) error
	Error(ctx context.Context, message string) error
}

// NewFromConfig builds a notifier backed by ntfy when configured. When no
// ntfy topic is configured, a noop implementation is returned.
func NewFromConfig(cfg *config.Config) Notifier {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return Noop{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyNotifier{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type ntfyNotifier struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyNotifier) Success(ctx context.Context, message string) error {
	return n.send(ctx, "Veil - Done", message, "white_check_mark", "")
}

func (n *ntfyNotifier) Warn(ctx context.Context, message string) error {
	return n.send(ctx, "Veil - Warning", message, "warning", "")
}

func (n *ntfyNotifier) Error(ctx context.Context, message string) error {
	return n.send(ctx, "Veil - Failed", message, "x", "high")
}

func (n *ntfyNotifier) send(ctx context.Context, title, message, tags, priority string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Title", title)
	if tags != "" {
		req.Header.Set("Tags", tags)
	}
	if priority != "" {
		req.Header.Set("Priority", priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("ntfy returned %d", resp.StatusCode)
	}
	return nil
}

// Noop discards every notification.
type Noop struct{}

func (Noop) Success(context.Context, string) error { return nil }
func (Noop) Warn(context.Context, string) error    { return nil }
func (Noop) Error(context.Context, string) error   { return nil }

// Entry is one recorded notification.
type Entry struct {
	Kind    string
	Message string
}

// Memory records notifications in order for assertions in tests.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

func (m *Memory) Success(_ context.Context, message string) error {
	return m.record("success", message)
}

func (m *Memory) Warn(_ context.Context, message string) error {
	return m.record("warn", message)
}

func (m *Memory) Error(_ context.Context, message string) error {
	return m.record("error", message)
}

func (m *Memory) record(kind, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, Entry{Kind: kind, Message: message})
	return nil
}

// Entries returns a copy of everything recorded so far.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}
