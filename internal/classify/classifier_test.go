package classify

import (
	"errors"
	"fmt"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name   string
		code   int
		raw    string
		expect Category
	}{
		{"validation 422", 422, "validation error: text_content required", CategoryInvalidInput},
		{"validation wording on 400", 400, "validation error: carrier file malformed", CategoryInvalidInput},
		{"unsupported format on 400", 400, "unsupported format: .xyz carriers are not accepted", CategoryInvalidInput},
		{"oversized carrier on 413", 413, "file too large: exceeds maximum allowed size", CategoryInvalidInput},
		{"server error keeps 5xx bucket despite wording", 500, "validation worker crashed", CategoryTransientServer},
		{"missing endpoint", 404, "Not Found", CategoryServiceUnavailable},
		{"server error", 500, "Internal Server Error", CategoryTransientServer},
		{"bad gateway", 502, "upstream unavailable", CategoryTransientServer},
		{"logging failure wins over code", 500, "Could not find the table 'operations' in the schema cache", CategoryLoggingOnly},
		{"unclassified code", 418, "weird", CategoryUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Status(tc.code, tc.raw)
			if got.Category != tc.expect {
				t.Fatalf("Status(%d, %q).Category = %s, want %s", tc.code, tc.raw, got.Category, tc.expect)
			}
			if got.UserMessage != userMessages[tc.expect] {
				t.Fatalf("UserMessage = %q, want the stable sentence for %s", got.UserMessage, tc.expect)
			}
			if got.Raw != tc.raw {
				t.Fatalf("Raw = %q, want %q", got.Raw, tc.raw)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		expect Category
	}{
		{"embedded 422 marker", "HTTP 422: decryption failed", CategoryInvalidInput},
		{"embedded 500 marker", "HTTP 500: boom", CategoryTransientServer},
		{"schema cache bookkeeping", "relation does not exist in schema cache", CategoryLoggingOnly},
		{"none type bookkeeping", "'NoneType' object is not subscriptable", CategoryLoggingOnly},
		{"wrong password", "decryption failed: wrong password", CategoryInvalidInput},
		{"oversized payload", "payload too large for carrier", CategoryInvalidInput},
		{"timeout wording", "request timed out after 30s", CategoryTransientServer},
		{"free text", "processing aborted", CategoryUnknown},
		{"empty", "", CategoryUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Message(tc.raw)
			if got.Category != tc.expect {
				t.Fatalf("Message(%q).Category = %s, want %s", tc.raw, got.Category, tc.expect)
			}
		})
	}
}

func TestMessageUserSentencesAreStable(t *testing.T) {
	// Two different raw diagnostics in the same bucket must produce the
	// identical user-facing sentence.
	first := Message("decryption failed: wrong password")
	second := Message("validation error on field carrier_file")
	if first.Category != second.Category {
		t.Fatalf("categories diverged: %s vs %s", first.Category, second.Category)
	}
	if first.UserMessage != second.UserMessage {
		t.Fatalf("user messages diverged: %q vs %q", first.UserMessage, second.UserMessage)
	}
}

func TestErrorHonoursClassifiedErrors(t *testing.T) {
	err := NewErrorf(CategoryInvalidInput, "carrier missing")
	wrapped := fmt.Errorf("submit: %w", err)

	got := Error(wrapped)
	if got.Category != CategoryInvalidInput {
		t.Fatalf("Error().Category = %s, want %s", got.Category, CategoryInvalidInput)
	}
}

func TestErrorFallsBackToMessage(t *testing.T) {
	got := Error(errors.New("request timed out"))
	if got.Category != CategoryTransientServer {
		t.Fatalf("Error().Category = %s, want %s", got.Category, CategoryTransientServer)
	}
}

func TestErrorNil(t *testing.T) {
	got := Error(nil)
	if got.Category != CategoryUnknown {
		t.Fatalf("Error(nil).Category = %s, want %s", got.Category, CategoryUnknown)
	}
}

func TestCategoryOf(t *testing.T) {
	err := NewError(CategoryServiceUnavailable, errors.New("404"))
	if got := CategoryOf(fmt.Errorf("wrap: %w", err)); got != CategoryServiceUnavailable {
		t.Fatalf("CategoryOf = %s, want %s", got, CategoryServiceUnavailable)
	}
	if got := CategoryOf(errors.New("plain")); got != CategoryUnknown {
		t.Fatalf("CategoryOf(plain) = %s, want %s", got, CategoryUnknown)
	}
}

func TestUserMessageUnknownCategoryFallsBack(t *testing.T) {
	if got := UserMessage(Category("made-up")); got != userMessages[CategoryUnknown] {
		t.Fatalf("UserMessage fell through to %q", got)
	}
}

func TestClassifiedErrorString(t *testing.T) {
	err := NewErrorf(CategoryInvalidInput, "password is required")
	if got := err.Error(); got == "" {
		t.Fatal("classified error rendered empty")
	}
}
