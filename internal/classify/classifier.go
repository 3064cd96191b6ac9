package classify

import (
	"errors"
	"strings"
)

// Category buckets a raw backend failure into the small set of user-facing
// failure kinds.
type Category string

const (
	// CategoryInvalidInput covers malformed, oversized, or unsupported
	// requests, including wrong passwords on extract.
	CategoryInvalidInput Category = "invalid-input"
	// CategoryTransientServer covers 5xx responses and timeouts that are
	// safe to retry.
	CategoryTransientServer Category = "transient-server"
	// CategoryServiceUnavailable covers 404s on known endpoints: the remote
	// feature is absent, not that the job failed.
	CategoryServiceUnavailable Category = "service-unavailable"
	// CategoryLoggingOnly marks failures in the service's own bookkeeping
	// that occur after the job itself succeeded.
	CategoryLoggingOnly Category = "logging-only-failure"
	// CategoryUnknown is everything we cannot place.
	CategoryUnknown Category = "unknown"
)

// Classification pairs a category with the stable, non-technical sentence
// shown to users. The raw diagnostic is preserved separately for logging.
type Classification struct {
	Category    Category
	UserMessage string
	Raw         string
}

var userMessages = map[Category]string{
	CategoryInvalidInput:       "The request could not be processed. Check the carrier file, payload, and password and try again.",
	CategoryTransientServer:    "The processing service had a temporary problem. Please try again in a moment.",
	CategoryServiceUnavailable: "This feature is not available on the processing service right now.",
	CategoryLoggingOnly:        "The job finished, but the service could not record it. Your result should still be available.",
	CategoryUnknown:            "Something went wrong while processing the request.",
}

// loggingOnlySubstrings enumerates backend bookkeeping failures that are
// known to occur after the actual job succeeded. The list is deliberately
// literal so it stays auditable; extend it as new benign failures surface.
var loggingOnlySubstrings = []string{
	"schema cache",
	"NoneType",
	"is not subscriptable",
	"not subscriptable",
	"does not exist in schema",
	"operations table",
}

// invalidInputSubstrings match validation and format wording the backend
// uses for rejected requests.
var invalidInputSubstrings = []string{
	"validation",
	"invalid format",
	"unsupported format",
	"decryption failed",
	"password",
	"too large",
	"exceeds maximum",
}

// Status classifies an HTTP status code paired with the raw error body.
// Validation wording marks a request invalid even when the backend picked a
// status other than 422 (it has been seen using 400 and 413 for rejects).
func Status(statusCode int, raw string) Classification {
	if c, ok := matchSubstrings(raw); ok {
		return c
	}
	switch {
	case statusCode == 422:
		return build(CategoryInvalidInput, raw)
	case statusCode == 404:
		return build(CategoryServiceUnavailable, raw)
	case statusCode >= 500:
		return build(CategoryTransientServer, raw)
	}
	if matchesInvalidInput(raw) {
		return build(CategoryInvalidInput, raw)
	}
	return build(CategoryUnknown, raw)
}

// Message classifies a raw error string with no HTTP status available, such
// as the error field of a failed operation.
func Message(raw string) Classification {
	if c, ok := matchSubstrings(raw); ok {
		return c
	}
	if code, ok := embeddedStatusCode(raw); ok {
		return Status(code, raw)
	}
	if matchesInvalidInput(raw) {
		return build(CategoryInvalidInput, raw)
	}
	lower := strings.ToLower(raw)
	if strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out") {
		return build(CategoryTransientServer, raw)
	}
	return build(CategoryUnknown, raw)
}

// Error classifies a Go error, honouring classified errors produced
// elsewhere in this package.
func Error(err error) Classification {
	if err == nil {
		return build(CategoryUnknown, "")
	}
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Classification
	}
	return Message(err.Error())
}

func matchesInvalidInput(raw string) bool {
	lower := strings.ToLower(raw)
	for _, sub := range invalidInputSubstrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

func matchSubstrings(raw string) (Classification, bool) {
	for _, sub := range loggingOnlySubstrings {
		if containsFold(raw, sub) {
			return build(CategoryLoggingOnly, raw), true
		}
	}
	return Classification{}, false
}

// embeddedStatusCode digs an "HTTP NNN" marker out of error text the backend
// stores on failed operations, e.g. "HTTP 422: decryption failed".
func embeddedStatusCode(raw string) (int, bool) {
	idx := strings.Index(raw, "HTTP ")
	if idx < 0 {
		return 0, false
	}
	rest := raw[idx+len("HTTP "):]
	if len(rest) < 3 {
		return 0, false
	}
	code := 0
	for i := 0; i < 3; i++ {
		ch := rest[i]
		if ch < '0' || ch > '9' {
			return 0, false
		}
		code = code*10 + int(ch-'0')
	}
	return code, true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func build(category Category, raw string) Classification {
	return Classification{
		Category:    category,
		UserMessage: userMessages[category],
		Raw:         strings.TrimSpace(raw),
	}
}

// As builds a Classification with an explicit category, used when the
// caller already knows the bucket (synthesized timeouts and the like).
func As(category Category, raw string) Classification {
	return build(category, raw)
}

// UserMessage returns the stable sentence for a category.
func UserMessage(category Category) string {
	if msg, ok := userMessages[category]; ok {
		return msg
	}
	return userMessages[CategoryUnknown]
}
