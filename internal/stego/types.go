package stego

import (
	"encoding/json"
	"io"
	"strings"
)

// OperationStatus is the server-reported lifecycle state of an operation.
type OperationStatus string

const (
	StatusStarting   OperationStatus = "starting"
	StatusProcessing OperationStatus = "processing"
	StatusCompleted  OperationStatus = "completed"
	StatusFailed     OperationStatus = "failed"
)

// ParseOperationStatus converts a wire string into a known status.
func ParseOperationStatus(value string) (OperationStatus, bool) {
	normalized := OperationStatus(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case StatusStarting, StatusProcessing, StatusCompleted, StatusFailed:
		return normalized, true
	}
	return "", false
}

// IsTerminal reports whether no further polling should occur.
func (s OperationStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// File pairs a filename with its content for multipart upload.
type File struct {
	Name   string
	Reader io.Reader
}

// EmbedRequest describes a single or batch embed submission. Batch mode is
// selected implicitly by supplying two or more carriers; either way the
// request is one network call producing one operation id.
type EmbedRequest struct {
	Carriers       []File
	ContentType    string // "text" or "file"
	Text           string
	ContentFile    *File
	Password       string
	EncryptionType string

	ProjectName        string
	ProjectDescription string
	UserID             string
}

// ExtractRequest describes an extract submission.
type ExtractRequest struct {
	Stego        File
	Password     string
	OutputFormat string
}

// BatchItem is one per-carrier entry in a completed batch result.
type BatchItem struct {
	Filename       string `json:"filename"`
	OutputFilename string `json:"output_filename"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
}

// OperationResult is the opaque payload attached to a completed operation.
// Single operations carry the output file metadata; batch operations
// additionally enumerate one item per carrier.
type OperationResult struct {
	OutputFilename string      `json:"output_filename"`
	Filename       string      `json:"filename"`
	ContentType    string      `json:"content_type"`
	SizeBytes      int64       `json:"size_bytes"`
	EmbeddedBytes  int64       `json:"embedded_bytes"`
	ExtractedText  string      `json:"extracted_text,omitempty"`
	Items          []BatchItem `json:"items,omitempty"`
}

// BestFilename returns the output filename the result advertises, trying
// both keys the backend has been observed to use.
func (r *OperationResult) BestFilename() string {
	if r == nil {
		return ""
	}
	if name := strings.TrimSpace(r.OutputFilename); name != "" {
		return name
	}
	return strings.TrimSpace(r.Filename)
}

// StatusResponse is the body of GET /operations/{id}/status.
type StatusResponse struct {
	Status   OperationStatus  `json:"status"`
	Progress *int             `json:"progress,omitempty"`
	Result   *OperationResult `json:"result,omitempty"`
	Error    string           `json:"error,omitempty"`

	// RawResult preserves the untouched result payload for callers that
	// persist it verbatim.
	RawResult json.RawMessage `json:"-"`
}

// FormatSpec describes one carrier category from GET /supported-formats.
type FormatSpec struct {
	CarrierFormats []string `json:"carrier_formats"`
	ContentFormats []string `json:"content_formats"`
	MaxSizeMB      int      `json:"max_size_mb"`
}

// SupportedFormats maps carrier category (image, audio, ...) to its spec.
type SupportedFormats map[string]FormatSpec
