package stego

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"veil/internal/classify"
	"veil/internal/logging"
)

const userAgent = "Veil-Go/0.1.0"

// ErrArtifactNotFound distinguishes "the artifact is not there" from other
// download failures. A 404 before the job finalizes is retryable by the
// caller; a 404 after completion is not, but either way it must not be
// folded into generic HTTP failure handling.
var ErrArtifactNotFound = errors.New("artifact not found")

// HTTPDoer describes the HTTP client used by the stego service client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the remote stego processing service.
type Client struct {
	baseURL string
	http    HTTPDoer
	logger  *slog.Logger
}

// Option customises Client construction.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for service calls.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger.With("component", "stego-client")
		}
	}
}

// WithTimeout replaces the default HTTP client with one using the given
// timeout. Ignored when WithHTTPClient is also supplied later in the option
// list.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient constructs a service client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// SubmitEmbed validates and sends an embed request, routing to /embed-batch
// when more than one carrier is supplied. It returns the operation id.
func (c *Client) SubmitEmbed(ctx context.Context, req EmbedRequest) (string, error) {
	if err := validateEmbed(req); err != nil {
		return "", err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	batch := len(req.Carriers) > 1
	carrierField := "carrier_file"
	if batch {
		carrierField = "carrier_files"
	}
	for _, carrier := range req.Carriers {
		if err := writeFilePart(writer, carrierField, carrier); err != nil {
			return "", err
		}
	}

	fields := map[string]string{
		"content_type":    req.ContentType,
		"password":        req.Password,
		"encryption_type": req.EncryptionType,
	}
	if req.Text != "" {
		fields["text_content"] = req.Text
	}
	if req.ProjectName != "" {
		fields["project_name"] = req.ProjectName
	}
	if req.ProjectDescription != "" {
		fields["project_description"] = req.ProjectDescription
	}
	if req.UserID != "" {
		fields["user_id"] = req.UserID
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return "", fmt.Errorf("write field %s: %w", key, err)
		}
	}
	if req.ContentFile != nil {
		if err := writeFilePart(writer, "content_file", *req.ContentFile); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	endpoint := "/embed"
	if batch {
		endpoint = "/embed-batch"
	}
	return c.submit(ctx, endpoint, writer.FormDataContentType(), body)
}

// SubmitExtract validates and sends an extract request and returns the
// operation id.
func (c *Client) SubmitExtract(ctx context.Context, req ExtractRequest) (string, error) {
	if err := validateExtract(req); err != nil {
		return "", err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writeFilePart(writer, "stego_file", req.Stego); err != nil {
		return "", err
	}
	if err := writer.WriteField("password", req.Password); err != nil {
		return "", fmt.Errorf("write field password: %w", err)
	}
	if err := writer.WriteField("output_format", req.OutputFormat); err != nil {
		return "", fmt.Errorf("write field output_format: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	return c.submit(ctx, "/extract", writer.FormDataContentType(), body)
}

func (c *Client) submit(ctx context.Context, endpoint, contentType string, body io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return "", fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", contentType)
	requestID := c.prepare(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", classify.NewError(classify.CategoryTransientServer, fmt.Errorf("submit %s: %w", endpoint, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", c.errorFromResponse(resp, endpoint)
	}

	var payload struct {
		OperationID string `json:"operation_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", classify.NewError(classify.CategoryTransientServer, fmt.Errorf("decode %s response: %w", endpoint, err))
	}
	if strings.TrimSpace(payload.OperationID) == "" {
		return "", classify.NewErrorf(classify.CategoryTransientServer, "%s response carried no operation id", endpoint)
	}

	c.logger.Info("operation submitted",
		"endpoint", endpoint,
		"operation_id", payload.OperationID,
		"request_id", requestID)
	return payload.OperationID, nil
}

// Status fetches the current state of an operation.
func (c *Client) Status(ctx context.Context, operationID string) (*StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.operationURL(operationID, "status"), nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	c.prepare(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.errorFromResponse(resp, "status")
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read status response: %w", err)
	}

	var envelope struct {
		Status   string          `json:"status"`
		Progress *int            `json:"progress"`
		Result   json.RawMessage `json:"result"`
		Error    string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}

	status, ok := ParseOperationStatus(envelope.Status)
	if !ok {
		return nil, fmt.Errorf("unrecognized operation status %q", envelope.Status)
	}

	out := &StatusResponse{
		Status:    status,
		Progress:  envelope.Progress,
		Error:     envelope.Error,
		RawResult: envelope.Result,
	}
	if len(envelope.Result) > 0 && string(envelope.Result) != "null" {
		result := &OperationResult{}
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return nil, fmt.Errorf("decode operation result: %w", err)
		}
		out.Result = result
	}
	return out, nil
}

// Download retrieves the produced artifact. The returned filename is the
// Content-Disposition name when the server supplies one, otherwise empty;
// filename derivation and normalization live in DeriveFilename.
func (c *Client) Download(ctx context.Context, operationID string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.operationURL(operationID, "download"), nil)
	if err != nil {
		return nil, "", fmt.Errorf("build download request: %w", err)
	}
	c.prepare(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", classify.NewError(classify.CategoryTransientServer, fmt.Errorf("download artifact: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", fmt.Errorf("operation %s: %w", operationID, ErrArtifactNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", c.errorFromResponse(resp, "download")
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", classify.NewError(classify.CategoryTransientServer, fmt.Errorf("read artifact body: %w", err))
	}

	name := filenameFromDisposition(resp.Header.Get("Content-Disposition"))
	return data, name, nil
}

// SupportedFormats fetches carrier/content format constraints for
// client-side pre-validation.
func (c *Client) SupportedFormats(ctx context.Context) (SupportedFormats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/supported-formats", nil)
	if err != nil {
		return nil, fmt.Errorf("build formats request: %w", err)
	}
	c.prepare(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch supported formats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.errorFromResponse(resp, "supported-formats")
	}

	formats := SupportedFormats{}
	if err := json.NewDecoder(resp.Body).Decode(&formats); err != nil {
		return nil, fmt.Errorf("decode supported formats: %w", err)
	}
	return formats, nil
}

func (c *Client) operationURL(operationID, leaf string) string {
	return fmt.Sprintf("%s/operations/%s/%s", c.baseURL, operationID, leaf)
}

func (c *Client) prepare(req *http.Request) string {
	requestID := uuid.NewString()
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)
	return requestID
}

// errorFromResponse parses the `{detail}` error body and routes it through
// the classifier before raising.
func (c *Client) errorFromResponse(resp *http.Response, operation string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	detail := strings.TrimSpace(string(raw))
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && strings.TrimSpace(body.Detail) != "" {
		detail = strings.TrimSpace(body.Detail)
	}
	classification := classify.Status(resp.StatusCode, detail)
	c.logger.Warn("service request failed",
		"operation", operation,
		"status_code", resp.StatusCode,
		"category", string(classification.Category),
		"detail", detail)
	return &classify.ClassifiedError{
		Classification: classification,
		Err:            fmt.Errorf("%s returned HTTP %d: %s", operation, resp.StatusCode, detail),
	}
}

func writeFilePart(writer *multipart.Writer, field string, file File) error {
	name := strings.TrimSpace(file.Name)
	if name == "" {
		name = "upload"
	}
	part, err := writer.CreateFormFile(field, name)
	if err != nil {
		return fmt.Errorf("create form file %s: %w", field, err)
	}
	if file.Reader == nil {
		return nil
	}
	if _, err := io.Copy(part, file.Reader); err != nil {
		return fmt.Errorf("copy %s content: %w", field, err)
	}
	return nil
}

func filenameFromDisposition(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["filename"])
}

func validateEmbed(req EmbedRequest) error {
	if len(req.Carriers) == 0 {
		return classify.NewErrorf(classify.CategoryInvalidInput, "at least one carrier file is required")
	}
	for _, carrier := range req.Carriers {
		if strings.TrimSpace(carrier.Name) == "" {
			return classify.NewErrorf(classify.CategoryInvalidInput, "carrier file is missing a name")
		}
	}
	switch req.ContentType {
	case "text":
		if strings.TrimSpace(req.Text) == "" {
			return classify.NewErrorf(classify.CategoryInvalidInput, "payload text must not be empty")
		}
	case "file":
		if req.ContentFile == nil {
			return classify.NewErrorf(classify.CategoryInvalidInput, "payload file is required")
		}
	default:
		return classify.NewErrorf(classify.CategoryInvalidInput, "content type %q is not supported (text, file)", req.ContentType)
	}
	if encryptionRequiresPassword(req.EncryptionType) && strings.TrimSpace(req.Password) == "" {
		return classify.NewErrorf(classify.CategoryInvalidInput, "password is required when encryption is enabled")
	}
	return nil
}

func validateExtract(req ExtractRequest) error {
	if strings.TrimSpace(req.Stego.Name) == "" {
		return classify.NewErrorf(classify.CategoryInvalidInput, "stego file is required")
	}
	if strings.TrimSpace(req.Password) == "" {
		return classify.NewErrorf(classify.CategoryInvalidInput, "password is required to extract")
	}
	return nil
}

func encryptionRequiresPassword(encryptionType string) bool {
	switch strings.ToLower(strings.TrimSpace(encryptionType)) {
	case "", "none":
		return false
	default:
		return true
	}
}
