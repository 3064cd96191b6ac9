package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"veil/internal/classify"
	"veil/internal/history"
	"veil/internal/progress"
	"veil/internal/stego"
	"veil/internal/tracker"
)

// carrierUpload keeps the open file handle alive until submission finishes.
type carrierUpload struct {
	file *os.File
	name string
	size int64
}

func openCarrier(path string) (*carrierUpload, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("file does not exist: %s", absPath)
		}
		return nil, fmt.Errorf("inspect file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", absPath)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return &carrierUpload{file: file, name: info.Name(), size: info.Size()}, nil
}

func (u *carrierUpload) asFile() stego.File {
	return stego.File{Name: u.name, Reader: u.file}
}

func (u *carrierUpload) Close() {
	if u != nil && u.file != nil {
		_ = u.file.Close()
	}
}

// preValidateCarriers checks carriers against the supported-formats feed
// before any bytes leave the client. A feed fetch failure is not fatal; the
// server remains the authority.
func (c *commandContext) preValidateCarriers(ctx context.Context, uploads []*carrierUpload) error {
	client, err := c.newClient()
	if err != nil {
		return err
	}
	formats, err := client.SupportedFormats(ctx)
	if err != nil {
		c.ensureLogger().Debug("supported formats unavailable, skipping pre-validation", "error", err)
		return nil
	}
	for _, upload := range uploads {
		if err := formats.ValidateCarrier(upload.name, upload.size); err != nil {
			return err
		}
	}
	return nil
}

// track runs one tracking session with live progress rendering.
func (c *commandContext) track(cmd *cobra.Command, tr *tracker.Tracker, op *tracker.Operation, label string) (tracker.Outcome, error) {
	renderer := newProgressRenderer(cmd.OutOrStdout(), label)
	state := progress.NewState(renderer.Update)
	outcome, err := tr.Track(cmd.Context(), op, state)
	renderer.Finish()
	return outcome, err
}

// fetchArtifact downloads the artifact into the download directory (or an
// explicit output path) and returns where it was written.
func (c *commandContext) fetchArtifact(ctx context.Context, tr *tracker.Tracker, op *tracker.Operation, outcome tracker.Outcome, outputPath string) (string, error) {
	data, name, err := tr.Fetch(ctx, op, outcome.Result)
	if err != nil {
		return "", err
	}

	target := outputPath
	if target == "" {
		cfg, cfgErr := c.ensureConfig()
		if cfgErr != nil {
			return "", cfgErr
		}
		target = filepath.Join(cfg.Paths.DownloadDir, name)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact %q: %w", target, err)
	}
	return target, nil
}

// reportOutcome prints the resolution and returns a non-nil error for hard
// failures so the process exit code reflects them.
func reportOutcome(cmd *cobra.Command, op *tracker.Operation, outcome tracker.Outcome) error {
	out := cmd.OutOrStdout()
	switch outcome.Kind {
	case tracker.OutcomeSuccess:
		fmt.Fprintf(out, "Operation %s completed\n", op.ID)
		return nil
	case tracker.OutcomePartial:
		fmt.Fprintf(out, "Operation %s completed with some failed items\n", op.ID)
		return nil
	case tracker.OutcomeFailure:
		if outcome.Failure.Category == classify.CategoryLoggingOnly {
			fmt.Fprintf(out, "%s\n", outcome.Failure.UserMessage)
			return nil
		}
		return fmt.Errorf("%s (%s)", outcome.Failure.UserMessage, categoryLabel(outcome.Failure.Category))
	}
	return nil
}

// recordHistory persists the terminal outcome. Failures to record are
// logged, never surfaced; the operation itself already resolved.
func (c *commandContext) recordHistory(ctx context.Context, op *tracker.Operation, outcome tracker.Outcome, outputFile string) {
	cfg, err := c.ensureConfig()
	if err != nil || !cfg.History.Enabled {
		return
	}
	store, err := history.Open(cfg)
	if err != nil {
		c.ensureLogger().Warn("open history store", "error", err)
		return
	}
	defer store.Close()

	record := history.Record{
		OperationID: op.ID,
		Kind:        string(op.Kind),
		Mode:        string(op.Mode),
		Outcome:     string(outcome.Kind),
		OutputFile:  outputFile,
	}
	if outcome.Kind == tracker.OutcomeFailure {
		record.Category = string(outcome.Failure.Category)
		record.UserMessage = outcome.Failure.UserMessage
		record.RawError = outcome.Failure.Raw
	}
	if outcome.Result != nil {
		if encoded, err := json.Marshal(outcome.Result); err == nil {
			record.ResultJSON = string(encoded)
		}
	}
	if err := store.Record(ctx, record); err != nil {
		c.ensureLogger().Warn("record history", "operation_id", op.ID, "error", err)
	}
}
