package tracker

import (
	"strings"

	"veil/internal/stego"
)

// Mode distinguishes single-carrier operations from batch fan-out.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeBatch  Mode = "batch"
)

// Kind names the job the remote service performs.
type Kind string

const (
	KindEmbed   Kind = "embed"
	KindExtract Kind = "extract"
)

// Operation is one submitted job, identified by the opaque id the remote
// service assigned at submission. Status and progress are mutated only by
// the poller; the shell carries enough context to derive a download
// filename later.
type Operation struct {
	ID   string
	Kind Kind
	Mode Mode

	// CarrierName is the first carrier's original filename, kept for
	// fallback filename derivation.
	CarrierName string

	Status           stego.OperationStatus
	ProgressReported *int
	Result           *stego.OperationResult
	Error            string
}

func newOperation(id string, kind Kind, mode Mode, carrierName string) *Operation {
	return &Operation{
		ID:          strings.TrimSpace(id),
		Kind:        kind,
		Mode:        mode,
		CarrierName: carrierName,
		Status:      stego.StatusStarting,
	}
}

func (o *Operation) apply(resp *stego.StatusResponse) {
	o.Status = resp.Status
	if resp.Progress != nil {
		value := *resp.Progress
		o.ProgressReported = &value
	}
	if resp.Result != nil {
		o.Result = resp.Result
	}
	if resp.Error != "" {
		o.Error = resp.Error
	}
}
