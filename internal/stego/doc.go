// Package stego is the HTTP client for the remote stego processing service.
//
// It covers the full consumed surface: multipart submission to /embed,
// /embed-batch, and /extract, status polling, artifact download with
// filename derivation, and the supported-formats feed used for client-side
// pre-validation. Error bodies are parsed and routed through the classifier
// before they surface.
package stego
