// Package config loads, normalizes, and validates veil configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// VEIL_SERVICE_URL. The Config type centralizes every knob the CLI and the
// tracking core need, so service endpoints, polling cadence, and output
// directories are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
