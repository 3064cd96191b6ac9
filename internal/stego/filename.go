package stego

import (
	"fmt"
	"path/filepath"
	"strings"
)

// internalPrefixes are storage-layer prefixes the backend injects into
// output filenames. Kept as data so the list stays auditable.
var internalPrefixes = []string{
	"stego_",
	"upload_",
	"tmp_",
}

const defaultStem = "veil_output"

// DeriveFilename resolves the artifact filename in priority order: the
// Content-Disposition name, then the terminal result payload, then a
// generated fallback combining the default stem with the operation id and
// the carrier extension. The chosen name is normalized before returning.
func DeriveFilename(dispositionName string, result *OperationResult, operationID, carrierName string) string {
	if name := strings.TrimSpace(dispositionName); name != "" {
		return NormalizeFilename(name)
	}
	if name := result.BestFilename(); name != "" {
		return NormalizeFilename(name)
	}
	ext := filepath.Ext(carrierName)
	return fmt.Sprintf("%s_%s%s", defaultStem, operationID, ext)
}

// NormalizeFilename strips known internal prefixes and the timestamp or
// identifier suffixes the backend's storage layer appends, so the presented
// name resembles what the user originally uploaded.
func NormalizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." {
		return ""
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for _, prefix := range internalPrefixes {
		if len(stem) > len(prefix) && strings.HasPrefix(strings.ToLower(stem), prefix) {
			stem = stem[len(prefix):]
			break
		}
	}

	stem = trimInjectedSuffix(stem)
	if stem == "" {
		stem = defaultStem
	}
	return stem + ext
}

// trimInjectedSuffix drops a trailing _<digits> (unix timestamp) or _<hex>
// (storage identifier) segment. Short numeric tails are left alone so names
// like report_2 survive.
func trimInjectedSuffix(stem string) string {
	idx := strings.LastIndex(stem, "_")
	if idx <= 0 {
		return stem
	}
	tail := stem[idx+1:]
	if len(tail) >= 8 && (isDigits(tail) || isHex(tail)) {
		return stem[:idx]
	}
	return stem
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
