package stego

import (
	"path/filepath"
	"sort"
	"strings"

	"veil/internal/classify"
)

// CategoryFor returns the carrier category whose formats include the file's
// extension.
func (f SupportedFormats) CategoryFor(filename string) (string, FormatSpec, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return "", FormatSpec{}, false
	}
	for _, category := range f.Categories() {
		spec := f[category]
		for _, format := range spec.CarrierFormats {
			if strings.EqualFold(strings.TrimPrefix(format, "."), ext) {
				return category, spec, true
			}
		}
	}
	return "", FormatSpec{}, false
}

// ValidateCarrier rejects carriers the service will refuse anyway, before
// any bytes leave the client.
func (f SupportedFormats) ValidateCarrier(filename string, sizeBytes int64) error {
	if len(f) == 0 {
		return nil
	}
	category, spec, ok := f.CategoryFor(filename)
	if !ok {
		return classify.NewErrorf(classify.CategoryInvalidInput,
			"carrier format %q is not supported by the service", filepath.Ext(filename))
	}
	if spec.MaxSizeMB > 0 && sizeBytes > int64(spec.MaxSizeMB)*1024*1024 {
		return classify.NewErrorf(classify.CategoryInvalidInput,
			"carrier %s exceeds the %d MB limit for %s files", filepath.Base(filename), spec.MaxSizeMB, category)
	}
	return nil
}

// Categories returns the carrier categories in stable order.
func (f SupportedFormats) Categories() []string {
	categories := make([]string, 0, len(f))
	for category := range f {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}
