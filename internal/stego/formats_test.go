package stego

import (
	"testing"

	"veil/internal/classify"
)

func testFormats() SupportedFormats {
	return SupportedFormats{
		"image": {CarrierFormats: []string{"png", "bmp"}, MaxSizeMB: 10},
		"audio": {CarrierFormats: []string{"wav", "flac"}, MaxSizeMB: 100},
	}
}

func TestCategoryFor(t *testing.T) {
	formats := testFormats()

	category, spec, ok := formats.CategoryFor("photo.PNG")
	if !ok || category != "image" || spec.MaxSizeMB != 10 {
		t.Fatalf("CategoryFor(photo.PNG) = %q %v %t", category, spec, ok)
	}

	if _, _, ok := formats.CategoryFor("movie.mkv"); ok {
		t.Fatal("mkv should not match any category")
	}
	if _, _, ok := formats.CategoryFor("noextension"); ok {
		t.Fatal("extensionless name should not match")
	}
}

func TestValidateCarrier(t *testing.T) {
	formats := testFormats()

	if err := formats.ValidateCarrier("photo.png", 1024); err != nil {
		t.Fatalf("valid carrier rejected: %v", err)
	}

	err := formats.ValidateCarrier("movie.mkv", 1024)
	if err == nil {
		t.Fatal("unsupported format accepted")
	}
	if got := classify.CategoryOf(err); got != classify.CategoryInvalidInput {
		t.Fatalf("category = %s, want %s", got, classify.CategoryInvalidInput)
	}

	err = formats.ValidateCarrier("photo.png", 11*1024*1024)
	if err == nil {
		t.Fatal("oversized carrier accepted")
	}
	if got := classify.CategoryOf(err); got != classify.CategoryInvalidInput {
		t.Fatalf("category = %s, want %s", got, classify.CategoryInvalidInput)
	}
}

func TestValidateCarrierEmptyFeedPasses(t *testing.T) {
	var formats SupportedFormats
	if err := formats.ValidateCarrier("anything.xyz", 1<<40); err != nil {
		t.Fatalf("empty feed must not reject: %v", err)
	}
}

func TestCategoriesStableOrder(t *testing.T) {
	formats := testFormats()
	got := formats.Categories()
	want := []string{"audio", "image"}
	if len(got) != len(want) {
		t.Fatalf("Categories() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Categories() = %v, want %v", got, want)
		}
	}
}

func TestParseOperationStatus(t *testing.T) {
	tests := []struct {
		input string
		want  OperationStatus
		ok    bool
	}{
		{"completed", StatusCompleted, true},
		{" Processing ", StatusProcessing, true},
		{"FAILED", StatusFailed, true},
		{"starting", StatusStarting, true},
		{"paused", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := ParseOperationStatus(tc.input)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseOperationStatus(%q) = %q %t, want %q %t", tc.input, got, ok, tc.want, tc.ok)
		}
	}

	if StatusProcessing.IsTerminal() || StatusStarting.IsTerminal() {
		t.Fatal("non-terminal status reported terminal")
	}
	if !StatusCompleted.IsTerminal() || !StatusFailed.IsTerminal() {
		t.Fatal("terminal status not reported terminal")
	}
}
