package classify

import (
	"errors"
	"fmt"
)

// ClassifiedError carries a Classification through the error chain so
// callers can recover the category with errors.As.
type ClassifiedError struct {
	Classification Classification
	Err            error
}

func (e *ClassifiedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Classification.Category, e.Err)
	}
	if e.Classification.Raw != "" {
		return fmt.Sprintf("%s: %s", e.Classification.Category, e.Classification.Raw)
	}
	return string(e.Classification.Category)
}

func (e *ClassifiedError) Unwrap() error { return e.Err }

// NewError wraps err with an explicit category.
func NewError(category Category, err error) error {
	raw := ""
	if err != nil {
		raw = err.Error()
	}
	return &ClassifiedError{
		Classification: build(category, raw),
		Err:            err,
	}
}

// NewErrorf builds a classified error from a format string.
func NewErrorf(category Category, format string, args ...any) error {
	return NewError(category, fmt.Errorf(format, args...))
}

// CategoryOf extracts the category from an error chain, defaulting to
// CategoryUnknown.
func CategoryOf(err error) Category {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Classification.Category
	}
	return CategoryUnknown
}
