package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrMaxRetries          = errors.New("max retries exceeded")
	ErrEmptyResponse       = errors.New("empty response body")
	ErrInvalidURL          = errors.New("invalid URL")
	ErrDateParse           = errors.New("unparseable date")
	ErrDateMissing         = errors.New("date not found")
	ErrUnknownPortal       = errors.New("unknown portal")
	ErrInvalidRange        = errors.New("start date is after end date")
	ErrInvalidPageBudget   = errors.New("page budget out of range")
	ErrTaxonomyUnavailable = errors.New("category taxonomy unavailable")
	ErrInvalidSide         = errors.New("unknown taxonomy side")
	ErrUnsupportedFormat   = errors.New("unsupported export format")
)

// FetchError wraps errors that occur during fetching.
type FetchError struct {
	URL        string
	StatusCode int
	Attempts   int
	Err        error
	Retryable  bool
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) IsRetryable() bool { return e.Retryable }

// ParseError wraps errors that occur while reading a field off a page.
type ParseError struct {
	URL      string
	Selector string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s (selector=%q): %v", e.URL, e.Selector, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur during export.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// TaxonomyError reports a category source that could not be loaded.
type TaxonomyError struct {
	Source string
	Err    error
}

func (e *TaxonomyError) Error() string {
	return fmt.Sprintf("taxonomy source %s: %v", e.Source, e.Err)
}

func (e *TaxonomyError) Unwrap() error { return e.Err }

// PipelineError wraps errors that occur in the processing pipeline.
type PipelineError struct {
	Stage   string
	Article *Article
	Err     error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline error at stage %q: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
