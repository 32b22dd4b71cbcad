package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrEmptyResponse     = errors.New("empty response body")
	ErrInvalidURL        = errors.New("invalid URL")
	ErrRenderUnavailable = errors.New("renderer unavailable")
)

// FetchError wraps errors from the initial page fetch. It is the only
// error class that fails a scrape call; everything downstream degrades
// to empty output instead.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RenderError wraps failures of the headless-render capability. The
// orchestrator treats it as "no additional data", never as fatal.
type RenderError struct {
	URL     string
	Timeout bool
	Err     error
}

func (e *RenderError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("render timeout for %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("render error for %s: %v", e.URL, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// ParseError wraps malformed markup or structured-data shapes. Recovered
// locally: the offending candidate or field is skipped.
type ParseError struct {
	URL      string
	Selector string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Selector != "" {
		return fmt.Sprintf("parse error for %s (selector=%q): %v", e.URL, e.Selector, e.Err)
	}
	return fmt.Sprintf("parse error for %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError wraps errors from persistence backends. Persistence is
// best-effort; callers log these instead of propagating them.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
