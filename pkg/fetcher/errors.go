package fetcher

import (
	"errors"
	"fmt"
)

// Common errors returned by the fetcher.
var (
	// ErrInvalidResponse is returned when a page response lacks a
	// "products" array.
	ErrInvalidResponse = errors.New("invalid upstream response")

	// ErrContextCancelled is returned when the context is cancelled during
	// retry backoff.
	ErrContextCancelled = errors.New("context cancelled")
)

// UpstreamError indicates the catalog fetch yielded zero usable pages.
// Per-page failures are absorbed as empty pages; this error is only
// returned when every page failed or came back empty.
type UpstreamError struct {
	// Pages is the number of pages attempted.
	Pages int

	// Err is the last page-level error observed, if any.
	Err error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream catalog fetch failed: no products across %d pages: %v", e.Pages, e.Err)
	}
	return fmt.Sprintf("upstream catalog fetch failed: no products across %d pages", e.Pages)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// statusError represents a non-success HTTP status from the upstream.
type statusError struct {
	StatusCode int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// shouldRetry reports whether a page fetch error is worth retrying.
// Client errors (4xx) are permanent; server errors and network failures
// are transient.
func shouldRetry(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	if errors.Is(err, ErrInvalidResponse) {
		return false
	}
	// Network and timeout errors.
	return true
}
