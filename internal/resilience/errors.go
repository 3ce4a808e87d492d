// Package resilience provides the retrying HTTP fetcher and the error
// taxonomy shared by every provider client. Rate limiting is the only
// recoverable failure; terminal HTTP statuses and malformed payloads degrade
// just the call site that hit them.
package resilience

import (
	"errors"
	"fmt"
)

// RateLimitError signals that a provider kept returning HTTP 429 after all
// retries were exhausted.
type RateLimitError struct {
	URL      string
	Attempts int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited after %d attempts: %s", e.Attempts, e.URL)
}

// HTTPError is a terminal, non-retryable HTTP status from a provider.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d from %s", e.StatusCode, e.URL)
}

// DataShapeError signals that a provider returned a payload with an
// unexpected shape. Callers treat it as "no data" for that item.
type DataShapeError struct {
	Provider string
	Detail   string
}

func (e *DataShapeError) Error() string {
	return fmt.Sprintf("%s: unexpected payload: %s", e.Provider, e.Detail)
}

// IsRateLimit reports whether err (or anything it wraps) is a RateLimitError.
func IsRateLimit(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}

// IsDataShape reports whether err (or anything it wraps) is a DataShapeError.
func IsDataShape(err error) bool {
	var dse *DataShapeError
	return errors.As(err, &dse)
}
