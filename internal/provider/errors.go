// internal/provider/errors.go
package provider

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when the provider API key is absent.
// It is fatal and never retried.
var ErrNotConfigured = errors.New("provider API key is not configured")

// Error is a failed provider request: a non-2xx response or a payload
// that could not be decoded. A zero-result page is not an Error.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider request failed (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider request failed: %s", e.Message)
}
