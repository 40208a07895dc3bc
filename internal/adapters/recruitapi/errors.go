package recruitapi

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Every error returned by Client wraps exactly one of
// them, or the context error when the caller gave up.
var (
	// ErrRetryable covers transport failures, 5xx, 408 and 429.
	ErrRetryable = errors.New("recruitapi: retryable failure")
	// ErrFatal covers other 4xx responses and undecodable bodies.
	ErrFatal = errors.New("recruitapi: fatal failure")
	// ErrNotFound is a 404 from the backend.
	ErrNotFound = errors.New("recruitapi: not found")
	// ErrInvalidInput is returned before any request is sent.
	ErrInvalidInput = errors.New("recruitapi: invalid input")
)

// StatusError is a non-2xx response. Message is the body's detail or error
// field, or "HTTP <status>" when neither is present.
type StatusError struct {
	Endpoint string
	Status   int
	Message  string
	kind     error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Endpoint, e.Message, e.Status)
}

func (e *StatusError) Unwrap() error { return e.kind }

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRetryable)
}
