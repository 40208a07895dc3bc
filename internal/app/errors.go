package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/recrai/internal/adapters/localsource"
	"github.com/okian/recrai/internal/adapters/recruitapi"
)

// Sentinel error kinds returned by Service. The HTTP layer maps them to
// status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("backend unavailable")
	ErrUnsupported  = errors.New("operation not supported by source")
	ErrNotStarted   = errors.New("service not started")
)

// classify tags a source error with the matching service kind.
func classify(err error) error {
	var se *recruitapi.StatusError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, recruitapi.ErrNotFound), errors.Is(err, localsource.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, recruitapi.ErrRetryable):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	case errors.Is(err, recruitapi.ErrInvalidInput),
		errors.As(err, &se) && (se.Status == http.StatusBadRequest || se.Status == http.StatusUnprocessableEntity):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	default:
		return err
	}
}
