package localsource

import "errors"

var (
	// ErrNotFound is returned for a missing data file or record.
	ErrNotFound = errors.New("localsource: not found")
	// ErrDecode is returned when a data file cannot be parsed.
	ErrDecode = errors.New("localsource: decode failed")
	// ErrReadOnly is returned by write operations.
	ErrReadOnly = errors.New("localsource: read-only source")
)
