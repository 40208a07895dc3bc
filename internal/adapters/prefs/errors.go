package prefs

import "errors"

var (
	// ErrClosed is returned by a store after Close.
	ErrClosed = errors.New("prefs: store closed")
	// ErrInvalid is returned when preferences fail validation.
	ErrInvalid = errors.New("prefs: invalid preferences")
	// ErrStore wraps failures of the underlying key-value store.
	ErrStore = errors.New("prefs: store failure")
)
