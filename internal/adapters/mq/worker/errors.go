package worker

import "errors"

// ErrStopped is returned when work is submitted to a pool that is not running.
var ErrStopped = errors.New("worker pool stopped")
