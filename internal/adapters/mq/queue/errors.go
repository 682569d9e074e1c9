package queue

import "errors"

// Sentinel kinds for enqueue failures.
var (
	ErrClosed = errors.New("write queue closed")
	ErrFull   = errors.New("write queue full")
)
