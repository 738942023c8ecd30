package ratelimit

import "errors"

// Sentinel errors for acquire operations.
var (
	// ErrQueueFull is returned when a bucket's wait queue is at capacity.
	ErrQueueFull = errors.New("ratelimit: wait queue at capacity")

	// ErrQueueTimeout is returned when a caller could not be granted
	// capacity within its allotted wait time.
	ErrQueueTimeout = errors.New("ratelimit: timed out waiting for capacity")
)
