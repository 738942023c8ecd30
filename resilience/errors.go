package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ErrCircuitOpen is returned when the circuit breaker denies admission.
var ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

// RateLimitedError reports that the backend explicitly rejected a call for
// exceeding its rate limit (e.g. an over-limit status code). It carries
// the server's retry-after hint and whether the limit is global.
type RateLimitedError struct {
	RetryAfter time.Duration
	Global     bool
}

func (e *RateLimitedError) Error() string {
	if e.Global {
		return fmt.Sprintf("resilience: globally rate limited, retry after %s", e.RetryAfter)
	}
	return fmt.Sprintf("resilience: rate limited, retry after %s", e.RetryAfter)
}

// RetryDelay implements RetryAfterHint.
func (e *RateLimitedError) RetryDelay() time.Duration {
	return e.RetryAfter
}

// RetryAfterHint is implemented by errors carrying a server-supplied retry
// delay (e.g. parsed from a Retry-After header). The retry loop uses the
// hint verbatim instead of computed backoff.
type RetryAfterHint interface {
	RetryDelay() time.Duration
}

// TransientError marks a wrapped error as retryable regardless of its
// concrete type.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "resilience: transient: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// StatusError reports an HTTP-level failure from the backend. Server-side
// (5xx) statuses are retryable; client statuses are terminal.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("resilience: backend returned status %d", e.StatusCode)
}

// Retryable reports whether the status indicates a transient server fault.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500
}

// DefaultRetryIf classifies errors for the retry loop: rate-limit
// rejections, network failures, 5xx statuses, and errors marked transient
// are retryable; context cancellation and everything else (validation,
// auth, other 4xx) are terminal.
func DefaultRetryIf(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return true
	}

	var transient *TransientError
	if errors.As(err, &transient) {
		return true
	}

	var status *StatusError
	if errors.As(err, &status) {
		return status.Retryable()
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// retryDelayHint extracts a server-supplied delay from the error chain.
func retryDelayHint(err error) (time.Duration, bool) {
	var hint RetryAfterHint
	if errors.As(err, &hint) {
		return hint.RetryDelay(), true
	}
	return 0, false
}
