package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonwraymond/connectorkit/ratelimit"
)

// BenchmarkCircuitBreaker_Allow measures the admission check on a closed
// circuit.
func BenchmarkCircuitBreaker_Allow(b *testing.B) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 100,
		ResetTimeout:     time.Minute,
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cb.Allow()
	}
}

// BenchmarkCircuitBreaker_RecordSuccess measures outcome recording.
func BenchmarkCircuitBreaker_RecordSuccess(b *testing.B) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 100,
		ResetTimeout:     time.Minute,
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cb.RecordSuccess()
	}
}

// BenchmarkRetry_FirstAttemptSuccess measures the no-retry happy path.
func BenchmarkRetry_FirstAttemptSuccess(b *testing.B) {
	r := NewRetry(RetryConfig{MaxRetries: 3})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.Execute(ctx, func(ctx context.Context) error {
			return nil
		})
	}
}

// BenchmarkDefaultRetryIf measures error classification.
func BenchmarkDefaultRetryIf(b *testing.B) {
	err := &StatusError{StatusCode: 503}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = DefaultRetryIf(err)
	}
}

// BenchmarkExecutor_Run measures a fully composed call with no
// contention.
func BenchmarkExecutor_Run(b *testing.B) {
	e := NewExecutor(
		WithCircuitBreaker(NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 100})),
		WithRetry(NewRetry(RetryConfig{MaxRetries: 1})),
		WithRateLimiter(ratelimit.NewLimiter(ratelimit.Config{})),
	)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Run(ctx, "GET /users", func(ctx context.Context) (*ratelimit.Observation, error) {
			return nil, nil
		})
	}
}

// BenchmarkExecutor_Run_TerminalError measures the non-retryable failure
// path.
func BenchmarkExecutor_Run_TerminalError(b *testing.B) {
	e := NewExecutor(WithRetry(NewRetry(RetryConfig{MaxRetries: 3})))
	ctx := context.Background()
	opErr := errors.New("validation failed")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = e.Run(ctx, "GET /users", func(ctx context.Context) (*ratelimit.Observation, error) {
			return nil, opErr
		})
	}
}
