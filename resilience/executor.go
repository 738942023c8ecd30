package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/jonwraymond/connectorkit/ratelimit"
)

// Operation is one attemptable call against a backend. When the response
// carried rate-limit headers, the operation returns them as a non-nil
// Observation so the executor can feed them back into the limiter.
type Operation func(ctx context.Context) (*ratelimit.Observation, error)

// Executor composes admission control and retry around backend calls.
//
// One Run is one logical call: the breaker is consulted and a limiter slot
// acquired exactly once, then the retry loop re-invokes only the raw
// operation. The breaker observes the final outcome, so a transient error
// that is retried successfully never counts as a breaker failure.
type Executor struct {
	breaker   *CircuitBreaker
	retry     *Retry
	limiter   *ratelimit.Limiter
	listeners []Listener
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a new resilient executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCircuitBreaker adds a circuit breaker to the executor.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) {
		e.breaker = cb
	}
}

// WithRetry adds retry logic to the executor.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) {
		e.retry = r
	}
}

// WithRateLimiter adds rate limiting to the executor.
func WithRateLimiter(l *ratelimit.Limiter) ExecutorOption {
	return func(e *Executor) {
		e.limiter = l
	}
}

// WithListener registers a lifecycle listener.
func WithListener(l Listener) ExecutorOption {
	return func(e *Executor) {
		e.listeners = append(e.listeners, l)
	}
}

// Run executes one logical call against the route.
//
// Admission failures (ErrCircuitOpen, queue errors) are returned
// immediately and never retried. Operation failures are classified by the
// retry policy and either retried or returned as-is; the caller always
// receives the original error from the last attempt.
func (e *Executor) Run(ctx context.Context, route string, op Operation) error {
	e.emitRequest(ctx, route)
	start := time.Now()

	if e.breaker != nil && !e.breaker.Allow() {
		e.emitError(ctx, route, ErrCircuitOpen)
		return ErrCircuitOpen
	}

	if e.limiter != nil {
		if err := e.limiter.Acquire(ctx, route); err != nil {
			e.emitError(ctx, route, err)
			return err
		}
	}

	attempt := func(ctx context.Context) error {
		obs, err := op(ctx)
		e.feedLimiter(route, obs, err)
		return err
	}

	var err error
	if e.retry != nil {
		err = e.retry.execute(ctx, attempt, func(n int, attemptErr error, delay time.Duration) {
			e.emitRetry(ctx, route, n, attemptErr, delay)
		})
	} else {
		err = attempt(ctx)
	}

	if err != nil {
		if e.breaker != nil {
			e.breaker.RecordFailure()
		}
		e.emitError(ctx, route, err)
		return err
	}

	if e.breaker != nil {
		e.breaker.RecordSuccess()
	}
	e.emitResponse(ctx, route, time.Since(start))
	return nil
}

// RunValue is Run for operations that produce a result.
func RunValue[T any](ctx context.Context, e *Executor, route string, op func(ctx context.Context) (T, *ratelimit.Observation, error)) (T, error) {
	var result T
	err := e.Run(ctx, route, func(ctx context.Context) (*ratelimit.Observation, error) {
		v, obs, err := op(ctx)
		if err == nil {
			result = v
		}
		return obs, err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// feedLimiter pushes per-attempt server feedback into the limiter: header
// state after every response, and explicit over-limit signals as a forced
// window.
func (e *Executor) feedLimiter(route string, obs *ratelimit.Observation, err error) {
	if e.limiter == nil {
		return
	}
	if obs != nil {
		e.limiter.UpdateFromResponse(route, *obs)
	}
	if err != nil {
		var rl *RateLimitedError
		if errors.As(err, &rl) {
			e.limiter.HandleExplicitLimit(route, rl.RetryAfter, rl.Global)
		}
	}
}
