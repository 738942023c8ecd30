// Package resilience guards outbound calls to third-party APIs with a
// circuit breaker, a backoff retry loop, and header-driven rate limiting.
//
// The patterns compose through an Executor. For one logical call the
// executor checks the circuit breaker, acquires a rate-limit slot, runs
// the operation through the retry loop, and feeds the outcome back into
// the breaker and limiter:
//
//	limiter := ratelimit.NewLimiter(ratelimit.Config{
//	    QueueTimeout: 10 * time.Second,
//	})
//
//	executor := resilience.NewExecutor(
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	        FailureThreshold: 5,
//	        ResetTimeout:     time.Minute,
//	    })),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
//	        MaxRetries:   3,
//	        InitialDelay: 250 * time.Millisecond,
//	    })),
//	    resilience.WithRateLimiter(limiter),
//	)
//
//	err := executor.Run(ctx, "GET /widgets/:id", func(ctx context.Context) (*ratelimit.Observation, error) {
//	    return callBackend(ctx)
//	})
//
// Admission failures (open circuit, full or timed-out queue) are returned
// immediately and never retried. Operation failures are classified by the
// retry policy — rate-limit rejections and transient server faults retry,
// validation and auth errors do not — and the breaker observes only the
// final outcome of each logical call.
//
// Each pattern can also be used on its own: CircuitBreaker is a plain
// polled state machine, and Retry wraps any function.
package resilience
