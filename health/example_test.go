package health_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/connectorkit/health"
	"github.com/jonwraymond/connectorkit/ratelimit"
	"github.com/jonwraymond/connectorkit/resilience"
)

func ExampleNewBreakerChecker() {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 3,
	})

	checker := health.NewBreakerChecker("github", cb)
	result := checker.Check(context.Background())

	fmt.Println(checker.Name(), result.Status)
	// Output: github-breaker healthy
}

func ExampleNewLimiterChecker() {
	limiter := ratelimit.NewLimiter(ratelimit.Config{})

	checker := health.NewLimiterChecker("github", limiter)
	result := checker.Check(context.Background())

	fmt.Println(checker.Name(), result.Status)
	// Output: github-limiter healthy
}

func ExampleNewAggregator() {
	agg := health.NewAggregator(health.AggregatorConfig{
		Timeout:  5 * time.Second,
		Parallel: true,
	})

	agg.Register("github-breaker", health.NewCheckerFunc("github-breaker",
		func(ctx context.Context) health.Result {
			return health.Healthy("breaker closed")
		}))
	agg.Register("github-limiter", health.NewCheckerFunc("github-limiter",
		func(ctx context.Context) health.Result {
			return health.Degraded("globally rate limited")
		}))

	results := agg.CheckAll(context.Background())
	overall := agg.OverallStatus(results)

	fmt.Println("overall:", overall)
	fmt.Println("github-breaker:", results["github-breaker"].Status)
	fmt.Println("github-limiter:", results["github-limiter"].Status)
	// Output:
	// overall: degraded
	// github-breaker: healthy
	// github-limiter: degraded
}

func ExampleAggregator_Check() {
	agg := health.NewAggregator()
	agg.Register("github-breaker", health.NewCheckerFunc("github-breaker",
		func(ctx context.Context) health.Result {
			return health.Healthy("breaker closed")
		}))

	result, err := agg.Check(context.Background(), "github-breaker")
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(result.Status, result.Message)
	// Output: healthy breaker closed
}

func ExampleNewCheckerFunc() {
	checker := health.NewCheckerFunc("token-store", func(ctx context.Context) health.Result {
		return health.Healthy("reachable").WithDetails(map[string]any{
			"latency_ms": 3,
		})
	})

	result := checker.Check(context.Background())
	fmt.Println(checker.Name(), result.Status)
	// Output: token-store healthy
}
