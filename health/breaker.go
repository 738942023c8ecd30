package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/connectorkit/resilience"
)

// BreakerChecker reports the health of one connector's circuit breaker.
// An open circuit means the backend is being failed fast and the connector
// is effectively down; half-open means a recovery probe is in flight.
type BreakerChecker struct {
	connector string
	breaker   *resilience.CircuitBreaker
}

// NewBreakerChecker creates a checker watching the given breaker.
func NewBreakerChecker(connector string, cb *resilience.CircuitBreaker) *BreakerChecker {
	return &BreakerChecker{connector: connector, breaker: cb}
}

// Name returns the name of this checker.
func (c *BreakerChecker) Name() string {
	return c.connector + "-breaker"
}

// Check reports the breaker state: closed is healthy, half-open is
// degraded, open is unhealthy.
func (c *BreakerChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	m := c.breaker.Metrics()
	details := map[string]any{
		"connector": c.connector,
		"state":     m.State.String(),
		"failures":  m.Failures,
		"successes": m.Successes,
	}
	if !m.LastFailure.IsZero() {
		details["last_failure"] = m.LastFailure.UTC().Format("2006-01-02T15:04:05Z07:00")
	}

	switch m.State {
	case resilience.StateOpen:
		return Unhealthy(
			fmt.Sprintf("circuit open after %d failures", m.Failures),
			ErrCheckFailed,
		).WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("circuit half-open, probing backend").WithDetails(details)
	default:
		return Healthy("circuit closed").WithDetails(details)
	}
}
