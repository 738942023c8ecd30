package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/connectorkit/ratelimit"
)

// LimiterCheckerConfig configures the rate limiter health checker.
type LimiterCheckerConfig struct {
	// QueueWarning is the total number of queued waiters that triggers
	// degraded status. Default: 50
	QueueWarning int
}

// LimiterChecker reports the health of one connector's rate limiter. A
// globally limited connector or a deep wait queue signals that calls are
// backing up behind the backend's limits.
type LimiterChecker struct {
	connector string
	limiter   *ratelimit.Limiter
	config    LimiterCheckerConfig
}

// NewLimiterChecker creates a checker watching the given limiter.
func NewLimiterChecker(connector string, l *ratelimit.Limiter, config ...LimiterCheckerConfig) *LimiterChecker {
	cfg := LimiterCheckerConfig{QueueWarning: 50}
	if len(config) > 0 {
		cfg = config[0]
		if cfg.QueueWarning <= 0 {
			cfg.QueueWarning = 50
		}
	}
	return &LimiterChecker{connector: connector, limiter: l, config: cfg}
}

// Name returns the name of this checker.
func (c *LimiterChecker) Name() string {
	return c.connector + "-limiter"
}

// Check reports limiter pressure: degraded when the backend has imposed a
// global limit or the wait queues are deep, healthy otherwise. A rate
// limiter never makes the connector unhealthy by itself.
func (c *LimiterChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	stats := c.limiter.Stats()
	details := map[string]any{
		"connector":        c.connector,
		"buckets":          stats.Buckets,
		"queued_waiters":   stats.QueuedWaiters,
		"globally_limited": stats.GloballyLimited,
	}
	if stats.GloballyLimited {
		details["global_reset"] = stats.GlobalReset.UTC().Format("2006-01-02T15:04:05Z07:00")
	}

	if stats.GloballyLimited {
		return Degraded("globally rate limited by backend").WithDetails(details)
	}
	if stats.QueuedWaiters >= c.config.QueueWarning {
		return Degraded(
			fmt.Sprintf("wait queues deep: %d callers parked", stats.QueuedWaiters),
		).WithDetails(details)
	}

	return Healthy("rate limiter nominal").WithDetails(details)
}
