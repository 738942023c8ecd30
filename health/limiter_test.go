package health

import (
	"context"
	"testing"
	"time"

	"github.com/jonwraymond/connectorkit/ratelimit"
)

func TestLimiterChecker_Name(t *testing.T) {
	lim := ratelimit.NewLimiter(ratelimit.Config{})
	c := NewLimiterChecker("github", lim)

	if got := c.Name(); got != "github-limiter" {
		t.Errorf("Name() = %q, want 'github-limiter'", got)
	}
}

func TestLimiterChecker_Nominal(t *testing.T) {
	lim := ratelimit.NewLimiter(ratelimit.Config{})
	c := NewLimiterChecker("github", lim)

	result := c.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("status = %v, want healthy", result.Status)
	}
	if result.Details["globally_limited"] != false {
		t.Errorf("globally_limited detail = %v, want false", result.Details["globally_limited"])
	}
}

func TestLimiterChecker_GloballyLimited(t *testing.T) {
	lim := ratelimit.NewLimiter(ratelimit.Config{})
	lim.HandleExplicitLimit("GET /users", time.Minute, true)

	c := NewLimiterChecker("github", lim)

	result := c.Check(context.Background())
	if result.Status != StatusDegraded {
		t.Errorf("status = %v, want degraded", result.Status)
	}
	if result.Details["globally_limited"] != true {
		t.Errorf("globally_limited detail = %v, want true", result.Details["globally_limited"])
	}
}

func TestLimiterChecker_DeepQueues(t *testing.T) {
	lim := ratelimit.NewLimiter(ratelimit.Config{
		MaxQueueSize: 10,
		QueueTimeout: 5 * time.Second,
	})
	lim.HandleExplicitLimit("GET /users", 10*time.Second, false)

	// Park a few callers behind the forced window.
	for i := 0; i < 3; i++ {
		go func() {
			_ = lim.Acquire(context.Background(), "GET /users")
		}()
	}

	// Give the goroutines a moment to enqueue.
	deadline := time.Now().Add(time.Second)
	for lim.Stats().QueuedWaiters < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	c := NewLimiterChecker("github", lim, LimiterCheckerConfig{QueueWarning: 3})

	result := c.Check(context.Background())
	if result.Status != StatusDegraded {
		t.Errorf("status = %v, want degraded with deep queues", result.Status)
	}

	lim.Reset()
}

func TestLimiterChecker_ContextCancelled(t *testing.T) {
	lim := ratelimit.NewLimiter(ratelimit.Config{})
	c := NewLimiterChecker("github", lim)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := c.Check(ctx)
	if result.Status != StatusUnhealthy {
		t.Errorf("status = %v, want unhealthy on cancelled context", result.Status)
	}
}
