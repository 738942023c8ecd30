package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestHealthy(t *testing.T) {
	r := Healthy("breaker closed")

	if r.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", r.Status)
	}
	if r.Message != "breaker closed" {
		t.Errorf("Message = %q, want %q", r.Message, "breaker closed")
	}
	if r.Error != nil {
		t.Errorf("Error = %v, want nil", r.Error)
	}
	if r.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
}

func TestDegraded(t *testing.T) {
	r := Degraded("rate limited")

	if r.Status != StatusDegraded {
		t.Errorf("Status = %v, want degraded", r.Status)
	}
	if r.Error != nil {
		t.Errorf("Error = %v, want nil", r.Error)
	}
}

func TestUnhealthy(t *testing.T) {
	cause := errors.New("connection refused")
	r := Unhealthy("upstream unreachable", cause)

	if r.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", r.Status)
	}
	if !errors.Is(r.Error, cause) {
		t.Errorf("Error = %v, want %v", r.Error, cause)
	}
}

func TestResult_WithDetails(t *testing.T) {
	r := Healthy("ok").WithDetails(map[string]any{"queued_waiters": 3})

	if got := r.Details["queued_waiters"]; got != 3 {
		t.Errorf("Details[queued_waiters] = %v, want 3", got)
	}
	if r.Status != StatusHealthy {
		t.Errorf("Status changed to %v", r.Status)
	}
}

func TestCheckerFunc(t *testing.T) {
	called := 0
	c := NewCheckerFunc("github-breaker", func(ctx context.Context) Result {
		called++
		return Healthy("ok")
	})

	if c.Name() != "github-breaker" {
		t.Errorf("Name() = %q, want %q", c.Name(), "github-breaker")
	}

	r := c.Check(context.Background())
	if r.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", r.Status)
	}
	if called != 1 {
		t.Errorf("fn called %d times, want 1", called)
	}
}
