package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeNetError struct{ msg string }

func (e *fakeNetError) Error() string   { return e.msg }
func (e *fakeNetError) Timeout() bool   { return true }
func (e *fakeNetError) Temporary() bool { return true }

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"context deadline", context.DeadlineExceeded, false},
		{"wrapped cancellation", fmt.Errorf("call failed: %w", context.Canceled), false},
		{"rate limited", &RateLimitedError{RetryAfter: time.Second}, true},
		{"global rate limited", &RateLimitedError{RetryAfter: time.Second, Global: true}, true},
		{"transient", &TransientError{Err: errors.New("connection reset")}, true},
		{"status 500", &StatusError{StatusCode: 500}, true},
		{"status 503", &StatusError{StatusCode: 503}, true},
		{"status 400", &StatusError{StatusCode: 400}, false},
		{"status 404", &StatusError{StatusCode: 404}, false},
		{"status 401", &StatusError{StatusCode: 401}, false},
		{"wrapped status 502", fmt.Errorf("call failed: %w", &StatusError{StatusCode: 502}), true},
		{"network error", &fakeNetError{msg: "i/o timeout"}, true},
		{"plain error", errors.New("business rule violated"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultRetryIf(tt.err); got != tt.want {
				t.Errorf("DefaultRetryIf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRateLimitedError_Messages(t *testing.T) {
	scoped := &RateLimitedError{RetryAfter: 2 * time.Second}
	if got := scoped.Error(); got != "resilience: rate limited, retry after 2s" {
		t.Errorf("Error() = %q", got)
	}

	global := &RateLimitedError{RetryAfter: 5 * time.Second, Global: true}
	if got := global.Error(); got != "resilience: globally rate limited, retry after 5s" {
		t.Errorf("Error() = %q", got)
	}
}

func TestStatusError_Retryable(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{500, true},
		{502, true},
		{599, true},
		{499, false},
		{429, false},
		{200, false},
	}
	for _, tt := range tests {
		e := &StatusError{StatusCode: tt.code}
		if got := e.Retryable(); got != tt.want {
			t.Errorf("StatusError{%d}.Retryable() = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &TransientError{Err: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is did not reach the wrapped cause")
	}
}

func TestRetryDelayHint(t *testing.T) {
	if _, ok := retryDelayHint(errors.New("plain")); ok {
		t.Error("retryDelayHint() found a hint on a plain error")
	}

	d, ok := retryDelayHint(&RateLimitedError{RetryAfter: 3 * time.Second})
	if !ok || d != 3*time.Second {
		t.Errorf("retryDelayHint() = %v, %v; want 3s, true", d, ok)
	}

	wrapped := fmt.Errorf("call failed: %w", &RateLimitedError{RetryAfter: time.Second})
	d, ok = retryDelayHint(wrapped)
	if !ok || d != time.Second {
		t.Errorf("retryDelayHint(wrapped) = %v, %v; want 1s, true", d, ok)
	}
}
