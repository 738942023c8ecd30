package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/connectorkit/ratelimit"
)

// recordingListener captures executor lifecycle events in order.
type recordingListener struct {
	NopListener
	mu     sync.Mutex
	events []string
	errs   []error
}

func (l *recordingListener) OnRequest(ctx context.Context, route string) {
	l.record("request", nil)
}

func (l *recordingListener) OnResponse(ctx context.Context, route string, d time.Duration) {
	l.record("response", nil)
}

func (l *recordingListener) OnError(ctx context.Context, route string, err error) {
	l.record("error", err)
}

func (l *recordingListener) OnRetry(ctx context.Context, route string, attempt int, err error, delay time.Duration) {
	l.record("retry", err)
}

func (l *recordingListener) record(event string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	if err != nil {
		l.errs = append(l.errs, err)
	}
}

func (l *recordingListener) Events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func okOp(calls *int) Operation {
	return func(ctx context.Context) (*ratelimit.Observation, error) {
		*calls++
		return nil, nil
	}
}

func TestExecutor_NoComponentsPassesThrough(t *testing.T) {
	e := NewExecutor()

	calls := 0
	if err := e.Run(context.Background(), "GET /users", okOp(&calls)); err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}

	opErr := errors.New("backend down")
	err := e.Run(context.Background(), "GET /users", func(ctx context.Context) (*ratelimit.Observation, error) {
		return nil, opErr
	})
	if err != opErr {
		t.Errorf("Run() error = %v, want the operation error", err)
	}
}

func TestExecutor_OpenCircuitFailsFast(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1})
	cb.RecordFailure()

	e := NewExecutor(WithCircuitBreaker(cb))

	calls := 0
	err := e.Run(context.Background(), "GET /users", okOp(&calls))
	if err != ErrCircuitOpen {
		t.Errorf("Run() error = %v, want ErrCircuitOpen", err)
	}
	if calls != 0 {
		t.Errorf("operation invoked %d times behind an open circuit", calls)
	}
}

func TestExecutor_RetriedSuccessKeepsBreakerClosed(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2})
	r := NewRetry(RetryConfig{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		RetryIf:      func(err error) bool { return true },
	})

	e := NewExecutor(WithCircuitBreaker(cb), WithRetry(r))

	calls := 0
	err := e.Run(context.Background(), "GET /users", func(ctx context.Context) (*ratelimit.Observation, error) {
		calls++
		if calls < 4 {
			return nil, errors.New("transient")
		}
		return nil, nil
	})

	if err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if calls != 4 {
		t.Errorf("calls = %d, want 4", calls)
	}
	// Three failed attempts inside one call are not breaker failures.
	if got := cb.State(); got != StateClosed {
		t.Errorf("breaker state = %v, want Closed", got)
	}
}

func TestExecutor_ExhaustionRecordsOneBreakerFailure(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2})
	r := NewRetry(RetryConfig{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		RetryIf:      func(err error) bool { return true },
	})

	e := NewExecutor(WithCircuitBreaker(cb), WithRetry(r))

	opErr := errors.New("backend down")
	err := e.Run(context.Background(), "GET /users", func(ctx context.Context) (*ratelimit.Observation, error) {
		return nil, opErr
	})

	if err != opErr {
		t.Errorf("Run() error = %v, want the last attempt's error", err)
	}
	m := cb.Metrics()
	if m.Failures != 1 {
		t.Errorf("breaker failures = %d, want 1", m.Failures)
	}
	if got := cb.State(); got != StateClosed {
		t.Errorf("breaker state = %v, want Closed after a single failure", got)
	}
}

func TestExecutor_AdmissionErrorsNotRetried(t *testing.T) {
	lim := ratelimit.NewLimiter(ratelimit.Config{
		MaxQueueSize: 1,
		QueueTimeout: 10 * time.Millisecond,
	})
	lim.HandleExplicitLimit("GET /users", time.Hour, false)

	retries := 0
	r := NewRetry(RetryConfig{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			retries++
		},
	})

	e := NewExecutor(WithRateLimiter(lim), WithRetry(r))

	calls := 0
	err := e.Run(context.Background(), "GET /users", okOp(&calls))
	if !errors.Is(err, ratelimit.ErrQueueTimeout) {
		t.Errorf("Run() error = %v, want ErrQueueTimeout", err)
	}
	if calls != 0 {
		t.Errorf("operation invoked %d times after admission denial", calls)
	}
	if retries != 0 {
		t.Errorf("admission denial was retried %d times", retries)
	}
}

func TestExecutor_ObservationFeedsLimiter(t *testing.T) {
	lim := ratelimit.NewLimiter(ratelimit.Config{})
	e := NewExecutor(WithRateLimiter(lim))

	reset := time.Now().Add(time.Minute)
	err := e.Run(context.Background(), "GET /users", func(ctx context.Context) (*ratelimit.Observation, error) {
		return &ratelimit.Observation{Remaining: 7, Reset: reset}, nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := lim.WaitTime("GET /users"); got != 0 {
		t.Errorf("WaitTime() = %v with tokens remaining, want 0", got)
	}
}

func TestExecutor_RateLimitedErrorMarksGlobal(t *testing.T) {
	lim := ratelimit.NewLimiter(ratelimit.Config{})
	e := NewExecutor(WithRateLimiter(lim))

	opErr := &RateLimitedError{RetryAfter: time.Minute, Global: true}
	err := e.Run(context.Background(), "GET /users", func(ctx context.Context) (*ratelimit.Observation, error) {
		return nil, opErr
	})
	if !errors.Is(err, opErr) {
		t.Errorf("Run() error = %v, want the rate-limit error", err)
	}
	if !lim.GloballyLimited() {
		t.Error("GloballyLimited() = false after a global rejection")
	}
}

func TestRunValue(t *testing.T) {
	e := NewExecutor()

	got, err := RunValue(context.Background(), e, "GET /users", func(ctx context.Context) ([]string, *ratelimit.Observation, error) {
		return []string{"alice", "bob"}, nil, nil
	})
	if err != nil {
		t.Fatalf("RunValue() error = %v", err)
	}
	if len(got) != 2 || got[0] != "alice" {
		t.Errorf("RunValue() = %v", got)
	}

	opErr := errors.New("backend down")
	missing, err := RunValue(context.Background(), e, "GET /users", func(ctx context.Context) (string, *ratelimit.Observation, error) {
		return "partial", nil, opErr
	})
	if err != opErr {
		t.Errorf("RunValue() error = %v, want the operation error", err)
	}
	if missing != "" {
		t.Errorf("RunValue() = %q on failure, want zero value", missing)
	}
}

func TestExecutor_ListenerEventOrder(t *testing.T) {
	l := &recordingListener{}
	r := NewRetry(RetryConfig{
		MaxRetries:   1,
		InitialDelay: time.Millisecond,
		RetryIf:      func(err error) bool { return true },
	})
	e := NewExecutor(WithRetry(r), WithListener(l))

	calls := 0
	err := e.Run(context.Background(), "GET /users", func(ctx context.Context) (*ratelimit.Observation, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("transient")
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"request", "retry", "response"}
	got := l.Events()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestExecutor_ListenerErrorOnFailure(t *testing.T) {
	l := &recordingListener{}
	e := NewExecutor(WithListener(l))

	opErr := errors.New("backend down")
	_ = e.Run(context.Background(), "GET /users", func(ctx context.Context) (*ratelimit.Observation, error) {
		return nil, opErr
	})

	got := l.Events()
	if len(got) != 2 || got[0] != "request" || got[1] != "error" {
		t.Fatalf("events = %v, want [request error]", got)
	}
	if len(l.errs) != 1 || l.errs[0] != opErr {
		t.Errorf("errors = %v, want the operation error", l.errs)
	}
}

type panickyListener struct{ NopListener }

func (panickyListener) OnRequest(ctx context.Context, route string) { panic("listener bug") }

func (panickyListener) OnResponse(ctx context.Context, route string, d time.Duration) {
	panic("listener bug")
}

func TestExecutor_ListenerPanicDoesNotAffectCall(t *testing.T) {
	e := NewExecutor(WithListener(panickyListener{}))

	calls := 0
	if err := e.Run(context.Background(), "GET /users", okOp(&calls)); err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
