package resilience

import (
	"context"
	"time"
)

// Listener observes the lifecycle of calls going through an Executor.
//
// Listeners are purely observational and best-effort: a panic in any
// method is swallowed and never affects the call's outcome.
type Listener interface {
	// OnRequest fires once per logical call, before admission checks.
	OnRequest(ctx context.Context, route string)

	// OnResponse fires after a call ultimately succeeds.
	OnResponse(ctx context.Context, route string, duration time.Duration)

	// OnError fires when a call ultimately fails, including admission
	// denials.
	OnError(ctx context.Context, route string, err error)

	// OnRetry fires before each retry attempt.
	OnRetry(ctx context.Context, route string, attempt int, err error, delay time.Duration)
}

// NopListener is a Listener with no-op methods, intended for embedding so
// implementations can pick the events they care about.
type NopListener struct{}

func (NopListener) OnRequest(ctx context.Context, route string) {}

func (NopListener) OnResponse(ctx context.Context, route string, duration time.Duration) {}

func (NopListener) OnError(ctx context.Context, route string, err error) {}

func (NopListener) OnRetry(ctx context.Context, route string, attempt int, err error, delay time.Duration) {
}

func (e *Executor) emitRequest(ctx context.Context, route string) {
	for _, l := range e.listeners {
		invoke(func() { l.OnRequest(ctx, route) })
	}
}

func (e *Executor) emitResponse(ctx context.Context, route string, d time.Duration) {
	for _, l := range e.listeners {
		invoke(func() { l.OnResponse(ctx, route, d) })
	}
}

func (e *Executor) emitError(ctx context.Context, route string, err error) {
	for _, l := range e.listeners {
		invoke(func() { l.OnError(ctx, route, err) })
	}
}

func (e *Executor) emitRetry(ctx context.Context, route string, attempt int, err error, delay time.Duration) {
	for _, l := range e.listeners {
		invoke(func() { l.OnRetry(ctx, route, attempt, err, delay) })
	}
}

// invoke runs a listener callback, discarding panics per the fail-open
// hook policy.
func invoke(fn func()) {
	defer func() { _ = recover() }()
	fn()
}
