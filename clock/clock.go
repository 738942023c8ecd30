// Package clock provides an injectable time source for components that
// sleep or schedule work, so tests can simulate time without wall-clock
// delay.
package clock

import (
	"context"
	"time"
)

// Clock abstracts time observation and delay.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Sleep must return ctx.Err() when the context is cancelled first.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once d has
	// elapsed.
	After(d time.Duration) <-chan time.Time

	// Sleep blocks until d has elapsed or ctx is cancelled.
	Sleep(ctx context.Context, d time.Duration) error
}

// System returns a Clock backed by the system wall clock.
func System() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
