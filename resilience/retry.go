package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/jonwraymond/connectorkit/clock"
)

// RetryConfig configures the retry behavior.
type RetryConfig struct {
	// MaxRetries is the number of retries after the initial attempt, so
	// an operation runs at most MaxRetries+1 times.
	// Default: 3
	MaxRetries int

	// InitialDelay is the delay before the first retry.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the computed delay between retries. Server-supplied
	// retry hints are honored verbatim and not capped.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is the exponential backoff multiplier.
	// Default: 2.0
	Multiplier float64

	// JitterFactor adds uniform random jitter in [0, delay*JitterFactor]
	// to each computed delay. Zero disables jitter.
	JitterFactor float64

	// RetryIf determines if an error should trigger a retry.
	// Default: DefaultRetryIf
	RetryIf func(err error) bool

	// OnRetry is called before each retry attempt. Observability only; a
	// panic is swallowed and never affects the retry loop.
	OnRetry func(attempt int, err error, delay time.Duration)

	// OnExhausted is called once when all attempts have failed, with the
	// final error and the total number of attempts made.
	OnExhausted func(err error, attempts int)

	// Clock is the time source used for backoff sleeps.
	// Default: the system clock.
	Clock clock.Clock
}

// Retry runs an operation with bounded, sequential retry attempts.
//
// On exhaustion the caller receives the last attempt's error unchanged,
// never a synthetic wrapper.
type Retry struct {
	config RetryConfig
	clk    clock.Clock
}

// NewRetry creates a new retry handler.
func NewRetry(config RetryConfig) *Retry {
	// Apply defaults
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.RetryIf == nil {
		config.RetryIf = DefaultRetryIf
	}
	if config.Clock == nil {
		config.Clock = clock.System()
	}

	return &Retry{config: config, clk: config.Clock}
}

// Execute runs the operation with retry logic.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	return r.execute(ctx, op, nil)
}

// Do runs an operation returning a value with retry logic.
func Do[T any](ctx context.Context, r *Retry, op func(context.Context) (T, error)) (T, error) {
	var result T
	err := r.execute(ctx, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	}, nil)
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// execute is the retry loop. notify, when non-nil, observes retries in
// addition to the configured OnRetry hook.
func (r *Retry) execute(ctx context.Context, op func(context.Context) error, notify func(attempt int, err error, delay time.Duration)) error {
	attempts := r.config.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if !r.config.RetryIf(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		delay := r.delayFor(attempt, err)

		emitRetryHook(r.config.OnRetry, attempt, err, delay)
		if notify != nil {
			emitRetryHook(notify, attempt, err, delay)
		}

		if err := r.clk.Sleep(ctx, delay); err != nil {
			return err
		}
	}

	if r.config.OnExhausted != nil {
		func() {
			defer func() { _ = recover() }()
			r.config.OnExhausted(lastErr, attempts)
		}()
	}
	return lastErr
}

// delayFor computes the sleep before the next attempt: a server-supplied
// hint verbatim when present, otherwise capped exponential backoff plus
// jitter.
func (r *Retry) delayFor(attempt int, err error) time.Duration {
	if hint, ok := retryDelayHint(err); ok && hint > 0 {
		return hint
	}

	delay := r.backoff(attempt)

	if r.config.JitterFactor > 0 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		jitter := rand.Float64() * r.config.JitterFactor * float64(delay)
		delay += time.Duration(jitter)
	}
	return delay
}

// backoff returns the capped exponential delay for an attempt, before
// jitter.
func (r *Retry) backoff(attempt int) time.Duration {
	multiplier := math.Pow(r.config.Multiplier, float64(attempt-1))
	delay := time.Duration(float64(r.config.InitialDelay) * multiplier)

	if delay > r.config.MaxDelay || delay <= 0 {
		delay = r.config.MaxDelay
	}
	return delay
}

// Config returns the retry configuration.
func (r *Retry) Config() RetryConfig {
	return r.config
}

func emitRetryHook(fn func(int, error, time.Duration), attempt int, err error, delay time.Duration) {
	if fn == nil {
		return
	}
	defer func() { _ = recover() }()
	fn(attempt, err, delay)
}
