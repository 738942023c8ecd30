package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonwraymond/connectorkit/clock"
)

// waiter is one caller suspended in a bucket's queue. It is owned by
// exactly one bucket at a time and is never reused once resolved.
type waiter struct {
	enqueuedAt time.Time
	deadline   time.Time
	done       chan error

	// resolved is set exactly once, by whichever of the drain loop or the
	// caller's timeout wins.
	resolved atomic.Bool

	// owner tracks the bucket currently holding this waiter; it changes
	// when a queue is migrated to a shared bucket.
	owner atomic.Pointer[Bucket]
}

// Bucket holds the rate-limit state for one route (or for a group of
// routes the server reports under one bucket id).
//
// Capacity is unknown until the first server response establishes it; an
// unknown bucket admits every caller immediately.
type Bucket struct {
	clk clock.Clock

	mu         sync.Mutex
	route      string
	serverID   string
	limited    bool
	remaining  int
	resetAt    time.Time
	queue      []*waiter
	draining   bool
	maxQueue   int
	defaultCap int
	window     time.Duration

	// wake interrupts a sleeping drain loop after a header update or an
	// explicit limit changes the bucket's schedule.
	wake chan struct{}
}

func newBucket(route string, cfg Config) *Bucket {
	return &Bucket{
		clk:        cfg.Clock,
		route:      route,
		maxQueue:   cfg.MaxQueueSize,
		defaultCap: cfg.DefaultCapacity,
		window:     cfg.DefaultWindow,
		wake:       make(chan struct{}, 1),
	}
}

// Route returns the route key this bucket was created for.
func (b *Bucket) Route() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.route
}

// Remaining reports the capacity left in the current window. The second
// return is false while the capacity is still unknown.
func (b *Bucket) Remaining() (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining, b.limited
}

// ResetAt returns when the current window resets. Zero means unknown.
func (b *Bucket) ResetAt() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resetAt
}

// QueueLen returns the number of callers currently queued.
func (b *Bucket) QueueLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// acquire grants a slot, or suspends the caller until one becomes
// available, the timeout elapses, or ctx is cancelled.
func (b *Bucket) acquire(ctx context.Context, timeout time.Duration) error {
	b.mu.Lock()
	now := b.clk.Now()

	// Fast path: nobody queued and capacity available.
	if len(b.queue) == 0 && b.tryReserveLocked(now) {
		b.mu.Unlock()
		return nil
	}

	if len(b.queue) >= b.maxQueue {
		b.mu.Unlock()
		return ErrQueueFull
	}

	w := &waiter{
		enqueuedAt: now,
		deadline:   now.Add(timeout),
		done:       make(chan error, 1),
	}
	w.owner.Store(b)
	b.queue = append(b.queue, w)

	if !b.draining {
		b.draining = true
		go b.drain()
	}
	b.mu.Unlock()

	select {
	case err := <-w.done:
		return err
	case <-b.clk.After(timeout):
		return w.abandon(ErrQueueTimeout)
	case <-ctx.Done():
		return w.abandon(ctx.Err())
	}
}

// tryReserveLocked consumes one slot if the bucket currently has capacity.
// Callers must hold b.mu.
func (b *Bucket) tryReserveLocked(now time.Time) bool {
	if !b.limited {
		if b.defaultCap > 0 {
			// No server data yet; start a window from the configured
			// client-side default.
			b.limited = true
			b.remaining = b.defaultCap - 1
			b.resetAt = now.Add(b.window)
		}
		return true
	}

	if b.remaining > 0 {
		b.remaining--
		return true
	}

	if !b.resetAt.After(now) {
		// Window elapsed with no fresh server data. Re-arm the default
		// window if one is configured, otherwise capacity is unknown
		// again until the next response.
		if b.defaultCap > 0 {
			b.remaining = b.defaultCap - 1
			b.resetAt = now.Add(b.window)
		} else {
			b.limited = false
		}
		return true
	}

	return false
}

// unreserveLocked returns a slot consumed for a waiter that turned out to
// have been resolved already. Callers must hold b.mu.
func (b *Bucket) unreserveLocked() {
	if b.limited {
		b.remaining++
	}
}

// drain grants queued waiters in strict FIFO order, sleeping across window
// resets. Exactly one drain loop runs per bucket at a time.
func (b *Bucket) drain() {
	for {
		b.mu.Lock()

		// Drop entries already resolved by timeout or cancellation.
		for len(b.queue) > 0 && b.queue[0].resolved.Load() {
			b.queue = b.queue[1:]
		}

		if len(b.queue) == 0 {
			b.draining = false
			b.mu.Unlock()
			return
		}

		now := b.clk.Now()
		w := b.queue[0]

		if w.deadline.Before(now) {
			// Expired while queued; reject without consuming capacity.
			b.queue = b.queue[1:]
			if w.resolved.CompareAndSwap(false, true) {
				w.done <- ErrQueueTimeout
			}
			b.mu.Unlock()
			continue
		}

		if b.tryReserveLocked(now) {
			b.queue = b.queue[1:]
			if w.resolved.CompareAndSwap(false, true) {
				w.done <- nil
			} else {
				b.unreserveLocked()
			}
			b.mu.Unlock()
			continue
		}

		wait := b.resetAt.Sub(now)
		b.mu.Unlock()

		select {
		case <-b.clk.After(wait):
		case <-b.wake:
		}
	}
}

// update overwrites the bucket's window state with authoritative server
// values. Last write wins; values are never merged.
func (b *Bucket) update(obs Observation) {
	b.mu.Lock()
	if obs.Remaining >= 0 {
		b.limited = true
		b.remaining = obs.Remaining
	}
	if !obs.Reset.IsZero() {
		b.resetAt = obs.Reset
	}
	b.mu.Unlock()
	b.kick()
}

// forceLimit empties the bucket until now+retryAfter, used when the server
// explicitly rejected a call.
func (b *Bucket) forceLimit(retryAfter time.Duration) {
	b.mu.Lock()
	b.limited = true
	b.remaining = 0
	b.resetAt = b.clk.Now().Add(retryAfter)
	b.mu.Unlock()
	b.kick()
}

// waitTime reports how long until a slot could be granted; zero when one
// is available now.
func (b *Bucket) waitTime(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.limited || b.remaining > 0 || !b.resetAt.After(now) {
		return 0
	}
	return b.resetAt.Sub(now)
}

// kick wakes a sleeping drain loop so it re-reads the bucket schedule.
func (b *Bucket) kick() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// removeWaiter drops a resolved waiter from the queue if still present.
func (b *Bucket) removeWaiter(w *waiter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, q := range b.queue {
		if q == w {
			b.queue = append(b.queue[:i], b.queue[i+1:]...)
			return
		}
	}
}

// abandon resolves the waiter with err unless a grant was decided first,
// in which case the grant is honored.
func (w *waiter) abandon(err error) error {
	if !w.resolved.CompareAndSwap(false, true) {
		return <-w.done
	}
	if b := w.owner.Load(); b != nil {
		b.removeWaiter(w)
	}
	return err
}
