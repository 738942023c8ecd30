package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jonwraymond/connectorkit/clock"
)

// Config configures a Limiter.
type Config struct {
	// MaxQueueSize is the maximum number of callers queued per bucket.
	// Default: 100
	MaxQueueSize int

	// QueueTimeout is the maximum time Acquire waits for capacity.
	// Default: 30 seconds
	QueueTimeout time.Duration

	// DefaultCapacity optionally bounds a route before the server has
	// reported real limits. Zero means unknown capacity admits callers
	// immediately until the first response.
	DefaultCapacity int

	// DefaultWindow is the window length paired with DefaultCapacity.
	// Default: 1 minute when DefaultCapacity is set.
	DefaultWindow time.Duration

	// Clock is the time source. Default: the system clock.
	Clock clock.Clock
}

// Observation carries the normalized rate-limit state parsed from one
// server response. Remaining < 0 means the value was absent; a zero Reset
// means unknown.
type Observation struct {
	Remaining int
	Reset     time.Time
	BucketID  string
}

// Limiter coordinates per-route buckets plus a process-wide global limit.
//
// Buckets are created lazily per route. When the server reports that two
// routes share one bucket id, their state is merged and already-queued
// waiters migrate to the canonical bucket. The global limit is checked
// before any bucket because it dominates all routes.
type Limiter struct {
	cfg Config
	clk clock.Clock

	mu          sync.Mutex
	buckets     map[string]*Bucket
	shared      map[string]*Bucket
	globalUntil time.Time
}

// Stats is a point-in-time snapshot of limiter state.
type Stats struct {
	Buckets         int
	QueuedWaiters   int
	GloballyLimited bool
	GlobalReset     time.Time
}

// NewLimiter creates a new rate limiter.
func NewLimiter(cfg Config) *Limiter {
	// Apply defaults
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.QueueTimeout <= 0 {
		cfg.QueueTimeout = 30 * time.Second
	}
	if cfg.DefaultCapacity > 0 && cfg.DefaultWindow <= 0 {
		cfg.DefaultWindow = time.Minute
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System()
	}

	return &Limiter{
		cfg:     cfg,
		clk:     cfg.Clock,
		buckets: make(map[string]*Bucket),
		shared:  make(map[string]*Bucket),
	}
}

// Acquire grants a slot for the route, waiting up to the configured
// QueueTimeout. It returns ErrQueueFull when the route's queue is at
// capacity, ErrQueueTimeout when no slot became available in time, or
// ctx.Err() on cancellation.
func (l *Limiter) Acquire(ctx context.Context, route string) error {
	return l.AcquireTimeout(ctx, route, l.cfg.QueueTimeout)
}

// AcquireTimeout is Acquire with an explicit wait bound.
func (l *Limiter) AcquireTimeout(ctx context.Context, route string, timeout time.Duration) error {
	deadline := l.clk.Now().Add(timeout)

	if err := l.waitGlobal(ctx, deadline); err != nil {
		return err
	}

	remaining := deadline.Sub(l.clk.Now())
	if remaining <= 0 {
		return ErrQueueTimeout
	}
	return l.bucket(route).acquire(ctx, remaining)
}

// waitGlobal suspends the caller while a global limit is in effect,
// bounded by the caller's deadline. The loop re-checks because the window
// can be extended by another rejection while we sleep.
func (l *Limiter) waitGlobal(ctx context.Context, deadline time.Time) error {
	for {
		l.mu.Lock()
		until := l.globalUntil
		l.mu.Unlock()

		now := l.clk.Now()
		if !until.After(now) {
			return nil
		}
		if !deadline.After(now) {
			return ErrQueueTimeout
		}

		wait := until.Sub(now)
		if budget := deadline.Sub(now); wait > budget {
			wait = budget
		}
		if err := l.clk.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// UpdateFromResponse feeds the rate-limit state from a server response
// back into the limiter. Server values always overwrite local state.
//
// When obs carries a bucket id already known from another route, the two
// routes are reconciled onto one canonical bucket and any waiters queued
// on the abandoned bucket migrate without loss.
func (l *Limiter) UpdateFromResponse(route string, obs Observation) {
	l.mu.Lock()
	b := l.bucketLocked(route)

	if obs.BucketID != "" {
		canonical, ok := l.shared[obs.BucketID]
		if ok && canonical != b {
			l.buckets[route] = canonical
			l.mu.Unlock()
			migrate(b, canonical)
			canonical.update(obs)
			return
		}
		l.shared[obs.BucketID] = b
		l.mu.Unlock()
		b.mu.Lock()
		b.serverID = obs.BucketID
		b.mu.Unlock()
		b.update(obs)
		return
	}

	l.mu.Unlock()
	b.update(obs)
}

// HandleExplicitLimit records an explicit over-limit rejection from the
// server, suspending either one route's bucket or, when global is true,
// every route until retryAfter has elapsed.
func (l *Limiter) HandleExplicitLimit(route string, retryAfter time.Duration, global bool) {
	if global {
		l.mu.Lock()
		until := l.clk.Now().Add(retryAfter)
		if until.After(l.globalUntil) {
			l.globalUntil = until
		}
		l.mu.Unlock()
		return
	}
	l.bucket(route).forceLimit(retryAfter)
}

// WaitTime reports how long a caller would wait before a slot for the
// route could be granted; zero when one is available now.
func (l *Limiter) WaitTime(route string) time.Duration {
	now := l.clk.Now()

	l.mu.Lock()
	globalWait := l.globalUntil.Sub(now)
	l.mu.Unlock()
	if globalWait < 0 {
		globalWait = 0
	}

	bucketWait := l.bucket(route).waitTime(now)
	if globalWait > bucketWait {
		return globalWait
	}
	return bucketWait
}

// GloballyLimited reports whether a global limit is currently in effect.
func (l *Limiter) GloballyLimited() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.globalUntil.After(l.clk.Now())
}

// Stats returns a snapshot of limiter state.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	buckets := make([]*Bucket, 0, len(l.buckets))
	seen := make(map[*Bucket]bool, len(l.buckets))
	for _, b := range l.buckets {
		if !seen[b] {
			seen[b] = true
			buckets = append(buckets, b)
		}
	}
	s := Stats{
		Buckets:         len(buckets),
		GloballyLimited: l.globalUntil.After(l.clk.Now()),
		GlobalReset:     l.globalUntil,
	}
	l.mu.Unlock()

	for _, b := range buckets {
		s.QueuedWaiters += b.QueueLen()
	}
	return s
}

// Reset clears all buckets and global state. Waiters queued on discarded
// buckets still resolve through their old drain loops.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets = make(map[string]*Bucket)
	l.shared = make(map[string]*Bucket)
	l.globalUntil = time.Time{}
}

// bucket returns the canonical bucket for a route, creating it lazily.
func (l *Limiter) bucket(route string) *Bucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bucketLocked(route)
}

func (l *Limiter) bucketLocked(route string) *Bucket {
	if b, ok := l.buckets[route]; ok {
		return b
	}
	b := newBucket(route, l.cfg)
	l.buckets[route] = b
	return b
}

// migrate moves src's queued waiters onto dst, preserving each queue's
// arrival order. src is left empty and its drain loop exits on its own.
func migrate(src, dst *Bucket) {
	src.mu.Lock()
	moved := src.queue
	src.queue = nil
	src.mu.Unlock()
	src.kick()

	if len(moved) == 0 {
		return
	}

	for _, w := range moved {
		w.owner.Store(dst)
	}

	dst.mu.Lock()
	dst.queue = append(dst.queue, moved...)
	start := !dst.draining
	if start {
		dst.draining = true
	}
	dst.mu.Unlock()

	if start {
		go dst.drain()
	}
	dst.kick()
}

// RouteKey builds a bucket key from an HTTP method and path, collapsing
// variable segments (numeric IDs, long hex/UUID-looking tokens) so that
// per-resource paths share one bucket.
func RouteKey(method, path string) string {
	segs := strings.Split(path, "/")
	for i, seg := range segs {
		if isVariableSegment(seg) {
			segs[i] = ":id"
		}
	}
	return method + " " + strings.Join(segs, "/")
}

func isVariableSegment(seg string) bool {
	if seg == "" {
		return false
	}
	digits := 0
	hex := 0
	for _, r := range seg {
		switch {
		case r >= '0' && r <= '9':
			digits++
			hex++
		case r >= 'a' && r <= 'f', r >= 'A' && r <= 'F', r == '-':
			hex++
		}
	}
	if digits == len(seg) {
		return true
	}
	// UUID-ish or snowflake-ish tokens
	return len(seg) >= 16 && hex == len(seg) && digits > 0
}
