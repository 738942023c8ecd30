// Package ratelimit provides a header-driven, per-route rate limiter for
// API connectors.
//
// Unlike a client-configured token bucket, the limiter treats the server's
// responses as the source of truth: each response reports how much capacity
// remains in the current window and when the window resets, and the limiter
// queues callers whenever the window is exhausted. Routes that the server
// reveals to share one physical limit are merged into a single bucket, and
// an explicit over-limit rejection can suspend one route or the whole
// process until the server's retry-after hint expires.
//
// # Usage
//
//	limiter := ratelimit.NewLimiter(ratelimit.Config{
//	    MaxQueueSize: 50,
//	    QueueTimeout: 10 * time.Second,
//	})
//
//	// Before each call:
//	if err := limiter.Acquire(ctx, "GET /widgets/:id"); err != nil {
//	    return err
//	}
//
//	// After each response:
//	limiter.UpdateFromResponse("GET /widgets/:id", ratelimit.Observation{
//	    Remaining: remaining,
//	    Reset:     resetAt,
//	    BucketID:  bucketID,
//	})
//
// Waiters on one bucket are granted strictly in arrival order. A waiter
// that times out consumes no capacity.
package ratelimit
