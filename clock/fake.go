package clock

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced Clock for deterministic tests.
//
// Sleepers block until Advance moves the fake time past their deadline.
// BlockUntil lets a test wait for a known number of sleepers before
// advancing, which avoids racing against goroutines that have not parked
// yet.
type Fake struct {
	mu       sync.Mutex
	now      time.Time
	sleepers []*fakeSleeper
	watchers []chan struct{}
}

type fakeSleeper struct {
	deadline time.Time
	ch       chan time.Time
}

// NewFake creates a fake clock starting at the given time.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the current fake time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// After returns a channel that fires once the fake time has been advanced
// past d from now.
func (f *Fake) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := &fakeSleeper{
		deadline: f.now.Add(d),
		ch:       make(chan time.Time, 1),
	}

	if d <= 0 {
		s.ch <- f.now
		return s.ch
	}

	f.sleepers = append(f.sleepers, s)
	f.notifyLocked()
	return s.ch
}

// Sleep blocks until the fake time has been advanced past d or ctx is
// cancelled.
func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-f.After(d):
		return nil
	}
}

// Advance moves the fake time forward and releases every sleeper whose
// deadline has been reached.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = f.now.Add(d)

	// Release in deadline order so earlier sleepers observe time first.
	sort.SliceStable(f.sleepers, func(i, j int) bool {
		return f.sleepers[i].deadline.Before(f.sleepers[j].deadline)
	})

	remaining := f.sleepers[:0]
	for _, s := range f.sleepers {
		if !s.deadline.After(f.now) {
			s.ch <- f.now
		} else {
			remaining = append(remaining, s)
		}
	}
	f.sleepers = remaining
}

// Sleepers returns the number of goroutines currently parked on the clock.
func (f *Fake) Sleepers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sleepers)
}

// BlockUntil blocks until at least n sleepers are parked on the clock.
func (f *Fake) BlockUntil(n int) {
	for {
		f.mu.Lock()
		if len(f.sleepers) >= n {
			f.mu.Unlock()
			return
		}
		ch := make(chan struct{})
		f.watchers = append(f.watchers, ch)
		f.mu.Unlock()
		<-ch
	}
}

func (f *Fake) notifyLocked() {
	for _, ch := range f.watchers {
		close(ch)
	}
	f.watchers = nil
}
