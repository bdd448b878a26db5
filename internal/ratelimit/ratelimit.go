// Package ratelimit provides a per-client fixed-window rate limiter.
package ratelimit

import (
	"math/rand"
	"sync"
	"time"
)

// Defaults for the assist endpoint.
const (
	DefaultCeiling = 10
	DefaultWindow  = 60 * time.Second

	// sweepOneIn is the denominator of the opportunistic cleanup
	// probability: roughly one in ten calls purges expired entries.
	sweepOneIn = 10
)

// Verdict is the outcome of a rate-limit check.
type Verdict struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

// entry tracks one client's count within the current window.
type entry struct {
	count   int
	resetAt time.Time
}

// Limiter tracks request counts per client key over a fixed window.
// Expired entries are purged opportunistically on a fraction of calls, so
// memory stays bounded without a background task.
type Limiter struct {
	mu      sync.Mutex
	ceiling int
	window  time.Duration
	entries map[string]*entry

	now func() time.Time // overridable in tests
}

// New creates a limiter allowing ceiling requests per window per client.
func New(ceiling int, window time.Duration) *Limiter {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		ceiling: ceiling,
		window:  window,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Check records one request from clientID and reports whether it is allowed,
// how many requests remain in the window, and the time until the window
// resets. Safe for concurrent use.
func (l *Limiter) Check(clientID string) Verdict {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if rand.Intn(sweepOneIn) == 0 {
		l.sweepLocked(now)
	}

	e, ok := l.entries[clientID]
	if !ok || !now.Before(e.resetAt) {
		l.entries[clientID] = &entry{count: 1, resetAt: now.Add(l.window)}
		return Verdict{Allowed: true, Remaining: l.ceiling - 1, ResetIn: l.window}
	}

	if e.count >= l.ceiling {
		return Verdict{Allowed: false, Remaining: 0, ResetIn: e.resetAt.Sub(now)}
	}

	e.count++
	return Verdict{
		Allowed:   true,
		Remaining: l.ceiling - e.count,
		ResetIn:   e.resetAt.Sub(now),
	}
}

// Len returns the number of tracked clients, expired or not.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// sweepLocked removes all entries whose window has elapsed.
// Caller must hold l.mu.
func (l *Limiter) sweepLocked(now time.Time) {
	for key, e := range l.entries {
		if !now.Before(e.resetAt) {
			delete(l.entries, key)
		}
	}
}
