// Package ratelimit bounds provider calls per owner with a fixed daily window.
// Windows live in process memory only: a restart resets every counter, so the
// worst case after a restart is one extra day's worth of provider calls.
package ratelimit

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type window struct {
	count     int
	startedAt time.Time
}

// Limiter tracks one fixed window per owner.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	clock   clockwork.Clock
}

// New creates a limiter allowing limit consumptions per owner per period.
func New(limit int, period time.Duration) *Limiter {
	return NewWithClock(limit, period, clockwork.NewRealClock())
}

// NewWithClock is New with an injected clock for tests.
func NewWithClock(limit int, period time.Duration, clock clockwork.Clock) *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		clock:   clock,
	}
}

// TryConsume records one consumption for the owner if the window has room.
// The first call for an owner, or the first call after window expiry, starts
// a fresh window. Once the limit is reached every call returns false until
// the window rolls over.
func (l *Limiter) TryConsume(ownerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	w, ok := l.windows[ownerID]
	if !ok || now.Sub(w.startedAt) >= l.period {
		w = &window{startedAt: now}
		l.windows[ownerID] = w
	}

	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining reports how many consumptions are left in the owner's current
// window without consuming one.
func (l *Limiter) Remaining(ownerID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[ownerID]
	if !ok || l.clock.Now().Sub(w.startedAt) >= l.period {
		return l.limit
	}
	if w.count >= l.limit {
		return 0
	}
	return l.limit - w.count
}
