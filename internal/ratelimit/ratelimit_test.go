package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestTryConsumeCeiling(t *testing.T) {
	limiter := New(3, 24*time.Hour)

	for i := 0; i < 3; i++ {
		if !limiter.TryConsume("alice") {
			t.Fatalf("call %d should be allowed", i+1)
		}
	}

	// At the limit: every further call is denied, regardless of order
	for i := 0; i < 5; i++ {
		if limiter.TryConsume("alice") {
			t.Fatal("call past the limit should be denied")
		}
	}
}

func TestLimitIsPerOwner(t *testing.T) {
	limiter := New(1, 24*time.Hour)

	if !limiter.TryConsume("alice") {
		t.Fatal("first call for alice should be allowed")
	}
	if limiter.TryConsume("alice") {
		t.Fatal("second call for alice should be denied")
	}
	if !limiter.TryConsume("bob") {
		t.Error("bob should be unaffected by alice's window")
	}
}

func TestWindowReset(t *testing.T) {
	clock := clockwork.NewFakeClock()
	limiter := NewWithClock(2, 24*time.Hour, clock)

	limiter.TryConsume("alice")
	limiter.TryConsume("alice")
	if limiter.TryConsume("alice") {
		t.Fatal("third call should be denied")
	}

	clock.Advance(23 * time.Hour)
	if limiter.TryConsume("alice") {
		t.Fatal("window has not expired yet")
	}

	clock.Advance(2 * time.Hour)
	if !limiter.TryConsume("alice") {
		t.Error("expired window should reset the counter")
	}
}

func TestRemaining(t *testing.T) {
	clock := clockwork.NewFakeClock()
	limiter := NewWithClock(2, 24*time.Hour, clock)

	if got := limiter.Remaining("alice"); got != 2 {
		t.Errorf("Remaining() = %d, want 2", got)
	}

	limiter.TryConsume("alice")
	if got := limiter.Remaining("alice"); got != 1 {
		t.Errorf("Remaining() = %d, want 1", got)
	}

	limiter.TryConsume("alice")
	if got := limiter.Remaining("alice"); got != 0 {
		t.Errorf("Remaining() = %d, want 0", got)
	}

	clock.Advance(25 * time.Hour)
	if got := limiter.Remaining("alice"); got != 2 {
		t.Errorf("Remaining() after window expiry = %d, want 2", got)
	}
}

func TestConcurrentConsumeNeverExceedsLimit(t *testing.T) {
	const limit = 10
	limiter := New(limit, 24*time.Hour)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.TryConsume("alice") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != limit {
		t.Errorf("allowed %d concurrent consumptions, want exactly %d", allowed, limit)
	}
}
