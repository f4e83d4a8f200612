// Package cache wraps the insights_cache table with the semantics the
// orchestrator needs: expiry-aware reads, fingerprint validation, and total
// absorption of backend failures. A degraded store must look like an empty
// one, never like an error.
package cache

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/moodloop/insight-server/internal/db"
)

// Backend is the persistence surface the store needs. *db.DB implements it.
type Backend interface {
	GetCache(ownerID string) (*db.CacheRow, error)
	UpsertCache(ownerID, dataHash, insightsData string, expiresAt time.Time) error
	DeleteCache(ownerID string) error
	SweepExpiredCache(now time.Time) (int64, error)
}

// Store serves and persists computed insights per owner. After the first
// backend failure it stops issuing backend calls for the rest of the process
// lifetime (every read a miss, every write a no-op) until Reset is called;
// the scheduler retries the circuit periodically.
type Store struct {
	backend Backend
	ttl     time.Duration
	clock   clockwork.Clock

	unavailable atomic.Bool
}

// New creates a store with the given TTL for written entries.
func New(backend Backend, ttl time.Duration) *Store {
	return NewWithClock(backend, ttl, clockwork.NewRealClock())
}

// NewWithClock is New with an injected clock for tests.
func NewWithClock(backend Backend, ttl time.Duration, clock clockwork.Clock) *Store {
	return &Store{backend: backend, ttl: ttl, clock: clock}
}

// Get returns the stored payload for an owner, or "" when there is no row,
// the row has expired, or the backend is degraded.
func (s *Store) Get(ownerID string) (payload string, ok bool) {
	row := s.liveRow(ownerID)
	if row == nil {
		return "", false
	}
	return row.InsightsData, true
}

// IsValid reports whether a live row exists for the owner with exactly the
// given fingerprint.
func (s *Store) IsValid(ownerID, fingerprint string) bool {
	row := s.liveRow(ownerID)
	return row != nil && row.DataHash == fingerprint
}

// Put upserts the owner's row with a fresh expiry. Failures are logged and
// swallowed: a cache write must never fail the request that produced the
// payload.
func (s *Store) Put(ownerID, fingerprint, payload string) {
	if s.unavailable.Load() {
		return
	}
	expires := s.clock.Now().Add(s.ttl)
	if err := s.backend.UpsertCache(ownerID, fingerprint, payload, expires); err != nil {
		s.trip("put", err)
	}
}

// Invalidate drops the owner's row. Called when the owner's records change
// outside the enrichment flow so the next read regenerates.
func (s *Store) Invalidate(ownerID string) {
	if s.unavailable.Load() {
		return
	}
	if err := s.backend.DeleteCache(ownerID); err != nil {
		s.trip("invalidate", err)
	}
}

// SweepExpired deletes rows past expiry. Housekeeping only; safe to fail.
func (s *Store) SweepExpired() int64 {
	if s.unavailable.Load() {
		return 0
	}
	n, err := s.backend.SweepExpiredCache(s.clock.Now())
	if err != nil {
		s.trip("sweep", err)
		return 0
	}
	return n
}

// Available reports whether the backend circuit is closed.
func (s *Store) Available() bool {
	return !s.unavailable.Load()
}

// Reset closes the circuit so the next operation tries the backend again.
func (s *Store) Reset() {
	s.unavailable.Store(false)
}

func (s *Store) liveRow(ownerID string) *db.CacheRow {
	if s.unavailable.Load() {
		return nil
	}
	row, err := s.backend.GetCache(ownerID)
	if err != nil {
		s.trip("get", err)
		return nil
	}
	if row == nil || !s.clock.Now().Before(row.ExpiresAt) {
		return nil
	}
	return row
}

func (s *Store) trip(op string, err error) {
	log.Printf("cache: %s failed, treating store as unavailable: %v", op, err)
	s.unavailable.Store(true)
}
