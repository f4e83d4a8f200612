// Package scheduler runs the housekeeping jobs: sweeping expired cache rows
// and re-closing the cache circuit so a recovered store gets used again.
// Everything here is best-effort; a failed sweep is logged, never fatal.
package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/moodloop/insight-server/internal/cache"
)

// Scheduler manages scheduled jobs
type Scheduler struct {
	scheduler gocron.Scheduler
	cache     *cache.Store
}

// New creates a new scheduler
func New(cacheStore *cache.Store) (*Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		scheduler: s,
		cache:     cacheStore,
	}, nil
}

// Start starts the scheduler and registers all jobs
func (s *Scheduler) Start() error {
	// Sweep expired cache rows every hour
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(s.sweepExpired),
		gocron.WithName("sweep-expired-cache"),
	)
	if err != nil {
		return err
	}

	// Retry the cache circuit every hour so a recovered backend is picked
	// up without a restart
	_, err = s.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(s.resetCircuit),
		gocron.WithName("reset-cache-circuit"),
	)
	if err != nil {
		return err
	}

	s.scheduler.Start()
	log.Println("Scheduler started")
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

func (s *Scheduler) sweepExpired() {
	if n := s.cache.SweepExpired(); n > 0 {
		log.Printf("Swept %d expired cache rows", n)
	}
}

func (s *Scheduler) resetCircuit() {
	if !s.cache.Available() {
		log.Println("Cache circuit open, resetting for retry")
		s.cache.Reset()
	}
}
