package jobs

import (
	"context"
	"time"

	"github.com/vytor/cheatcodes/internal/logger"
	"github.com/vytor/cheatcodes/internal/repository"
)

// Scheduler enqueues a maintenance sweep for every profile on a fixed
// interval. The engine never schedules anything itself.
type Scheduler struct {
	profiles repository.ProfileRepository
	queue    SweepQueue
	interval time.Duration
}

func NewScheduler(profiles repository.ProfileRepository, queue SweepQueue, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{profiles: profiles, queue: queue, interval: interval}
}

// Run sweeps once immediately, then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	log := logger.FromContext(ctx).WithPrefix("scheduler")
	log.Info("sweep scheduler started, interval=%v", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if n, err := s.SweepAll(ctx); err != nil {
			log.Error("sweep round failed after %d profiles: %v", n, err)
		}
		select {
		case <-ctx.Done():
			log.Info("sweep scheduler stopped")
			return
		case <-ticker.C:
		}
	}
}

// SweepAll enqueues one sweep per profile and returns how many were queued.
func (s *Scheduler) SweepAll(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("scheduler")

	profiles, err := s.profiles.List(ctx)
	if err != nil {
		log.Error("failed to list profiles: %v", err)
		return 0, err
	}

	queued := 0
	for _, p := range profiles {
		if err := s.queue.EnqueueSweep(p.ID); err != nil {
			log.Error("failed to enqueue sweep for profile %d: %v", p.ID, err)
			return queued, err
		}
		queued++
	}
	log.Debug("queued %d sweeps", queued)
	return queued, nil
}
