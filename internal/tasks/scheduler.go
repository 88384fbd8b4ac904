package tasks

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Scheduler runs the reset sweep on a fixed interval.
type Scheduler struct {
	resetter *Resetter
	interval time.Duration
}

// NewScheduler returns nil when interval is not positive.
func NewScheduler(resetter *Resetter, interval time.Duration) *Scheduler {
	if resetter == nil || interval <= 0 {
		return nil
	}
	return &Scheduler{resetter: resetter, interval: interval}
}

// Run sweeps once immediately, then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if s == nil {
		return nil
	}
	log.Infof("task reset scheduler started (interval=%s)", s.interval)
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	count, err := s.resetter.ResetEligibleTasks(ctx)
	if err != nil {
		log.WithError(err).WithField("reset", count).Warn("task reset: sweep failed")
		return
	}
	if count > 0 {
		log.WithField("reset", count).Info("task reset: sweep completed")
	}
}
