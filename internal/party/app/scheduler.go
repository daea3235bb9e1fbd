package app

import (
	"context"
	"log"
	"time"
)

// DefaultTickInterval is the promotion poll cadence used when the
// configuration does not override it.
const DefaultTickInterval = 30 * time.Second

// Scheduler promotes timed recruiting parties once their instant passes. It
// shares the per-handle locks with the service, so a tick and a manual start
// against the same party serialize instead of double-promoting.
type Scheduler struct {
	service  *Service
	interval time.Duration
	clock    func() time.Time
}

// NewScheduler builds the promotion loop around an existing service.
func NewScheduler(service *Service, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Scheduler{service: service, interval: interval, clock: service.clock}
}

// Run polls for due promotions until ctx is cancelled. Each tick is
// idempotent: promoted parties leave the due set, so a repeated scan of the
// same instant changes nothing.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Printf("promotion scheduler started (interval %s)", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Printf("promotion scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs a single promotion scan at the current clock instant.
func (s *Scheduler) Tick(ctx context.Context) {
	s.service.promoteDue(ctx, s.clock())
}
