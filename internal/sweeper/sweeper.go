// Package sweeper periodically rebalances room assignments for every
// active room category, picking up changes that arrived outside the API
// (manual database edits, missed triggers).
package sweeper

import (
	"context"
	"errors"
	"log"
	"time"

	"cat-hotel-backend/config"
	"cat-hotel-backend/internal/engine"
	"cat-hotel-backend/internal/store"
)

// Service drives the periodic rebalance sweep.
type Service struct {
	cfg   *config.Config
	store store.Store
}

// NewService creates and initializes a new sweeper service.
func NewService(cfg *config.Config, store store.Store) *Service {
	return &Service{cfg: cfg, store: store}
}

// Run starts the sweep loop. It returns when the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Sweep.Enabled {
		log.Println("Sweeper is disabled. Not starting.")
		return
	}
	log.Println("Starting sweeper service...")

	s.SweepOnce(ctx)

	timer := time.NewTimer(s.cfg.Sweep.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Sweeper service shutting down.")
			return
		case <-timer.C:
			s.SweepOnce(ctx)
			timer.Reset(s.cfg.Sweep.Interval)
		}
	}
}

// SweepOnce rebalances every active room category sequentially. Categories
// are independent, but rebalances within one category must not overlap, so
// no parallelism here.
func (s *Service) SweepOnce(ctx context.Context) {
	log.Println("Executing sweep cycle...")

	roomTypeIDs, err := s.store.ListActiveRoomTypeIDs(ctx)
	if err != nil {
		log.Printf("Error listing room types for sweep: %v", err)
		return
	}

	eng := engine.New(s.store)
	for _, id := range roomTypeIDs {
		if ctx.Err() != nil {
			return
		}
		if err := eng.Rebalance(ctx, id); err != nil {
			// An infeasible category is an operational signal, not a reason
			// to stop sweeping the others.
			var capacity *engine.CapacityExceededError
			var noRoom *engine.NoRoomAvailableError
			if errors.As(err, &capacity) {
				log.Printf("Sweep: room type %d is over capacity, needs more rooms or smaller parties: %v", id, err)
				continue
			}
			if errors.As(err, &noRoom) {
				log.Printf("Sweep: room type %d cannot place every reservation right now: %v", id, err)
				continue
			}
			log.Printf("Sweep: rebalance of room type %d failed: %v", id, err)
		}
	}

	log.Println("Sweep cycle finished.")
}
