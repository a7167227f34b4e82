// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package services

import (
	"context"
	"time"

	"github.com/multipark/parkops/internal/logging"
	syncengine "github.com/multipark/parkops/internal/sync"
)

// Scheduler is the orchestrator surface the scheduler service needs.
// Satisfied by *sync.Orchestrator.
type Scheduler interface {
	ScheduleIfDue(ctx context.Context, interval time.Duration) syncengine.ScheduleResult
}

// SchedulerService ticks the orchestrator's ScheduleIfDue entry point. The
// orchestrator itself decides whether a run is due; this service only
// provides the heartbeat, so a tick period much shorter than the sync
// interval is fine.
type SchedulerService struct {
	scheduler Scheduler
	interval  time.Duration
	tick      time.Duration
	name      string
}

// NewSchedulerService creates the auto-sync heartbeat. interval is the
// minimum spacing between runs; the tick period is derived from it.
func NewSchedulerService(scheduler Scheduler, interval time.Duration) *SchedulerService {
	tick := interval / 10
	if tick < time.Second {
		tick = time.Second
	}
	if tick > time.Minute {
		tick = time.Minute
	}
	return &SchedulerService{
		scheduler: scheduler,
		interval:  interval,
		tick:      tick,
		name:      "sync-scheduler",
	}
}

// Serve implements suture.Service. It returns only when the context is
// canceled; a failed run is the orchestrator's concern, not a service crash.
func (s *SchedulerService) Serve(ctx context.Context) error {
	logging.Info().
		Dur("interval", s.interval).
		Dur("tick", s.tick).
		Msg("Auto-sync scheduler started")

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Auto-sync scheduler stopping")
			return ctx.Err()
		case <-ticker.C:
			res := s.scheduler.ScheduleIfDue(ctx, s.interval)
			if res.Status == "completed" && res.Result != nil {
				logging.Info().
					Int("total", res.Result.TotalReservations).
					Int("errors", res.Result.TotalErrors).
					Msg("Scheduled sync run completed")
			}
		}
	}
}

// String implements fmt.Stringer for suture's log messages.
func (s *SchedulerService) String() string {
	return s.name
}
