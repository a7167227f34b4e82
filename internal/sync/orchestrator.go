// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package sync

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/multipark/parkops/internal/logging"
	"github.com/multipark/parkops/internal/metrics"
	"github.com/multipark/parkops/internal/models"
)

// ErrRunInProgress is returned when a run is requested while another is in
// flight. It is the single-flight guard's answer, not an exception.
var ErrRunInProgress = errors.New("sync run already in progress")

// ErrUnknownPartition is returned by SyncOne for keys outside the catalog.
var ErrUnknownPartition = errors.New("partition not in catalog")

// PartitionSyncer is the partition-level contract the orchestrator drives.
// Implemented by *PartitionUnit.
type PartitionSyncer interface {
	SyncPartition(ctx context.Context, key models.PartitionKey) models.PartitionResult
}

// RunRecorder persists completed runs for the dashboard's status polling.
// Implemented by the history store; recording failures are logged, never
// fatal to the run that produced them.
type RunRecorder interface {
	SaveRun(ctx context.Context, rec *models.RunRecord) error
}

// ScheduleResult is the outcome of a ScheduleIfDue invocation.
type ScheduleResult struct {
	Status string                `json:"status"` // skipped|completed
	Reason string                `json:"reason,omitempty"`
	Result *models.SyncRunResult `json:"result,omitempty"`
}

// Schedule skip reasons.
const (
	SkipRunInProgress      = "run_in_progress"
	SkipIntervalNotElapsed = "interval_not_elapsed"
)

// Orchestrator walks the partition catalog and owns the engine's only
// mutable state: the in-flight flag and the last completed run, guarded by
// mu because multiple HTTP requests may reach it concurrently.
type Orchestrator struct {
	unit           PartitionSyncer
	catalog        []models.CatalogEntry
	partitionPacer Pacer
	recorder       RunRecorder
	clock          func() time.Time

	mu        sync.Mutex
	running   bool
	lastRun   time.Time
	lastKnown *models.RunRecord
}

// NewOrchestrator builds an orchestrator over the given catalog. The catalog
// is sorted by expected volume ascending so the cheap partitions surface
// failures before the two large Lisbon ones dominate the run. A nil recorder
// disables history.
func NewOrchestrator(unit PartitionSyncer, catalog []models.CatalogEntry, partitionPacer Pacer, recorder RunRecorder) *Orchestrator {
	sorted := make([]models.CatalogEntry, len(catalog))
	copy(sorted, catalog)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ExpectedVolume < sorted[j].ExpectedVolume
	})

	if partitionPacer == nil {
		partitionPacer = nopPacer{}
	}
	return &Orchestrator{
		unit:           unit,
		catalog:        sorted,
		partitionPacer: partitionPacer,
		recorder:       recorder,
		clock:          time.Now,
	}
}

// Catalog returns the orchestrator's partition catalog in processing order.
func (o *Orchestrator) Catalog() []models.CatalogEntry {
	out := make([]models.CatalogEntry, len(o.catalog))
	copy(out, o.catalog)
	return out
}

// SyncAll runs every cataloged partition in order and aggregates the
// result. Only one run may be in flight; a second caller gets
// ErrRunInProgress immediately.
func (o *Orchestrator) SyncAll(ctx context.Context) (*models.SyncRunResult, error) {
	if !o.beginRun() {
		return nil, ErrRunInProgress
	}
	started := o.clock()
	defer o.endRun()

	logging.Info().Int("partitions", len(o.catalog)).Msg("Starting full sync run")

	result := models.NewSyncRunResult()
	for i, entry := range o.catalog {
		if i > 0 {
			// The inter-partition pause is deliberately longer than the
			// batch pause: it lets both stores drain between heavy bursts.
			if err := o.partitionPacer.Pause(ctx); err != nil {
				logging.Warn().Err(err).Msg("Full sync canceled between partitions")
				break
			}
		}
		key := entry.Key()
		result.Record(key, o.syncPartitionGuarded(ctx, key))
	}

	o.finishRun(ctx, models.RunKindFull, "", started, result)

	logging.Info().
		Int("success", result.TotalSuccess).
		Int("errors", result.TotalErrors).
		Int("total", result.TotalReservations).
		Dur("duration", o.clock().Sub(started)).
		Msg("Full sync run completed")
	return result, nil
}

// SyncOne runs a single partition. Operator re-runs share the single-flight
// guard so they cannot overlap a full run.
func (o *Orchestrator) SyncOne(ctx context.Context, key models.PartitionKey) (models.PartitionResult, error) {
	if err := key.Validate(); err != nil {
		return models.PartitionResult{}, err
	}
	if !o.inCatalog(key) {
		return models.PartitionResult{}, ErrUnknownPartition
	}
	if !o.beginRun() {
		return models.PartitionResult{}, ErrRunInProgress
	}
	started := o.clock()
	defer o.endRun()

	res := o.syncPartitionGuarded(ctx, key)

	runResult := models.NewSyncRunResult()
	runResult.Record(key, res)
	o.finishRun(ctx, models.RunKindPartition, key.String(), started, runResult)
	return res, nil
}

// ScheduleIfDue starts a full run unless one is in flight or the interval
// has not elapsed since the last completed run. This is the auto-scheduler's
// entry point and the only place run timing matters.
func (o *Orchestrator) ScheduleIfDue(ctx context.Context, interval time.Duration) ScheduleResult {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		metrics.ScheduleSkips.WithLabelValues(SkipRunInProgress).Inc()
		return ScheduleResult{Status: "skipped", Reason: SkipRunInProgress}
	}
	if !o.lastRun.IsZero() && o.clock().Sub(o.lastRun) < interval {
		o.mu.Unlock()
		metrics.ScheduleSkips.WithLabelValues(SkipIntervalNotElapsed).Inc()
		return ScheduleResult{Status: "skipped", Reason: SkipIntervalNotElapsed}
	}
	o.mu.Unlock()

	result, err := o.SyncAll(ctx)
	if err != nil {
		// Lost the race to another caller between the check and the run.
		metrics.ScheduleSkips.WithLabelValues(SkipRunInProgress).Inc()
		return ScheduleResult{Status: "skipped", Reason: SkipRunInProgress}
	}
	return ScheduleResult{Status: "completed", Result: result}
}

// Status reports whether a run is in flight and the last completed run, if
// any.
func (o *Orchestrator) Status() (bool, *models.RunRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running, o.lastKnown
}

// syncPartitionGuarded isolates a partition pass: a panic anywhere below
// becomes a zero-success result and the run moves on to the next partition.
func (o *Orchestrator) syncPartitionGuarded(ctx context.Context, key models.PartitionKey) (result models.PartitionResult) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error().Interface("panic", r).Str("partition", key.String()).Msg("Partition sync panicked")
			result = models.PartitionResult{Success: 0, Errors: 1, Total: 0}
		}
	}()
	return o.unit.SyncPartition(ctx, key)
}

func (o *Orchestrator) inCatalog(key models.PartitionKey) bool {
	for _, entry := range o.catalog {
		if entry.Key() == key {
			return true
		}
	}
	return false
}

func (o *Orchestrator) beginRun() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return false
	}
	o.running = true
	return true
}

func (o *Orchestrator) endRun() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.running = false
}

// finishRun stamps the last-run state and persists the record. History
// failures are logged and dropped; the run result stands on its own.
func (o *Orchestrator) finishRun(ctx context.Context, kind, partition string, started time.Time, result *models.SyncRunResult) {
	finished := o.clock()

	rec := &models.RunRecord{
		ID:         uuid.NewString(),
		Kind:       kind,
		Partition:  partition,
		StartedAt:  started,
		FinishedAt: finished,
		Result:     *result,
	}

	o.mu.Lock()
	o.lastRun = finished
	o.lastKnown = rec
	o.mu.Unlock()

	outcome := "clean"
	if result.TotalErrors > 0 {
		outcome = "with_errors"
	}
	metrics.SyncRunsTotal.WithLabelValues(kind, outcome).Inc()
	if kind == models.RunKindFull {
		metrics.SyncRunDuration.Observe(finished.Sub(started).Seconds())
	}

	if o.recorder != nil {
		if err := o.recorder.SaveRun(ctx, rec); err != nil {
			logging.Warn().Err(err).Str("run_id", rec.ID).Msg("Failed to persist run record")
		}
	}
}
