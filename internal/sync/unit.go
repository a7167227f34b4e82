// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package sync

import (
	"context"
	"errors"
	"time"

	"github.com/multipark/parkops/internal/logging"
	"github.com/multipark/parkops/internal/metrics"
	"github.com/multipark/parkops/internal/models"
	"github.com/multipark/parkops/internal/normalize"
	"github.com/multipark/parkops/internal/source"
	"github.com/multipark/parkops/internal/target"
)

// SourceNotifier is the reverse-propagation hook: the engine tells the
// source side a partition has been reconciled. Reverse sync proper is out of
// scope, so the default implementation does nothing.
type SourceNotifier interface {
	PartitionSynced(ctx context.Context, key models.PartitionKey, result models.PartitionResult)
}

// NopNotifier is the default SourceNotifier.
type NopNotifier struct{}

// PartitionSynced implements SourceNotifier.
func (NopNotifier) PartitionSynced(ctx context.Context, key models.PartitionKey, result models.PartitionResult) {
}

// UnitConfig carries the two backpressure knobs and the fetch page limit.
type UnitConfig struct {
	BatchSize  int
	PageLimit  int
	BatchPacer Pacer
}

// PartitionUnit synchronizes one partition end to end.
type PartitionUnit struct {
	src        source.Fetcher
	dst        target.Store
	normalizer *normalize.Normalizer
	notifier   SourceNotifier
	batchSize  int
	pageLimit  int
	pacer      Pacer
}

// NewPartitionUnit wires a unit. A nil notifier gets the no-op default.
func NewPartitionUnit(src source.Fetcher, dst target.Store, n *normalize.Normalizer, cfg UnitConfig, notifier SourceNotifier) *PartitionUnit {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchPacer == nil {
		cfg.BatchPacer = nopPacer{}
	}
	return &PartitionUnit{
		src:        src,
		dst:        dst,
		normalizer: n,
		notifier:   notifier,
		batchSize:  cfg.BatchSize,
		pageLimit:  cfg.PageLimit,
		pacer:      cfg.BatchPacer,
	}
}

// SyncPartition reconciles one partition and returns its tally. It never
// returns an error: a missing partition is zero documents, a fetch failure
// is a single counted error, and every per-document failure increments the
// error counter without aborting the batch.
func (u *PartitionUnit) SyncPartition(ctx context.Context, key models.PartitionKey) models.PartitionResult {
	started := time.Now()
	partition := key.String()

	fetchStart := time.Now()
	docs, err := u.src.FetchPartition(ctx, key, u.pageLimit)
	metrics.SourceFetchDuration.WithLabelValues(partition).Observe(time.Since(fetchStart).Seconds())

	if err != nil {
		if errors.Is(err, source.ErrPartitionNotFound) {
			logging.Debug().Str("partition", partition).Msg("Partition absent in source, nothing to sync")
			return models.PartitionResult{}
		}
		logging.Error().Err(err).Str("partition", partition).Msg("Partition fetch failed, aborting partition")
		return models.PartitionResult{Success: 0, Errors: 1, Total: 0}
	}

	var result models.PartitionResult
	for start := 0; start < len(docs); start += u.batchSize {
		if start > 0 {
			// Cancellation and pacing both happen at the batch boundary,
			// never mid-batch, so no write goes unaccounted.
			if err := u.pacer.Pause(ctx); err != nil {
				logging.Warn().Err(err).Str("partition", partition).Int("processed", result.Total).Msg("Partition sync canceled between batches")
				break
			}
		}

		end := start + u.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]
		metrics.BatchSize.Observe(float64(len(batch)))

		for i := range batch {
			if err := u.syncDocument(ctx, batch[i], key); err != nil {
				result.Errors++
				logging.Warn().Err(err).Str("partition", partition).Str("booking_id", batch[i].ID).Msg("Document sync failed")
				continue
			}
			result.Success++
		}
	}
	result.Total = result.Success + result.Errors

	metrics.ObservePartitionSync(partition, time.Since(started), result.Success, result.Errors)
	logging.Info().
		Str("partition", partition).
		Int("success", result.Success).
		Int("errors", result.Errors).
		Int("total", result.Total).
		Dur("duration", time.Since(started)).
		Msg("Partition synced")

	u.notifier.PartitionSynced(ctx, key, result)
	return result
}

// syncDocument normalizes one document and upserts it by natural key. The
// lookup-then-branch lives here, not in the target store, so inserts and
// updates are counted separately.
func (u *PartitionUnit) syncDocument(ctx context.Context, doc models.Document, key models.PartitionKey) error {
	row := u.normalizer.Normalize(doc, key)

	existing, err := u.dst.FindByBookingID(ctx, row.BookingID)
	switch {
	case err == nil:
		// Keep the original creation stamp; only updated_at_db moves.
		row.CreatedAtDB = existing.CreatedAtDB
		if err := u.dst.Update(ctx, row.BookingID, &row); err != nil {
			return err
		}
		metrics.UpsertsTotal.WithLabelValues("update").Inc()
		return nil
	case errors.Is(err, target.ErrNotFound):
		if err := u.dst.Insert(ctx, &row); err != nil {
			return err
		}
		metrics.UpsertsTotal.WithLabelValues("insert").Inc()
		return nil
	default:
		return err
	}
}
