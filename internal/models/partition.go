// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package models

import "fmt"

// PartitionKey identifies one (city, brand) collection of reservation
// documents in the source store.
type PartitionKey struct {
	City  string `json:"city" koanf:"city"`
	Brand string `json:"brand" koanf:"brand"`
}

// String renders the key as "city/brand", the form used in API responses
// and log fields.
func (k PartitionKey) String() string {
	return k.City + "/" + k.Brand
}

// Validate reports whether both components are present.
func (k PartitionKey) Validate() error {
	if k.City == "" || k.Brand == "" {
		return fmt.Errorf("partition key requires both city and brand, got %q/%q", k.City, k.Brand)
	}
	return nil
}

// CatalogEntry is one partition in the hand-maintained catalog, together
// with its expected document volume. The orchestrator processes entries in
// ascending ExpectedVolume order so failures surface before the two largest
// partitions are attempted.
type CatalogEntry struct {
	City           string `json:"city" koanf:"city"`
	Brand          string `json:"brand" koanf:"brand"`
	ExpectedVolume int    `json:"expected_volume" koanf:"expected_volume"`
}

// Key returns the partition key for this entry.
func (e CatalogEntry) Key() PartitionKey {
	return PartitionKey{City: e.City, Brand: e.Brand}
}

// PartitionResult tallies one partition run. Total is Success + Errors,
// except for a fatal fetch failure, which reports Errors=1 with Total=0
// because no documents were processed.
type PartitionResult struct {
	Success int `json:"success"`
	Errors  int `json:"errors"`
	Total   int `json:"total"`
}

// Add merges another result into this one.
func (r *PartitionResult) Add(other PartitionResult) {
	r.Success += other.Success
	r.Errors += other.Errors
	r.Total += other.Total
}

// SyncRunResult aggregates a full run over the partition catalog.
// PerPartition is keyed by the "city/brand" form of the partition key.
type SyncRunResult struct {
	TotalSuccess      int                        `json:"total_success"`
	TotalErrors       int                        `json:"total_errors"`
	TotalReservations int                        `json:"total_reservations"`
	PerPartition      map[string]PartitionResult `json:"per_partition"`
}

// NewSyncRunResult returns an empty aggregate ready for accumulation.
func NewSyncRunResult() *SyncRunResult {
	return &SyncRunResult{PerPartition: make(map[string]PartitionResult)}
}

// Record stores a partition result and folds it into the totals.
func (r *SyncRunResult) Record(key PartitionKey, res PartitionResult) {
	r.PerPartition[key.String()] = res
	r.TotalSuccess += res.Success
	r.TotalErrors += res.Errors
	r.TotalReservations += res.Total
}

// SuccessRate returns the share of processed documents that synced cleanly,
// in percent. A run that processed nothing reports 100.
func (r *SyncRunResult) SuccessRate() float64 {
	if r.TotalReservations == 0 {
		return 100.0
	}
	return float64(r.TotalSuccess) / float64(r.TotalReservations) * 100.0
}
