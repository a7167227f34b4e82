// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package api

import (
	"github.com/multipark/parkops/internal/models"
)

// Sync actions accepted by POST /api/v1/sync.
const (
	ActionSyncAll      = "sync_all"
	ActionSyncLocation = "sync_location"
)

// SyncRequest is the body of POST /api/v1/sync. City and brand are required
// for sync_location and ignored for sync_all.
type SyncRequest struct {
	Action string `json:"action" validate:"required,oneof=sync_all sync_location"`
	City   string `json:"city,omitempty" validate:"required_if=Action sync_location"`
	Brand  string `json:"brand,omitempty" validate:"required_if=Action sync_location"`
}

// SyncSummary is the aggregate block of a sync response.
type SyncSummary struct {
	TotalProcessed int     `json:"total_processed"`
	TotalSynced    int     `json:"total_synced"`
	TotalErrors    int     `json:"total_errors"`
	SuccessRate    float64 `json:"success_rate"`
}

// SyncResponse is the wire form of a completed run. Status is "success" as
// long as a complete tally exists; callers judge run health from the counts,
// not the status.
type SyncResponse struct {
	Status          string                            `json:"status"` // success|error
	Message         string                            `json:"message,omitempty"`
	Summary         *SyncSummary                      `json:"summary,omitempty"`
	DetailedResults map[string]models.PartitionResult `json:"detailed_results,omitempty"`
}

// CatalogResponse is the body of GET /api/v1/sync: the static partition
// catalog with expected volumes, for display.
type CatalogResponse struct {
	Status     string                `json:"status"`
	Partitions []models.CatalogEntry `json:"partitions"`
}

// StatusResponse is the body of GET /api/v1/sync/status.
type StatusResponse struct {
	Status     string              `json:"status"`
	Running    bool                `json:"running"`
	LastRun    *models.RunRecord   `json:"last_run,omitempty"`
	RecentRuns []*models.RunRecord `json:"recent_runs,omitempty"`
}

// summaryFromRun flattens a run aggregate into the response summary.
func summaryFromRun(res *models.SyncRunResult) *SyncSummary {
	return &SyncSummary{
		TotalProcessed: res.TotalReservations,
		TotalSynced:    res.TotalSuccess,
		TotalErrors:    res.TotalErrors,
		SuccessRate:    res.SuccessRate(),
	}
}
