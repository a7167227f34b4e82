// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package models

import "time"

// Run kinds persisted in the run history.
const (
	RunKindFull      = "full"
	RunKindPartition = "partition"
)

// RunRecord is one completed synchronization run as persisted for the
// dashboard's status polling.
type RunRecord struct {
	ID         string        `json:"id"`
	Kind       string        `json:"kind"`
	Partition  string        `json:"partition,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Result     SyncRunResult `json:"result"`
}

// Duration is the wall-clock span of the run.
func (r RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
