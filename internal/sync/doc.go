// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

// Package sync reconciles the hierarchical source store with the relational
// reservations table.
//
// The PartitionUnit handles one (city, brand) partition: fetch, normalize,
// upsert in fixed-size batches with pacing between batches, isolating every
// per-document failure as a counter increment. The Orchestrator walks the
// static partition catalog smallest-first, paces between partitions, and
// aggregates a run result; it owns the only mutable run state (single-flight
// flag, last-run timestamp) behind a mutex.
//
// Everything is deliberately sequential: both stores are shared, rate-limited
// resources, and the engine trades wall-clock time for predictable low-burst
// load. Cancellation is honored between batches, never mid-batch, so no write
// goes unaccounted.
package sync
