// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

// Package models defines the shared data shapes of the reservation sync
// engine: partition keys and the partition catalog, loosely-typed source
// documents, the normalized reservation row written to the target store,
// and the per-partition / per-run result tallies.
package models
