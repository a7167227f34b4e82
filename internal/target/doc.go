// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

// Package target persists normalized reservation rows in the relational
// store used by all reporting and dashboard pages.
//
// The connector exposes point lookup, insert, and update keyed by the
// natural booking_id; the insert-or-update decision deliberately lives one
// level up, in the sync unit, where the two branches are counted separately.
// Write failures come back as structured WriteError values carrying the
// offending key - they are counted by the caller, never process-fatal.
//
// Identifier-like columns are unbounded TEXT: the system this replaces lost
// rows to undersized fixed-width columns.
package target
