// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

// Package source reads reservation documents from the hierarchical document
// store. A partition key resolves to a three-level path - city database,
// brand collection, documents - and a fetch materializes the partition's
// documents up to a caller-supplied page limit.
//
// The connector needs the administrative credential that bypasses per-user
// access rules; without it every fetch fails with ErrConnectorUnavailable,
// which callers treat as fatal for the whole partition run. A missing
// (city, brand) path is not an error: many combinations legitimately do not
// exist and report ErrPartitionNotFound, which callers treat as an empty
// partition.
package source
