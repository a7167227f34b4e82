// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

// Package history persists completed sync runs in BadgerDB so the dashboard
// can show when the last reconciliation happened and how it went, across
// restarts. It is a write-mostly log: the orchestrator appends one record
// per run and the status endpoint reads the newest few.
package history
