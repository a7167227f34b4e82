// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

// Package supervisor builds the suture supervision tree that keeps the
// engine's long-running pieces alive: the HTTP server and the auto-sync
// scheduler. The two live under separate child supervisors so a crashing
// scheduler cannot take the API down with it.
package supervisor
