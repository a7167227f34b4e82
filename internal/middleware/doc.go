// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

// Package middleware provides HTTP middleware shared across the API surface:
// request id propagation and Prometheus request instrumentation.
package middleware
