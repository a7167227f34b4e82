// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

// Package api exposes the sync engine over HTTP using the Chi router.
//
// The dashboard drives the engine through one path: POST /api/v1/sync with
// {action, city, brand} starts a full or targeted run, GET on the same path
// returns the partition catalog, and GET /api/v1/sync/status reports the
// in-flight flag plus recent run history. Health probes and Prometheus
// metrics round out the surface.
package api
