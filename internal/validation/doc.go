// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

// Package validation provides struct validation using go-playground/validator
// v10 behind a thread-safe singleton instance. Handlers validate decoded
// request bodies with ValidateStruct and translate failures into the API's
// error envelope.
package validation
