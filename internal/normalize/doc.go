// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

// Package normalize turns loosely-typed source documents into the fixed
// reservation row shape of the target store.
//
// Normalize is a pure, total function: it performs no I/O, never fails, and
// resolves every malformed or absent field to a safe default. All "guess the
// field name" logic lives here, in one ordered alias table per target field,
// instead of being scattered across call sites.
package normalize
