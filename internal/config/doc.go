// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

// Package config loads the engine configuration from layered sources with
// clear precedence: environment variables override the optional YAML config
// file, which overrides built-in defaults. Unmapped environment variables
// are ignored so a busy container environment cannot pollute settings.
package config
