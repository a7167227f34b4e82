// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/multipark/parkops/internal/logging"
)

// writeJSON writes a JSON response with proper headers.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// respondError writes an error-status sync response. The wire shape matches
// the success case so the dashboard parses one format.
func respondError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, SyncResponse{
		Status:  "error",
		Message: message,
	})
}
