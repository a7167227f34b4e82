// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package api

import (
	"net/http"
	"time"
)

// healthResponse is the body of the health endpoints.
type healthResponse struct {
	Status string            `json:"status"` // alive|ready|not_ready
	Uptime float64           `json:"uptime_seconds"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HandleHealthLive handles GET /health/live. It answers 200 whenever the
// process is up, regardless of dependencies.
func (h *Handler) HandleHealthLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "alive",
		Uptime: time.Since(h.startTime).Seconds(),
	})
}

// HandleHealthReady handles GET /health/ready. It answers 200 only when
// every registered dependency check passes, 503 otherwise.
func (h *Handler) HandleHealthReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(h.readiness))
	ready := true

	for _, probe := range h.readiness {
		if err := probe.Check(r.Context()); err != nil {
			checks[probe.Name] = err.Error()
			ready = false
			continue
		}
		checks[probe.Name] = "ok"
	}

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	writeJSON(w, statusCode, healthResponse{
		Status: status,
		Uptime: time.Since(h.startTime).Seconds(),
		Checks: checks,
	})
}
