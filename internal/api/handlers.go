// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/multipark/parkops/internal/logging"
	"github.com/multipark/parkops/internal/models"
	syncengine "github.com/multipark/parkops/internal/sync"
	"github.com/multipark/parkops/internal/validation"
)

// Engine is the orchestrator surface the handlers need. Implemented by
// sync.Orchestrator.
type Engine interface {
	SyncAll(ctx context.Context) (*models.SyncRunResult, error)
	SyncOne(ctx context.Context, key models.PartitionKey) (models.PartitionResult, error)
	Catalog() []models.CatalogEntry
	Status() (bool, *models.RunRecord)
}

// HistoryReader reads recent run records for the status endpoint. Nil when
// history is disabled.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]*models.RunRecord, error)
}

// ReadyCheck probes one dependency for the readiness endpoint.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler holds the HTTP handlers for the sync engine.
type Handler struct {
	engine    Engine
	history   HistoryReader
	readiness []ReadyCheck
	startTime time.Time
}

// NewHandler creates the API handler set.
func NewHandler(engine Engine, history HistoryReader, readiness []ReadyCheck) *Handler {
	return &Handler{
		engine:    engine,
		history:   history,
		readiness: readiness,
		startTime: time.Now(),
	}
}

// HandleSync handles POST /api/v1/sync. The action selects a full catalog
// run or a single-partition run; either way the caller gets a complete tally
// and judges run health from the counts.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, verr.Error())
		return
	}

	switch req.Action {
	case ActionSyncAll:
		h.syncAll(w, r)
	case ActionSyncLocation:
		h.syncLocation(w, r, models.PartitionKey{City: req.City, Brand: req.Brand})
	default:
		// Unreachable after validation; kept so the switch is total.
		respondError(w, http.StatusBadRequest, "unknown action: "+req.Action)
	}
}

func (h *Handler) syncAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.SyncAll(r.Context())
	if err != nil {
		if errors.Is(err, syncengine.ErrRunInProgress) {
			respondError(w, http.StatusConflict, "a sync run is already in progress")
			return
		}
		logging.Error().Err(err).Msg("Full sync failed to start")
		respondError(w, http.StatusInternalServerError, "sync failed to start")
		return
	}

	writeJSON(w, http.StatusOK, SyncResponse{
		Status:          "success",
		Summary:         summaryFromRun(result),
		DetailedResults: result.PerPartition,
	})
}

func (h *Handler) syncLocation(w http.ResponseWriter, r *http.Request, key models.PartitionKey) {
	result, err := h.engine.SyncOne(r.Context(), key)
	if err != nil {
		switch {
		case errors.Is(err, syncengine.ErrRunInProgress):
			respondError(w, http.StatusConflict, "a sync run is already in progress")
		case errors.Is(err, syncengine.ErrUnknownPartition):
			respondError(w, http.StatusNotFound, "unknown partition: "+key.String())
		default:
			logging.Error().Err(err).Str("partition", key.String()).Msg("Partition sync failed to start")
			respondError(w, http.StatusInternalServerError, "sync failed to start")
		}
		return
	}

	run := models.NewSyncRunResult()
	run.Record(key, result)

	writeJSON(w, http.StatusOK, SyncResponse{
		Status:          "success",
		Summary:         summaryFromRun(run),
		DetailedResults: run.PerPartition,
	})
}

// HandleCatalog handles GET /api/v1/sync: the static partition catalog in
// run order, for display.
func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CatalogResponse{
		Status:     "success",
		Partitions: h.engine.Catalog(),
	})
}

// HandleSyncStatus handles GET /api/v1/sync/status.
func (h *Handler) HandleSyncStatus(w http.ResponseWriter, r *http.Request) {
	running, last := h.engine.Status()

	resp := StatusResponse{
		Status:  "success",
		Running: running,
		LastRun: last,
	}

	if h.history != nil {
		recent, err := h.history.Recent(r.Context(), 10)
		if err != nil {
			logging.Warn().Err(err).Msg("Failed to read run history")
		} else {
			resp.RecentRuns = recent
			// Survive restarts: the in-memory last run is empty until the
			// first run of this process, but history may know better.
			if resp.LastRun == nil && len(recent) > 0 {
				resp.LastRun = recent[0]
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
