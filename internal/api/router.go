// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/multipark/parkops/internal/middleware"
)

// RouterConfig holds the middleware knobs of the HTTP surface.
type RouterConfig struct {
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
	RequestTimeout    time.Duration
}

// syncRateLimit is stricter than the global limit: sync runs are resource
// intensive on both stores, and the single-flight guard makes hammering the
// endpoint pointless anyway.
var syncRateLimit = struct {
	requests int
	window   time.Duration
}{10, time.Minute}

// NewRouter assembles the Chi router with the full middleware stack and all
// routes.
func NewRouter(handler *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}))

	if !cfg.RateLimitDisabled && cfg.RateLimitRequests > 0 {
		r.Use(httprate.Limit(
			cfg.RateLimitRequests,
			cfg.RateLimitWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
		))
	}

	// The request timeout bounds the cheap read routes only. A full sync run
	// over the default catalog takes minutes, so the trigger route below runs
	// unbounded; its duration is governed by the engine's own pacing and
	// fetch timeouts, and callers can poll /api/v1/sync/status meanwhile.
	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
		}

		r.Get("/health/live", handler.HandleHealthLive)
		r.Get("/health/ready", handler.HandleHealthReady)
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())

		r.Get("/api/v1/health", handler.HandleHealthReady)
		r.Get("/api/v1/sync", handler.HandleCatalog)
		r.Get("/api/v1/sync/status", handler.HandleSyncStatus)
	})

	r.Group(func(r chi.Router) {
		if !cfg.RateLimitDisabled {
			r.Use(httprate.LimitByIP(syncRateLimit.requests, syncRateLimit.window))
		}
		r.Post("/api/v1/sync", handler.HandleSync)
	})

	return r
}
