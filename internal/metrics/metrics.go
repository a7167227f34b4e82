// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

// Package metrics holds the Prometheus collectors for the sync engine and
// its HTTP surface.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Sync engine metrics.

	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkops_sync_runs_total",
			Help: "Completed synchronization runs by kind and outcome",
		},
		[]string{"kind", "outcome"}, // kind: full|partition, outcome: clean|with_errors
	)

	SyncRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "parkops_sync_run_duration_seconds",
			Help:    "Wall-clock duration of full synchronization runs",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		},
	)

	PartitionSyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parkops_partition_sync_duration_seconds",
			Help:    "Duration of single-partition synchronization",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"partition"},
	)

	DocumentsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkops_sync_documents_total",
			Help: "Documents processed by the sync engine, by outcome",
		},
		[]string{"outcome"}, // success|error
	)

	UpsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkops_sync_upserts_total",
			Help: "Target store writes by kind",
		},
		[]string{"kind"}, // insert|update
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "parkops_sync_batch_size",
			Help:    "Documents per processed batch",
			Buckets: []float64{1, 10, 25, 50, 100, 250, 500},
		},
	)

	ScheduleSkips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkops_sync_schedule_skips_total",
			Help: "Scheduler invocations that did not start a run",
		},
		[]string{"reason"}, // run_in_progress|interval_not_elapsed
	)

	// Source store metrics.

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "parkops_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"breaker"},
	)

	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parkops_source_fetch_duration_seconds",
			Help:    "Duration of partition fetches from the source store",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"partition"},
	)

	// HTTP metrics.

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkops_api_requests_total",
			Help: "API requests by method, path, and status code",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parkops_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
)

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, path, status string, d time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// ObservePartitionSync records a completed partition pass.
func ObservePartitionSync(partition string, d time.Duration, success, errs int) {
	PartitionSyncDuration.WithLabelValues(partition).Observe(d.Seconds())
	DocumentsProcessed.WithLabelValues("success").Add(float64(success))
	DocumentsProcessed.WithLabelValues("error").Add(float64(errs))
}
