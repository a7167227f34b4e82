// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package source

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/multipark/parkops/internal/logging"
	"github.com/multipark/parkops/internal/metrics"
	"github.com/multipark/parkops/internal/models"
)

// BreakerFetcher wraps a Fetcher with a circuit breaker so a degraded source
// store sheds load instead of being hammered by every partition in turn.
//
// ErrPartitionNotFound does not count as a failure: absent partitions are a
// normal catalog condition, not a store health signal.
type BreakerFetcher struct {
	inner Fetcher
	cb    *gobreaker.CircuitBreaker[[]models.Document]
}

const breakerName = "source-store"

// NewBreakerFetcher builds the breaker with the same posture the rest of the
// platform uses: open at a 60% failure rate over at least 5 requests, one
// probe after a minute open.
func NewBreakerFetcher(inner Fetcher) *BreakerFetcher {
	metrics.BreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]models.Document](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrPartitionNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state change")
			metrics.BreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})

	return &BreakerFetcher{inner: inner, cb: cb}
}

// FetchPartition implements Fetcher. An open circuit surfaces as
// ErrConnectorUnavailable so callers apply the fatal-for-the-partition
// policy they already have.
func (b *BreakerFetcher) FetchPartition(ctx context.Context, key models.PartitionKey, pageLimit int) ([]models.Document, error) {
	docs, err := b.cb.Execute(func() ([]models.Document, error) {
		return b.inner.FetchPartition(ctx, key, pageLimit)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logging.Warn().Str("partition", key.String()).Msg("Source fetch rejected by open circuit")
			return nil, errors.Join(ErrConnectorUnavailable, err)
		}
		return nil, err
	}
	return docs, nil
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}
