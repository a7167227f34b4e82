// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package sync

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer bounds the request rate against the external stores. It replaces the
// ad-hoc sleeps of the previous generation with an injectable primitive so
// tests run without real delays.
type Pacer interface {
	// Pause blocks until the next unit of work may proceed, or until ctx is
	// canceled.
	Pause(ctx context.Context) error
}

// ratePacer is a token bucket emitting one token per interval.
type ratePacer struct {
	limiter *rate.Limiter
}

// NewPacer returns a token-bucket pacer with the given interval between
// permits. A non-positive interval yields a no-op pacer.
func NewPacer(interval time.Duration) Pacer {
	if interval <= 0 {
		return nopPacer{}
	}
	// Burst 1 and no initial surplus: the first Pause after construction
	// already waits a full interval, which is what "pause between batches"
	// needs at the call sites.
	l := rate.NewLimiter(rate.Every(interval), 1)
	l.AllowN(time.Now(), 1)
	return &ratePacer{limiter: l}
}

func (p *ratePacer) Pause(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

type nopPacer struct{}

func (nopPacer) Pause(ctx context.Context) error { return ctx.Err() }
