// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/multipark/parkops/internal/models"
	"github.com/multipark/parkops/internal/normalize"
	"github.com/multipark/parkops/internal/source"
	"github.com/multipark/parkops/internal/target"
)

var unitClock = func() time.Time {
	return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
}

// scriptedFetcher returns scripted documents or errors per partition.
type scriptedFetcher struct {
	docs map[string][]models.Document
	err  error
}

func (f *scriptedFetcher) FetchPartition(ctx context.Context, key models.PartitionKey, pageLimit int) ([]models.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	docs, ok := f.docs[key.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", source.ErrPartitionNotFound, key)
	}
	return docs, nil
}

// memStore is an in-memory target store with scriptable write failures.
type memStore struct {
	rows       map[string]models.Reservation
	failInsert map[string]bool
	failUpdate map[string]bool
	inserts    int
	updates    int
}

func newMemStore() *memStore {
	return &memStore{
		rows:       make(map[string]models.Reservation),
		failInsert: make(map[string]bool),
		failUpdate: make(map[string]bool),
	}
}

func (s *memStore) FindByBookingID(ctx context.Context, bookingID string) (*models.Reservation, error) {
	row, ok := s.rows[bookingID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", target.ErrNotFound, bookingID)
	}
	return &row, nil
}

func (s *memStore) Insert(ctx context.Context, row *models.Reservation) error {
	if s.failInsert[row.BookingID] {
		return &target.WriteError{BookingID: row.BookingID, Op: "insert", Err: errors.New("scripted failure")}
	}
	if _, exists := s.rows[row.BookingID]; exists {
		return &target.WriteError{BookingID: row.BookingID, Op: "insert", Err: errors.New("duplicate key")}
	}
	s.rows[row.BookingID] = *row
	s.inserts++
	return nil
}

func (s *memStore) Update(ctx context.Context, bookingID string, row *models.Reservation) error {
	if s.failUpdate[bookingID] {
		return &target.WriteError{BookingID: bookingID, Op: "update", Err: errors.New("scripted failure")}
	}
	if _, exists := s.rows[bookingID]; !exists {
		return &target.WriteError{BookingID: bookingID, Op: "update", Err: target.ErrNotFound}
	}
	s.rows[bookingID] = *row
	s.updates++
	return nil
}

// countingPacer records pauses and optionally fails after a threshold.
type countingPacer struct {
	pauses    int
	failAfter int // fail on pause number failAfter (1-based); 0 = never
}

func (p *countingPacer) Pause(ctx context.Context) error {
	p.pauses++
	if p.failAfter > 0 && p.pauses >= p.failAfter {
		return context.Canceled
	}
	return nil
}

func reservationDocs(n int) []models.Document {
	docs := make([]models.Document, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, models.Document{
			ID: fmt.Sprintf("res-%03d", i),
			Fields: map[string]models.Value{
				"name":         models.StringValue("Client"),
				"licensePlate": models.StringValue(fmt.Sprintf("aa-%02d-bb", i)),
				"bookingPrice": models.StringValue("45,50"),
				"stats":        models.StringValue("reservado"),
			},
		})
	}
	return docs
}

func newUnit(src source.Fetcher, dst target.Store, batchSize int, pacer Pacer) *PartitionUnit {
	return NewPartitionUnit(src, dst, normalize.NewNormalizerWithClock(unitClock), UnitConfig{
		BatchSize:  batchSize,
		PageLimit:  50000,
		BatchPacer: pacer,
	}, nil)
}

func TestSyncPartitionFreshTarget(t *testing.T) {
	key := models.PartitionKey{City: "lisbon", Brand: "lispark"}
	src := &scriptedFetcher{docs: map[string][]models.Document{key.String(): reservationDocs(18)}}
	dst := newMemStore()

	res := newUnit(src, dst, 100, nil).SyncPartition(context.Background(), key)

	if res.Success != 18 || res.Errors != 0 || res.Total != 18 {
		t.Fatalf("expected {18,0,18}, got %+v", res)
	}
	if len(dst.rows) != 18 {
		t.Errorf("expected 18 distinct rows, got %d", len(dst.rows))
	}
	if dst.inserts != 18 || dst.updates != 0 {
		t.Errorf("expected 18 inserts and no updates, got %d/%d", dst.inserts, dst.updates)
	}
}

func TestSyncPartitionIdempotent(t *testing.T) {
	key := models.PartitionKey{City: "porto", Brand: "redpark"}
	src := &scriptedFetcher{docs: map[string][]models.Document{key.String(): reservationDocs(30)}}
	dst := newMemStore()
	unit := newUnit(src, dst, 100, nil)

	first := unit.SyncPartition(context.Background(), key)
	rowsAfterFirst := len(dst.rows)
	second := unit.SyncPartition(context.Background(), key)

	if first.Success != 30 || first.Errors != 0 {
		t.Fatalf("first run: expected {30,0,30}, got %+v", first)
	}
	if second.Success != 30 || second.Errors != 0 {
		t.Fatalf("second run: expected {30,0,30}, got %+v", second)
	}
	if len(dst.rows) != rowsAfterFirst {
		t.Errorf("row count changed between runs: %d -> %d", rowsAfterFirst, len(dst.rows))
	}
	if dst.inserts != 30 || dst.updates != 30 {
		t.Errorf("expected 30 inserts then 30 updates, got %d/%d", dst.inserts, dst.updates)
	}
}

func TestSyncPartitionPartialFailureIsolation(t *testing.T) {
	key := models.PartitionKey{City: "lisbon", Brand: "airpark"}
	const n = 25
	src := &scriptedFetcher{docs: map[string][]models.Document{key.String(): reservationDocs(n)}}
	dst := newMemStore()
	dst.failInsert["res-007"] = true

	res := newUnit(src, dst, 10, nil).SyncPartition(context.Background(), key)

	if res.Success != n-1 || res.Errors != 1 || res.Total != n {
		t.Fatalf("expected {%d,1,%d}, got %+v", n-1, n, res)
	}
	if len(dst.rows) != n-1 {
		t.Errorf("expected %d persisted rows, got %d", n-1, len(dst.rows))
	}
	if _, ok := dst.rows["res-007"]; ok {
		t.Error("failed document should not be persisted")
	}
}

func TestSyncPartitionAbsentPartition(t *testing.T) {
	src := &scriptedFetcher{docs: map[string][]models.Document{}}
	res := newUnit(src, newMemStore(), 100, nil).SyncPartition(context.Background(), models.PartitionKey{City: "faro", Brand: "skypark"})

	if res.Success != 0 || res.Errors != 0 || res.Total != 0 {
		t.Errorf("absent partition should be {0,0,0}, got %+v", res)
	}
}

func TestSyncPartitionFetchFailureIsFatal(t *testing.T) {
	src := &scriptedFetcher{err: source.ErrConnectorUnavailable}
	res := newUnit(src, newMemStore(), 100, nil).SyncPartition(context.Background(), models.PartitionKey{City: "lisbon", Brand: "airpark"})

	if res.Success != 0 || res.Errors != 1 || res.Total != 0 {
		t.Errorf("fetch failure should be {0,1,0}, got %+v", res)
	}
}

func TestSyncPartitionPacesBetweenBatchesOnly(t *testing.T) {
	key := models.PartitionKey{City: "lisbon", Brand: "airpark"}
	src := &scriptedFetcher{docs: map[string][]models.Document{key.String(): reservationDocs(250)}}
	pacer := &countingPacer{}

	res := newUnit(src, newMemStore(), 100, pacer).SyncPartition(context.Background(), key)

	if res.Total != 250 {
		t.Fatalf("expected 250 processed, got %+v", res)
	}
	// 3 batches (100/100/50): pauses between them, none before the first or
	// after the last.
	if pacer.pauses != 2 {
		t.Errorf("expected 2 pauses, got %d", pacer.pauses)
	}
}

func TestSyncPartitionCancellationBetweenBatches(t *testing.T) {
	key := models.PartitionKey{City: "lisbon", Brand: "airpark"}
	src := &scriptedFetcher{docs: map[string][]models.Document{key.String(): reservationDocs(250)}}
	dst := newMemStore()
	pacer := &countingPacer{failAfter: 1}

	res := newUnit(src, dst, 100, pacer).SyncPartition(context.Background(), key)

	// Only the first batch completes; the run stops cleanly at the boundary.
	if res.Success != 100 || res.Errors != 0 || res.Total != 100 {
		t.Errorf("expected {100,0,100} after cancellation, got %+v", res)
	}
	if len(dst.rows) != 100 {
		t.Errorf("expected exactly the first batch persisted, got %d rows", len(dst.rows))
	}
}

// recordingNotifier captures the reverse-propagation stub calls.
type recordingNotifier struct {
	calls []models.PartitionKey
}

func (r *recordingNotifier) PartitionSynced(ctx context.Context, key models.PartitionKey, result models.PartitionResult) {
	r.calls = append(r.calls, key)
}

func TestSyncPartitionNotifiesSourceHook(t *testing.T) {
	key := models.PartitionKey{City: "faro", Brand: "airpark"}
	src := &scriptedFetcher{docs: map[string][]models.Document{key.String(): reservationDocs(3)}}
	notifier := &recordingNotifier{}

	unit := NewPartitionUnit(src, newMemStore(), normalize.NewNormalizerWithClock(unitClock), UnitConfig{BatchSize: 100}, notifier)
	unit.SyncPartition(context.Background(), key)

	if len(notifier.calls) != 1 || notifier.calls[0] != key {
		t.Errorf("expected one notification for %s, got %v", key, notifier.calls)
	}
}
