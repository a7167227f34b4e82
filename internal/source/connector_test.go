// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/multipark/parkops/internal/models"
)

func TestNewConnectorRequiresAdminCredential(t *testing.T) {
	_, err := NewConnector(context.Background(), Config{
		AdminURI:       "",
		ConnectTimeout: time.Second,
		FetchTimeout:   time.Second,
	})
	if !errors.Is(err, ErrConnectorUnavailable) {
		t.Fatalf("expected ErrConnectorUnavailable for missing credential, got %v", err)
	}
}

func TestFetchPartitionRejectsInvalidKey(t *testing.T) {
	c := &Connector{client: nil}
	if _, err := c.FetchPartition(context.Background(), models.PartitionKey{City: "lisbon", Brand: "airpark"}, 10); !errors.Is(err, ErrConnectorUnavailable) {
		t.Errorf("nil client: expected ErrConnectorUnavailable, got %v", err)
	}
}

func TestDocumentFromBSON(t *testing.T) {
	oid := primitive.NewObjectID()
	checkIn := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		raw    bson.M
		wantID string
		check  func(t *testing.T, doc models.Document)
	}{
		{
			name:   "string id and mixed fields",
			raw:    bson.M{"_id": "res-1", "name": "Ana", "bookingPrice": 45.5, "paid": true},
			wantID: "res-1",
			check: func(t *testing.T, doc models.Document) {
				if got := doc.Field("name").AsString(); got != "Ana" {
					t.Errorf("name: got %q", got)
				}
				if n, ok := doc.Field("bookingPrice").AsNumber(); !ok || n != 45.5 {
					t.Errorf("bookingPrice: got %v ok=%v", n, ok)
				}
				if got := doc.Field("paid").AsString(); got != "true" {
					t.Errorf("paid: got %q", got)
				}
			},
		},
		{
			name:   "object id becomes hex",
			raw:    bson.M{"_id": oid},
			wantID: oid.Hex(),
			check:  func(t *testing.T, doc models.Document) {},
		},
		{
			name:   "idClient fallback",
			raw:    bson.M{"idClient": "legacy-9", "name": "Rui"},
			wantID: "legacy-9",
			check:  func(t *testing.T, doc models.Document) {},
		},
		{
			name:   "datetime and integers",
			raw:    bson.M{"_id": "res-2", "checkIn": primitive.NewDateTimeFromTime(checkIn), "spot": int32(12)},
			wantID: "res-2",
			check: func(t *testing.T, doc models.Document) {
				got, ok := doc.Field("checkIn").AsTime()
				if !ok || !got.Equal(checkIn) {
					t.Errorf("checkIn: got %v ok=%v", got, ok)
				}
				if n, _ := doc.Field("spot").AsNumber(); n != 12 {
					t.Errorf("spot: got %v", n)
				}
			},
		},
		{
			name:   "composite values collapse to null",
			raw:    bson.M{"_id": "res-3", "history": bson.A{"a", "b"}, "meta": bson.M{"x": 1}},
			wantID: "res-3",
			check: func(t *testing.T, doc models.Document) {
				if !doc.Field("history").IsNull() || !doc.Field("meta").IsNull() {
					t.Error("composite values should collapse to null")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := documentFromBSON(tt.raw)
			if doc.ID != tt.wantID {
				t.Errorf("id: expected %q, got %q", tt.wantID, doc.ID)
			}
			tt.check(t, doc)
		})
	}
}

// fakeFetcher scripts FetchPartition outcomes for breaker tests.
type fakeFetcher struct {
	err   error
	docs  []models.Document
	calls int
}

func (f *fakeFetcher) FetchPartition(ctx context.Context, key models.PartitionKey, pageLimit int) ([]models.Document, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func TestBreakerPassesResultsThrough(t *testing.T) {
	inner := &fakeFetcher{docs: []models.Document{{ID: "a"}, {ID: "b"}}}
	b := NewBreakerFetcher(inner)

	docs, err := b.FetchPartition(context.Background(), models.PartitionKey{City: "faro", Brand: "airpark"}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("expected 2 documents, got %d", len(docs))
	}
}

func TestBreakerOpensOnRepeatedStoreFailures(t *testing.T) {
	inner := &fakeFetcher{err: errors.New("store down")}
	b := NewBreakerFetcher(inner)
	key := models.PartitionKey{City: "lisbon", Brand: "airpark"}

	for i := 0; i < 5; i++ {
		if _, err := b.FetchPartition(context.Background(), key, 10); err == nil {
			t.Fatal("expected failure")
		}
	}

	callsBefore := inner.calls
	_, err := b.FetchPartition(context.Background(), key, 10)
	if !errors.Is(err, ErrConnectorUnavailable) {
		t.Fatalf("open circuit should surface ErrConnectorUnavailable, got %v", err)
	}
	if inner.calls != callsBefore {
		t.Error("open circuit should not reach the inner fetcher")
	}
}

func TestBreakerIgnoresPartitionNotFound(t *testing.T) {
	inner := &fakeFetcher{err: ErrPartitionNotFound}
	b := NewBreakerFetcher(inner)
	key := models.PartitionKey{City: "faro", Brand: "lispark"}

	// Well past the trip threshold; absent partitions must never open it.
	for i := 0; i < 20; i++ {
		if _, err := b.FetchPartition(context.Background(), key, 10); !errors.Is(err, ErrPartitionNotFound) {
			t.Fatalf("call %d: expected ErrPartitionNotFound, got %v", i, err)
		}
	}
	if inner.calls != 20 {
		t.Errorf("expected every call to reach the inner fetcher, got %d", inner.calls)
	}
}
