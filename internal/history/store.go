// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package history

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/multipark/parkops/internal/models"
)

const (
	// runKeyPrefix namespaces run records inside the shared Badger instance.
	runKeyPrefix = "sync:run:"

	// keyTimeLayout is fixed-width so lexicographic key order matches
	// chronological order and reverse iteration yields newest first.
	keyTimeLayout = "20060102T150405.000000000"

	// defaultRetention bounds how many run records SaveRun keeps around.
	defaultRetention = 200
)

// BadgerStore persists run records in BadgerDB.
type BadgerStore struct {
	db        *badger.DB
	retention int
}

// Open opens (or creates) a Badger database at path for run history.
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return db, nil
}

// NewBadgerStore creates a run history store on the provided BadgerDB
// instance.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db, retention: defaultRetention}
}

// SaveRun appends a completed run record and prunes records beyond the
// retention window.
func (s *BadgerStore) SaveRun(ctx context.Context, rec *models.RunRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal run record: %w", err)
	}

	key := runKey(rec)
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	}); err != nil {
		return fmt.Errorf("save run record: %w", err)
	}

	return s.prune()
}

// LastRun returns the most recent run record, or nil when no run has
// completed yet.
func (s *BadgerStore) LastRun(ctx context.Context) (*models.RunRecord, error) {
	recs, err := s.Recent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

// Recent returns up to limit run records, newest first.
func (s *BadgerStore) Recent(ctx context.Context, limit int) ([]*models.RunRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	var recs []*models.RunRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(runKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration must seek past the last key in the prefix
		// range; 0xff sorts after every timestamp byte.
		seek := append([]byte(runKeyPrefix), 0xff)
		for it.Seek(seek); it.Valid() && len(recs) < limit; it.Next() {
			var rec models.RunRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			recs = append(recs, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read run history: %w", err)
	}
	return recs, nil
}

// prune drops the oldest records once the log exceeds the retention window.
func (s *BadgerStore) prune() error {
	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(runKeyPrefix)
		it := txn.NewIterator(opts)

		var keys [][]byte
		for it.Seek([]byte(runKeyPrefix)); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		if len(keys) <= s.retention {
			return nil
		}
		for _, key := range keys[:len(keys)-s.retention] {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

func runKey(rec *models.RunRecord) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", runKeyPrefix, rec.StartedAt.UTC().Format(keyTimeLayout), rec.ID))
}
