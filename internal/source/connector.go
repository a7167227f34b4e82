// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/multipark/parkops/internal/logging"
	"github.com/multipark/parkops/internal/models"
)

// Sentinel errors of the source connector.
var (
	// ErrConnectorUnavailable means the administrative credential is missing
	// or the store cannot be reached. Fatal for the partition run.
	ErrConnectorUnavailable = errors.New("source connector unavailable")

	// ErrPartitionNotFound means the (city, brand) path does not exist.
	// Benign: callers treat it as zero documents.
	ErrPartitionNotFound = errors.New("partition not found")
)

// Fetcher is the read contract consumed by the sync engine.
type Fetcher interface {
	// FetchPartition lists the documents of one partition, up to pageLimit.
	// The result is materialized because downstream batching re-chunks it.
	FetchPartition(ctx context.Context, key models.PartitionKey, pageLimit int) ([]models.Document, error)
}

// Connector reads partitions from MongoDB. A partition key maps to
// Database(city).Collection(brand).
type Connector struct {
	client       *mongo.Client
	fetchTimeout time.Duration
}

// Config carries the connector's credentials and timeouts. AdminURI is the
// administrative connection string that bypasses per-user access rules.
type Config struct {
	AdminURI       string
	ConnectTimeout time.Duration
	FetchTimeout   time.Duration
}

// NewConnector connects to the source store with the administrative
// credential. A missing credential fails here so the service refuses to
// start misconfigured, per the error-handling policy.
func NewConnector(ctx context.Context, cfg Config) (*Connector, error) {
	if cfg.AdminURI == "" {
		return nil, fmt.Errorf("%w: admin credential not configured", ErrConnectorUnavailable)
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.AdminURI))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectorUnavailable, err)
	}
	// An unreachable store is not a configuration error: the connector is
	// handed back and the circuit breaker rides out the outage.
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		logging.Warn().Err(err).Msg("Source store unreachable at connect time")
	} else {
		logging.Info().Msg("Source connector established")
	}
	return &Connector{client: client, fetchTimeout: cfg.FetchTimeout}, nil
}

// Close disconnects from the source store.
func (c *Connector) Close(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Disconnect(ctx)
}

// Ping reports whether the source store is reachable.
func (c *Connector) Ping(ctx context.Context) error {
	if c.client == nil {
		return ErrConnectorUnavailable
	}
	return c.client.Ping(ctx, readpref.Primary())
}

// FetchPartition implements Fetcher. It lists all documents of the innermost
// collection up to pageLimit and reports true exhaustion: a result shorter
// than the limit means the partition was read completely.
func (c *Connector) FetchPartition(ctx context.Context, key models.PartitionKey, pageLimit int) ([]models.Document, error) {
	if c.client == nil {
		return nil, ErrConnectorUnavailable
	}
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPartitionNotFound, err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	db := c.client.Database(key.City)
	names, err := db.ListCollectionNames(fetchCtx, bson.M{"name": key.Brand})
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %v", ErrConnectorUnavailable, key, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPartitionNotFound, key)
	}

	cursor, err := db.Collection(key.Brand).Find(fetchCtx, bson.M{}, options.Find().SetLimit(int64(pageLimit)))
	if err != nil {
		return nil, fmt.Errorf("%w: querying %s: %v", ErrConnectorUnavailable, key, err)
	}
	defer func() {
		_ = cursor.Close(fetchCtx)
	}()

	var docs []models.Document
	for cursor.Next(fetchCtx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			logging.Warn().Err(err).Str("partition", key.String()).Msg("Skipping undecodable document")
			continue
		}
		docs = append(docs, documentFromBSON(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: cursor on %s: %v", ErrConnectorUnavailable, key, err)
	}

	if len(docs) == pageLimit {
		logging.Warn().Str("partition", key.String()).Int("page_limit", pageLimit).Msg("Partition hit the page limit; listing may be truncated")
	}

	logging.Debug().Str("partition", key.String()).Int("documents", len(docs)).Msg("Fetched partition")
	return docs, nil
}

// documentFromBSON converts a raw BSON record into the loosely-typed
// document shape. The document id prefers _id, falling back to the legacy
// idClient field some exports carry.
func documentFromBSON(raw bson.M) models.Document {
	doc := models.Document{Fields: make(map[string]models.Value, len(raw))}

	for name, v := range raw {
		if name == "_id" {
			doc.ID = idToString(v)
			continue
		}
		doc.Fields[name] = valueFromBSON(v)
	}

	if doc.ID == "" {
		if v, ok := doc.Fields["idClient"]; ok {
			doc.ID = v.AsString()
		}
	}
	return doc
}

func idToString(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case primitive.ObjectID:
		return id.Hex()
	default:
		return fmt.Sprintf("%v", id)
	}
}

// valueFromBSON collapses BSON's type zoo into the four-kind tagged union.
// Composite values (arrays, embedded documents) carry no reservation fields
// we map, so they collapse to null.
func valueFromBSON(v interface{}) models.Value {
	switch val := v.(type) {
	case nil:
		return models.NullValue()
	case string:
		return models.StringValue(val)
	case bool:
		if val {
			return models.StringValue("true")
		}
		return models.StringValue("false")
	case int32:
		return models.NumberValue(float64(val))
	case int64:
		return models.NumberValue(float64(val))
	case int:
		return models.NumberValue(float64(val))
	case float64:
		return models.NumberValue(val)
	case primitive.Decimal128:
		return models.StringValue(val.String())
	case primitive.DateTime:
		return models.TimeValue(val.Time())
	case time.Time:
		return models.TimeValue(val)
	default:
		return models.NullValue()
	}
}
