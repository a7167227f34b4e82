// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package config

import (
	"fmt"
	"time"

	"github.com/multipark/parkops/internal/models"
)

// Config is the top-level engine configuration.
type Config struct {
	Source  SourceConfig   `koanf:"source"`
	Target  TargetConfig   `koanf:"target"`
	Sync    SyncConfig     `koanf:"sync"`
	Server  ServerConfig   `koanf:"server"`
	History HistoryConfig  `koanf:"history"`
	Logging LoggingConfig  `koanf:"logging"`
	Catalog []CatalogEntry `koanf:"catalog"`
}

// SourceConfig holds the MongoDB admin connection for the hierarchical
// reservation store. City maps to database, brand to collection.
type SourceConfig struct {
	AdminURI       string        `koanf:"admin_uri"`       // mongodb:// URI with cluster-wide read access
	ConnectTimeout time.Duration `koanf:"connect_timeout"` // Initial connect + ping budget
	FetchTimeout   time.Duration `koanf:"fetch_timeout"`   // Per-partition fetch budget
}

// TargetConfig holds the PostgreSQL connection for the relational target
// store the dashboard reads from.
type TargetConfig struct {
	DSN            string        `koanf:"dsn"` // postgres:// connection string
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// SyncConfig carries the engine's pacing and scheduling knobs.
type SyncConfig struct {
	BatchSize        int           `koanf:"batch_size"`        // Documents per write batch
	BatchDelay       time.Duration `koanf:"batch_delay"`       // Pause between batches within a partition
	PartitionDelay   time.Duration `koanf:"partition_delay"`   // Pause between partitions in a full run
	PageLimit        int           `koanf:"page_limit"`        // Safety cap on documents fetched per partition
	ScheduleEnabled  bool          `koanf:"schedule_enabled"`  // Run full syncs automatically
	ScheduleInterval time.Duration `koanf:"schedule_interval"` // Minimum spacing between scheduled runs
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	Timeout           time.Duration `koanf:"timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// HistoryConfig holds the BadgerDB run-history settings.
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json or console
	Caller bool   `koanf:"caller"`
}

// CatalogEntry is one configured partition. ExpectedVolume orders the
// catalog walk: smallest partitions run first so connection or auth
// problems surface cheaply.
type CatalogEntry struct {
	City           string `koanf:"city"`
	Brand          string `koanf:"brand"`
	ExpectedVolume int    `koanf:"expected_volume"`
}

// Entries converts the configured catalog into the engine's form.
func Entries(catalog []CatalogEntry) []models.CatalogEntry {
	out := make([]models.CatalogEntry, 0, len(catalog))
	for _, e := range catalog {
		out = append(out, models.CatalogEntry{City: e.City, Brand: e.Brand, ExpectedVolume: e.ExpectedVolume})
	}
	return out
}

// Validate checks the configuration for operability. Both store connections
// are mandatory: the engine has no degraded mode without either end.
func (c *Config) Validate() error {
	if c.Source.AdminURI == "" {
		return fmt.Errorf("source.admin_uri is required (MONGO_ADMIN_URI)")
	}
	if c.Target.DSN == "" {
		return fmt.Errorf("target.dsn is required (POSTGRES_DSN)")
	}
	if c.Sync.BatchSize <= 0 {
		return fmt.Errorf("sync.batch_size must be positive, got %d", c.Sync.BatchSize)
	}
	if c.Sync.PageLimit <= 0 {
		return fmt.Errorf("sync.page_limit must be positive, got %d", c.Sync.PageLimit)
	}
	if c.Sync.ScheduleEnabled && c.Sync.ScheduleInterval <= 0 {
		return fmt.Errorf("sync.schedule_interval must be positive when scheduling is enabled")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history.path is required when history is enabled")
	}
	if len(c.Catalog) == 0 {
		return fmt.Errorf("catalog must list at least one partition")
	}

	seen := make(map[string]bool, len(c.Catalog))
	for i, entry := range c.Catalog {
		if entry.City == "" || entry.Brand == "" {
			return fmt.Errorf("catalog[%d]: city and brand are required", i)
		}
		key := entry.City + "/" + entry.Brand
		if seen[key] {
			return fmt.Errorf("catalog[%d]: duplicate partition %s", i, key)
		}
		seen[key] = true
	}
	return nil
}
