// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/parkops/config.yaml",
	"/etc/parkops/config.yml",
}

// ConfigPathEnvVar overrides the config file search entirely.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults. They are applied first and
// then overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			AdminURI:       "",
			ConnectTimeout: 10 * time.Second,
			FetchTimeout:   2 * time.Minute,
		},
		Target: TargetConfig{
			DSN:            "",
			ConnectTimeout: 10 * time.Second,
		},
		Sync: SyncConfig{
			BatchSize:        100,
			BatchDelay:       time.Second,
			PartitionDelay:   2 * time.Second,
			PageLimit:        50000,
			ScheduleEnabled:  false,
			ScheduleInterval: time.Hour,
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8090,
			Timeout:           30 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "/data/parkops/history",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		// The default catalog covers every live city/brand pairing. Not
		// every brand operates in every city, so this is a list, not a
		// cross product.
		Catalog: []CatalogEntry{
			{City: "lisbon", Brand: "airpark", ExpectedVolume: 50000},
			{City: "lisbon", Brand: "redpark", ExpectedVolume: 30000},
			{City: "lisbon", Brand: "skypark", ExpectedVolume: 4000},
			{City: "lisbon", Brand: "top-parking", ExpectedVolume: 2500},
			{City: "lisbon", Brand: "lispark", ExpectedVolume: 1200},
			{City: "porto", Brand: "airpark", ExpectedVolume: 8000},
			{City: "porto", Brand: "redpark", ExpectedVolume: 5000},
			{City: "porto", Brand: "skypark", ExpectedVolume: 900},
			{City: "porto", Brand: "top-parking", ExpectedVolume: 600},
			{City: "faro", Brand: "airpark", ExpectedVolume: 3000},
			{City: "faro", Brand: "redpark", ExpectedVolume: 400},
		},
	}
}

// Load builds the configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in values
//  2. Config file: optional YAML (see DefaultConfigPaths)
//  3. Environment variables: highest priority
func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines which config paths are parsed as comma-separated
// slices when they arrive as env var strings.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables are dropped so unrelated container environment does not
// leak into settings.
//
// Examples:
//   - MONGO_ADMIN_URI -> source.admin_uri
//   - POSTGRES_DSN -> target.dsn
//   - SYNC_BATCH_SIZE -> sync.batch_size
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Source store mappings
		"mongo_admin_uri":        "source.admin_uri",
		"source_connect_timeout": "source.connect_timeout",
		"source_fetch_timeout":   "source.fetch_timeout",

		// Target store mappings
		"postgres_dsn":           "target.dsn",
		"database_url":           "target.dsn",
		"target_connect_timeout": "target.connect_timeout",

		// Sync engine mappings
		"sync_batch_size":        "sync.batch_size",
		"sync_batch_delay":       "sync.batch_delay",
		"sync_partition_delay":   "sync.partition_delay",
		"sync_page_limit":        "sync.page_limit",
		"sync_schedule_enabled":  "sync.schedule_enabled",
		"sync_schedule_interval": "sync.schedule_interval",

		// Server mappings
		"http_host":           "server.host",
		"http_port":           "server.port",
		"http_timeout":        "server.timeout",
		"cors_origins":        "server.cors_origins",
		"rate_limit_requests": "server.rate_limit_reqs",
		"rate_limit_window":   "server.rate_limit_window",
		"disable_rate_limit":  "server.rate_limit_disabled",

		// History mappings
		"history_enabled": "history.enabled",
		"history_path":    "history.path",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
