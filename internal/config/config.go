// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package config

import (
	"time"
)

// Config holds all application configuration.
type Config struct {
	Annict    AnnictConfig    `koanf:"annict"`
	Database  DatabaseConfig  `koanf:"database"`
	Progress  ProgressConfig  `koanf:"progress"`
	Recommend RecommendConfig `koanf:"recommend"`
	Sync      SyncConfig      `koanf:"sync"`
	Import    ImportConfig    `koanf:"import"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// AnnictConfig holds Annict REST API client settings
type AnnictConfig struct {
	BaseURL string `koanf:"base_url" validate:"required,http_url"`

	// Token is the personal access token. It is only required by commands
	// that talk to the API, so it is checked there rather than here.
	Token string `koanf:"token"`

	// PerPage is the page size requested from list endpoints (API maximum 50).
	PerPage int `koanf:"per_page" validate:"gte=1,lte=50"`

	Timeout           time.Duration `koanf:"timeout" validate:"gt=0"`
	RetryAttempts     int           `koanf:"retry_attempts" validate:"gte=1,lte=100"`
	RetryDelay        time.Duration `koanf:"retry_delay" validate:"gte=0"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gt=0"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads" validate:"gte=0"` // 0 = use runtime.NumCPU()
}

// ProgressConfig holds the resumable checkpoint store settings
type ProgressConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// RecommendConfig holds staff-affinity model settings
type RecommendConfig struct {
	Algorithm          string  `koanf:"algorithm" validate:"oneof=diffusion randomwalk"`
	MinStaffFreq       int     `koanf:"min_staff_freq" validate:"gte=1"`
	Depth              int     `koanf:"depth" validate:"gte=0,lte=6"`
	Margin             int     `koanf:"margin" validate:"gte=0"`
	CacheSize          int     `koanf:"cache_size" validate:"gte=0"`
	WalksPerResult     int     `koanf:"walks_per_result" validate:"gte=1"`
	WalkSteps          int     `koanf:"walk_length" validate:"gte=1"`
	RestartProbability float64 `koanf:"restart_probability" validate:"gte=0,lt=1"`
	Seed               int64   `koanf:"seed"`
}

// SyncConfig holds the periodic fetch daemon settings
type SyncConfig struct {
	Interval   time.Duration `koanf:"interval" validate:"gte=1m"`
	Tables     []string      `koanf:"tables" validate:"min=1,dive,oneof=works reviews records staffs"`
	Force      bool          `koanf:"force"`
	RunOnStart bool          `koanf:"run_on_start"`
}

// ImportConfig holds legacy SQLite dataset import settings
type ImportConfig struct {
	DatasetDir string   `koanf:"dataset_dir"`
	BatchSize  int      `koanf:"batch_size" validate:"gte=1,lte=100000"`
	Tables     []string `koanf:"tables" validate:"min=1,dive,oneof=works reviews records staffs"`
}

// MetricsConfig holds Prometheus textfile export settings
type MetricsConfig struct {
	// Textfile is written after every command when non-empty.
	Textfile string `koanf:"textfile"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// AllTables lists every dataset table in fetch order.
var AllTables = []string{"works", "reviews", "records", "staffs"}
