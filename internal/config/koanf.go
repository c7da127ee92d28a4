// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

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

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"island.yaml",
	"island.yml",
	"config.yaml",
	"/etc/island/config.yaml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// legacyTokenEnvVar is read when ANNICT_TOKEN is not set.
const legacyTokenEnvVar = "TOKEN"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Annict: AnnictConfig{
			BaseURL:           "https://api.annict.com",
			PerPage:           50,
			Timeout:           30 * time.Second,
			RetryAttempts:     10,
			RetryDelay:        2 * time.Second,
			RequestsPerSecond: 1,
		},
		Database: DatabaseConfig{
			Path:      "dataset/island.duckdb",
			MaxMemory: "1GB",
		},
		Progress: ProgressConfig{
			Enabled: true,
			Path:    "dataset/progress",
		},
		Recommend: RecommendConfig{
			Algorithm:          "diffusion",
			MinStaffFreq:       3,
			Depth:              3,
			Margin:             3,
			CacheSize:          4096,
			WalksPerResult:     40,
			WalkSteps:          5,
			RestartProbability: 0.5,
			Seed:               42,
		},
		Sync: SyncConfig{
			Interval:   6 * time.Hour,
			Tables:     append([]string(nil), AllTables...),
			RunOnStart: true,
		},
		Import: ImportConfig{
			DatasetDir: "dataset",
			BatchSize:  1000,
			Tables:     append([]string(nil), AllTables...),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration in three layers: struct defaults, an
// optional YAML file, then environment variables. An explicit path must
// exist; otherwise CONFIG_PATH and DefaultConfigPaths are searched.
func LoadWithKoanf(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file
	configPath := path
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
	} else {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if cfg.Annict.Token == "" {
		cfg.Annict.Token = os.Getenv(legacyTokenEnvVar)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns the validated default configuration without reading any
// file or environment variable.
func Default() *Config {
	return defaultConfig()
}

// findConfigFile returns the first existing config file, or "".
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

// sliceConfigPaths are split on commas when they arrive as strings.
var sliceConfigPaths = []string{
	"sync.tables",
	"import.tables",
}

// processSliceFields turns comma-separated env values into string slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Annict API
	"annict_base_url":            "annict.base_url",
	"annict_token":               "annict.token",
	"annict_per_page":            "annict.per_page",
	"annict_timeout":             "annict.timeout",
	"annict_retry_attempts":      "annict.retry_attempts",
	"annict_retry_delay":         "annict.retry_delay",
	"annict_requests_per_second": "annict.requests_per_second",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Progress checkpoints
	"progress_enabled": "progress.enabled",
	"progress_path":    "progress.path",

	// Recommendation model
	"recommend_algorithm":           "recommend.algorithm",
	"recommend_min_staff_freq":      "recommend.min_staff_freq",
	"recommend_depth":               "recommend.depth",
	"recommend_margin":              "recommend.margin",
	"recommend_cache_size":          "recommend.cache_size",
	"recommend_walks_per_result":    "recommend.walks_per_result",
	"recommend_walk_length":         "recommend.walk_length",
	"recommend_restart_probability": "recommend.restart_probability",
	"recommend_seed":                "recommend.seed",

	// Sync daemon
	"sync_interval":     "sync.interval",
	"sync_tables":       "sync.tables",
	"sync_force":        "sync.force",
	"sync_run_on_start": "sync.run_on_start",

	// Legacy import
	"import_dataset_dir": "import.dataset_dir",
	"import_batch_size":  "import.batch_size",
	"import_tables":      "import.tables",

	// Metrics
	"metrics_textfile": "metrics.textfile",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped variables return "" and are ignored, so unrelated environment
// variables never leak into the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
