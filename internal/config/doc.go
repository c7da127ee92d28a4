// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

/*
Package config loads Island's configuration.

Values are layered with koanf, later layers winning:

 1. Struct defaults (defaultConfig)
 2. A YAML file: the --config flag, CONFIG_PATH, or the first of DefaultConfigPaths
 3. Environment variables listed in envMappings

Only mapped environment variables are read. ANNICT_TOKEN falls back to TOKEN
so existing crawler environments keep working.

# Sections

  - AnnictConfig: API base URL, token, paging, retry and rate limit
  - DatabaseConfig: DuckDB file and resource limits
  - ProgressConfig: Badger checkpoint store for resumable fetches
  - RecommendConfig: staff graph threshold, ranking algorithm and cache
  - SyncConfig: periodic fetch daemon
  - ImportConfig: legacy SQLite dataset import
  - MetricsConfig: Prometheus textfile export
  - LoggingConfig: zerolog level and format

Example island.yaml:

	annict:
	  per_page: 50
	  retry_attempts: 10
	recommend:
	  algorithm: diffusion
	  min_staff_freq: 3
	sync:
	  interval: 6h
	  tables: [works, staffs]
*/
package config
