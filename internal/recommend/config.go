// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package recommend

import (
	"errors"
	"fmt"
)

// Algorithm identifiers.
const (
	AlgorithmDiffusion  = "diffusion"
	AlgorithmRandomWalk = "randomwalk"
)

// Defaults for the staff-affinity model.
const (
	DefaultMinStaffFreq       = 3
	DefaultDepth              = 3
	DefaultMargin             = 3
	DefaultCacheSize          = 4096
	DefaultWalksPerResult     = 40
	DefaultWalkSteps          = 5
	DefaultRestartProbability = 0.5
	DefaultSeed               = 42
)

// ErrInvalidConfig is returned by Validate for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid recommend config")

// Config contains all configuration for the staff-affinity model.
type Config struct {
	// Algorithm selects the ranker: "diffusion" (default) or "randomwalk".
	Algorithm string `json:"algorithm"`

	// MinStaffFreq drops staff credited on fewer works than this.
	// The threshold is inclusive.
	MinStaffFreq int `json:"min_staff_freq"`

	// Depth is the diffusion depth used by SimilarItems.
	Depth int `json:"depth"`

	// Margin is the number of extra results requested from the ranker so
	// that removing the query work still leaves enough results.
	Margin int `json:"margin"`

	// CacheSize bounds the number of memoized SimilarItems results.
	// Zero disables the cache.
	CacheSize int `json:"cache_size"`

	// RandomWalk contains parameters of the Monte-Carlo ranker.
	RandomWalk RandomWalkConfig `json:"random_walk"`

	// Seed is the random seed for deterministic behavior.
	// If zero, a fixed default seed is used.
	Seed int64 `json:"seed"`
}

// RandomWalkConfig contains parameters of the Monte-Carlo ranker.
type RandomWalkConfig struct {
	// WalksPerResult is multiplied by the requested result count to obtain
	// the number of walks.
	WalksPerResult int `json:"walks_per_result"`

	// Steps is the length of every walk. It takes the place of depth.
	Steps int `json:"steps"`

	// RestartProbability is the chance of jumping back to the origin on
	// every step but the last.
	RestartProbability float64 `json:"restart_probability"`
}

// DefaultConfig returns the default model configuration.
func DefaultConfig() *Config {
	return &Config{
		Algorithm:    AlgorithmDiffusion,
		MinStaffFreq: DefaultMinStaffFreq,
		Depth:        DefaultDepth,
		Margin:       DefaultMargin,
		CacheSize:    DefaultCacheSize,
		RandomWalk: RandomWalkConfig{
			WalksPerResult:     DefaultWalksPerResult,
			Steps:              DefaultWalkSteps,
			RestartProbability: DefaultRestartProbability,
		},
		Seed: DefaultSeed,
	}
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	switch c.Algorithm {
	case AlgorithmDiffusion, AlgorithmRandomWalk:
	default:
		return fmt.Errorf("%w: unknown algorithm %q", ErrInvalidConfig, c.Algorithm)
	}
	if c.MinStaffFreq < 1 {
		return fmt.Errorf("%w: min_staff_freq must be at least 1, got %d", ErrInvalidConfig, c.MinStaffFreq)
	}
	if c.Depth < 0 {
		return fmt.Errorf("%w: depth must be non-negative, got %d", ErrInvalidConfig, c.Depth)
	}
	if c.Margin < 0 {
		return fmt.Errorf("%w: margin must be non-negative, got %d", ErrInvalidConfig, c.Margin)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: cache_size must be non-negative, got %d", ErrInvalidConfig, c.CacheSize)
	}
	return c.RandomWalk.Validate()
}

// Validate checks the random walk parameters.
func (c RandomWalkConfig) Validate() error {
	if c.WalksPerResult < 1 {
		return fmt.Errorf("%w: walks_per_result must be at least 1, got %d", ErrInvalidConfig, c.WalksPerResult)
	}
	if c.Steps < 1 {
		return fmt.Errorf("%w: steps must be at least 1, got %d", ErrInvalidConfig, c.Steps)
	}
	if c.RestartProbability < 0 || c.RestartProbability >= 1 {
		return fmt.Errorf("%w: restart_probability must be in [0, 1), got %v", ErrInvalidConfig, c.RestartProbability)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
