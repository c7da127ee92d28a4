// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/island/internal/validation"
)

// ErrMissingToken is returned by RequireToken when no Annict token is set.
var ErrMissingToken = errors.New("annict token is required (set ANNICT_TOKEN or TOKEN)")

// Validate checks struct tags first, then the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateProgress(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q: must be trace, debug, info, warn, or error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format %q: must be json or console", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateProgress() error {
	if c.Progress.Enabled && c.Progress.Path == "" {
		return errors.New("progress.path is required when progress is enabled")
	}
	return nil
}

// RequireToken reports ErrMissingToken when commands that call the API run without credentials.
func (c *Config) RequireToken() error {
	if strings.TrimSpace(c.Annict.Token) == "" {
		return ErrMissingToken
	}
	return nil
}
