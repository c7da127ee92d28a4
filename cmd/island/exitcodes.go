// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package main

import (
	"errors"

	"github.com/tomtom215/island/internal/annict"
	"github.com/tomtom215/island/internal/config"
	"github.com/tomtom215/island/internal/database"
	"github.com/tomtom215/island/internal/recommend"
)

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (invalid config, missing token)
	ExitDataError   = 3 // Data error (unknown table, unreadable dataset)
	ExitNetworkErr  = 4 // Network error (Annict API failure)
)

// exitError attaches an exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

func configError(err error) error { return withExitCode(ExitConfigError, err) }
func dataError(err error) error   { return withExitCode(ExitDataError, err) }

// exitCodeFor maps an error returned by a command to a process exit code.
// An explicit code wins; otherwise known sentinel errors are classified.
func exitCodeFor(err error) int {
	var ee *exitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &ee):
		return ee.code
	case errors.Is(err, annict.ErrAPI):
		return ExitNetworkErr
	case errors.Is(err, config.ErrMissingToken), errors.Is(err, recommend.ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, database.ErrUnknownTable):
		return ExitDataError
	default:
		return ExitError
	}
}
