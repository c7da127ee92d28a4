// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
)

// stdout is swapped by tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// ErrorResponse is the JSON error body written to stderr.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// outputJSON writes a value as indented JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputTable writes tab-separated rows aligned into columns.
func outputTable(header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	if len(header) > 0 {
		fmt.Fprintln(tw, strings.Join(header, "\t"))
	}
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// output writes v as JSON, or calls human when --human is set.
func output(v any, human func() error) error {
	if humanOutput {
		return human()
	}
	return outputJSON(v)
}

// outputError reports err on stderr in the selected format.
func outputError(err error) {
	code := exitCodeFor(err)
	if humanOutput {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return
	}
	enc := json.NewEncoder(stderr)
	if encErr := enc.Encode(ErrorResponse{Error: err.Error(), Code: code}); encErr != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
	}
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
