// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/island/internal/annict"
)

var (
	fetchFromPage int
	fetchForce    bool
	fetchResume   bool
	fetchMaxPages int
)

func init() {
	fetchCmd.Flags().IntVar(&fetchFromPage, "from-page", 1, "First page to request")
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "Keep paging past pages that are already stored")
	fetchCmd.Flags().BoolVar(&fetchResume, "resume", false, "Continue an interrupted fetch from its checkpoint")
	fetchCmd.Flags().IntVar(&fetchMaxPages, "max-pages", 0, "Stop after this many pages (0 = no limit)")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [works|reviews|records|staffs|all]",
	Short: "Fetch new rows from the Annict API",
	Long: `Fetch new rows from the Annict API into the local database.

Pages are requested newest first. A fetch stops at the first empty page,
or at the first page whose rows were all stored already (unless --force).

Usage:
  island fetch staffs
  island fetch all --resume
  island fetch reviews --from-page 120 --force`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"works", "reviews", "records", "staffs", "all"},
	RunE:      runFetch,
}

// FetchResponse is the JSON output of `island fetch`.
type FetchResponse struct {
	Results []*annict.FetchResult `json:"results"`
}

func runFetch(cmd *cobra.Command, args []string) error {
	var arg string
	if len(args) == 1 {
		arg = args[0]
	}
	tables, err := tablesArg(arg)
	if err != nil {
		return err
	}
	if fetchFromPage < 1 {
		return fmt.Errorf("--from-page must be at least 1, got %d", fetchFromPage)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeWithLog(db, "database")

	tracker, err := openTracker(cfg)
	if err != nil {
		return err
	}
	defer closeWithLog(tracker, "progress")

	fetcher, err := newFetcher(cfg, db, tracker)
	if err != nil {
		return err
	}

	results, fetchErr := fetcher.FetchAll(cmd.Context(), tables, annict.FetchOptions{
		FromPage: fetchFromPage,
		Force:    fetchForce,
		Resume:   fetchResume,
		MaxPages: fetchMaxPages,
	})

	// Partial results are reported even when a table failed.
	if err := outputFetchResults(results); err != nil {
		return err
	}
	return fetchErr
}

func outputFetchResults(results []*annict.FetchResult) error {
	return output(FetchResponse{Results: results}, func() error {
		rows := make([][]string, 0, len(results))
		for _, r := range results {
			rows = append(rows, []string{
				r.Table,
				fmt.Sprintf("%d-%d", r.StartPage, r.LastPage),
				strconv.Itoa(r.Fetched),
				strconv.Itoa(r.Inserted),
				strconv.Itoa(r.Skipped),
				strconv.FormatInt(r.TotalRows, 10),
				r.StopReason,
				r.Duration.Round(time.Millisecond).String(),
			})
		}
		return outputTable([]string{"TABLE", "PAGES", "FETCHED", "INSERTED", "SKIPPED", "TOTAL", "STOP", "DURATION"}, rows)
	})
}
