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

	"github.com/tomtom215/island/internal/database"
	"github.com/tomtom215/island/internal/models"
	"github.com/tomtom215/island/internal/progress"
	"github.com/tomtom215/island/internal/recommend"
)

var statsNoGraph bool

func init() {
	statsCmd.Flags().BoolVar(&statsNoGraph, "no-graph", false, "Skip building the staff graph")
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show row counts, staff graph size and fetch checkpoints",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

// StatsResponse is the JSON output of `island stats`.
type StatsResponse struct {
	models.StatsReport
	Checkpoints map[string]*progress.Checkpoint `json:"checkpoints"`
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeWithLog(db, "database")

	counts, err := db.Counts(ctx)
	if err != nil {
		return err
	}
	resp := StatsResponse{}
	for _, table := range database.Tables {
		resp.Tables = append(resp.Tables, models.TableCount{Table: table, Rows: counts[table]})
	}

	if !statsNoGraph {
		credits, err := db.StaffCredits(ctx)
		if err != nil {
			return err
		}
		g := recommend.BuildGraph(recommend.EdgesFromCredits(credits), cfg.Recommend.MinStaffFreq)
		s := g.Stats()
		resp.Graph = &models.GraphSummary{
			Works:            s.Works,
			Staff:            s.Staff,
			DroppedStaff:     s.DroppedStaff,
			Edges:            s.Edges,
			AdjacencyEntries: s.AdjacencyEntries,
			MinStaffFreq:     s.MinStaffFreq,
		}
	}

	tracker, err := openTracker(cfg)
	if err != nil {
		return err
	}
	defer closeWithLog(tracker, "progress")
	if resp.Checkpoints, err = tracker.List(ctx); err != nil {
		return err
	}

	return output(resp, func() error { return outputStatsHuman(&resp) })
}

func outputStatsHuman(resp *StatsResponse) error {
	rows := make([][]string, 0, len(resp.Tables))
	for _, tc := range resp.Tables {
		rows = append(rows, []string{tc.Table, strconv.FormatInt(tc.Rows, 10)})
	}
	if err := outputTable([]string{"TABLE", "ROWS"}, rows); err != nil {
		return err
	}

	if g := resp.Graph; g != nil {
		fmt.Fprintf(stdout, "\nstaff graph (min_staff_freq=%d): %d works, %d staff (%d dropped), %d credits, %d adjacency entries\n",
			g.MinStaffFreq, g.Works, g.Staff, g.DroppedStaff, g.Edges, g.AdjacencyEntries)
	}

	if len(resp.Checkpoints) == 0 {
		return nil
	}
	fmt.Fprintln(stdout)
	rows = rows[:0]
	for _, key := range progress.SortedKeys(resp.Checkpoints) {
		cp := resp.Checkpoints[key]
		rows = append(rows, []string{
			key,
			strconv.Itoa(cp.Page),
			strconv.FormatInt(cp.LastID, 10),
			strconv.FormatInt(cp.Inserted, 10),
			strconv.FormatBool(cp.Done),
			cp.UpdatedAt.Local().Format(time.DateTime),
		})
	}
	return outputTable([]string{"CHECKPOINT", "PAGE", "LAST_ID", "INSERTED", "DONE", "UPDATED"}, rows)
}
