// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tomtom215/island/internal/models"
	"github.com/tomtom215/island/internal/recommend"
)

func init() {
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info WORK_ID",
	Short: "Show the stored title and image of a work",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

// WorkInfo is the JSON output of `island info`.
type WorkInfo struct {
	WorkID   int64    `json:"work_id"`
	Title    string   `json:"title"`
	ImageURL string   `json:"image_url,omitempty"`
	Staff    []string `json:"staff"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid WORK_ID %q: %w", args[0], err)
	}
	work := recommend.WorkID(id)

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeWithLog(db, "database")

	ctx := cmd.Context()
	titles, err := db.WorkTitles(ctx, []recommend.WorkID{work})
	if err != nil {
		return err
	}
	image, _, err := db.WorkImage(ctx, work)
	if err != nil {
		return err
	}
	credits, err := db.StaffCredits(ctx)
	if err != nil {
		return err
	}

	info := WorkInfo{WorkID: id, Title: models.UnknownTitle, ImageURL: image, Staff: []string{}}
	if t, ok := titles[work]; ok && t != "" {
		info.Title = t
	}
	for _, e := range recommend.EdgesFromCredits(credits) {
		if e.Work == work {
			info.Staff = append(info.Staff, e.Staff)
		}
	}

	return output(info, func() error {
		fmt.Fprintf(stdout, "%d  %s\n", info.WorkID, info.Title)
		if info.ImageURL != "" {
			fmt.Fprintf(stdout, "image: %s\n", info.ImageURL)
		}
		for _, s := range info.Staff {
			fmt.Fprintf(stdout, "  %s\n", s)
		}
		return nil
	})
}
