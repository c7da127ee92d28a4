// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/island/internal/models"
	"github.com/tomtom215/island/internal/recommend"
)

// DefaultSimilarLimit is the default number of recommendations.
const DefaultSimilarLimit = 10

// similarTitleMaxLen is the title width of --human output.
const similarTitleMaxLen = 60

var (
	similarLimit     int
	similarAlgorithm string
	similarRandom    bool
)

func init() {
	similarCmd.Flags().IntVarP(&similarLimit, "num", "n", DefaultSimilarLimit, "Number of similar works")
	similarCmd.Flags().StringVar(&similarAlgorithm, "algorithm", "", "Ranker: diffusion or randomwalk (default: recommend.algorithm)")
	similarCmd.Flags().BoolVar(&similarRandom, "random", false, "Pick a random work instead of WORK_ID")
	rootCmd.AddCommand(similarCmd)
}

var similarCmd = &cobra.Command{
	Use:   "similar [WORK_ID]",
	Short: "List works that share staff with a work",
	Long: `List works that share staff with a work, most related first.

Unknown works and works without shared staff produce an empty list.

Usage:
  island similar 1234
  island similar 1234 -n 20 --algorithm randomwalk
  island similar --random --human`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSimilar,
}

// similarQuery holds the parsed command line of `island similar`.
type similarQuery struct {
	work   recommend.WorkID
	random bool
	num    int
}

func parseSimilarArgs(args []string, random bool, num int) (similarQuery, error) {
	q := similarQuery{random: random, num: num}
	if num < 1 {
		return q, fmt.Errorf("-n must be at least 1, got %d", num)
	}
	switch {
	case random && len(args) > 0:
		return q, errors.New("WORK_ID and --random are mutually exclusive")
	case random:
		return q, nil
	case len(args) == 0:
		return q, errors.New("WORK_ID is required unless --random is set")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return q, fmt.Errorf("invalid WORK_ID %q: %w", args[0], err)
	}
	q.work = recommend.WorkID(id)
	return q, nil
}

func runSimilar(cmd *cobra.Command, args []string) error {
	q, err := parseSimilarArgs(args, similarRandom, similarLimit)
	if err != nil {
		return err
	}

	rc := recommendConfig(&cfg.Recommend)
	if similarAlgorithm != "" {
		rc.Algorithm = similarAlgorithm
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeWithLog(db, "database")

	ctx := cmd.Context()
	model, err := buildModel(ctx, db, rc)
	if err != nil {
		return err
	}

	if q.random {
		w, ok := model.RandomWork(rand.New(rand.NewSource(time.Now().UnixNano()))) //nolint:gosec // not security sensitive
		if !ok {
			return dataError(errors.New("no works in the staff graph; run `island fetch staffs` first"))
		}
		q.work = w
	}

	result, err := similarResult(ctx, db, model, q.work, q.num)
	if err != nil {
		return err
	}
	return outputSimilar(result)
}

// titleSource resolves work titles. *database.DB implements it.
type titleSource interface {
	WorkTitles(ctx context.Context, ids []recommend.WorkID) (map[recommend.WorkID]string, error)
}

// similarResult ranks num works for work and attaches their titles.
// Works without a stored title are shown as UNKNOWN.
func similarResult(ctx context.Context, titles titleSource, model *recommend.Model, work recommend.WorkID, num int) (*models.SimilarResult, error) {
	ranked := model.SimilarItems(work, num)

	ids := make([]recommend.WorkID, 0, len(ranked)+1)
	ids = append(ids, work)
	for _, sw := range ranked {
		ids = append(ids, sw.Work)
	}
	names, err := titles.WorkTitles(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load titles: %w", err)
	}
	title := func(id recommend.WorkID) string {
		if t, ok := names[id]; ok && t != "" {
			return t
		}
		return models.UnknownTitle
	}

	res := &models.SimilarResult{
		WorkID:    int64(work),
		Title:     title(work),
		Algorithm: model.Algorithm(),
		Items:     make([]models.SimilarItem, 0, len(ranked)),
	}
	for _, sw := range ranked {
		res.Items = append(res.Items, models.SimilarItem{
			WorkID: int64(sw.Work),
			Title:  title(sw.Work),
			Score:  sw.Score,
		})
	}
	return res, nil
}

func outputSimilar(res *models.SimilarResult) error {
	return output(res, func() error {
		fmt.Fprintf(stdout, "%d  %s  (%s)\n\n", res.WorkID, res.Title, res.Algorithm)
		if len(res.Items) == 0 {
			fmt.Fprintln(stdout, "No similar works found.")
			return nil
		}
		rows := make([][]string, 0, len(res.Items))
		for i, item := range res.Items {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				strconv.FormatInt(item.WorkID, 10),
				strconv.FormatFloat(item.Score, 'f', 4, 64),
				truncate(item.Title, similarTitleMaxLen),
			})
		}
		return outputTable([]string{"#", "WORK_ID", "SCORE", "TITLE"}, rows)
	})
}
