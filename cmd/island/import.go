// Island - Staff-Affinity Anime Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/island

package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tomtom215/island/internal/config"
	"github.com/tomtom215/island/internal/legacyimport"
	"github.com/tomtom215/island/internal/validation"
)

var (
	importDir    string
	importTables []string
	importBatch  int
	importFresh  bool
)

func init() {
	importCmd.Flags().StringVar(&importDir, "dir", "", "Directory holding works.db, reviews.db, records.db, staffs.db (default: import.dataset_dir)")
	importCmd.Flags().StringSliceVar(&importTables, "tables", nil, "Tables to import (default: import.tables)")
	importCmd.Flags().IntVar(&importBatch, "batch-size", 0, "Rows per batch (default: import.batch_size)")
	importCmd.Flags().BoolVar(&importFresh, "fresh", false, "Ignore saved checkpoints and import from the first row")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import legacy per-table SQLite datasets",
	Long: `Import legacy per-table SQLite datasets into the local database.

Each table is read from <dir>/<table>.db in id order. Progress is
checkpointed after every batch, so a repeated import only copies new rows.
Missing files are skipped.

Usage:
  island import
  island import --dir /backups/dataset --tables staffs,works`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

// ImportResponse is the JSON output of `island import`.
type ImportResponse struct {
	Results []*legacyimport.TableResult `json:"results"`
}

func runImport(cmd *cobra.Command, _ []string) error {
	icfg := importConfig(&cfg.Import)
	if err := validation.ValidateStruct(icfg); err != nil {
		return configError(err)
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

	imp := legacyimport.NewImporter(icfg, db, tracker)
	results, importErr := imp.Import(cmd.Context(), legacyimport.Options{Fresh: importFresh})

	if err := outputImportResults(results); err != nil {
		return err
	}
	if importErr != nil {
		return dataError(importErr)
	}
	return nil
}

// importConfig applies the command flags to a copy of the import section.
func importConfig(base *config.ImportConfig) *config.ImportConfig {
	icfg := *base
	if importDir != "" {
		icfg.DatasetDir = importDir
	}
	if len(importTables) > 0 {
		icfg.Tables = importTables
	}
	if importBatch > 0 {
		icfg.BatchSize = importBatch
	}
	return &icfg
}

func outputImportResults(results []*legacyimport.TableResult) error {
	return output(ImportResponse{Results: results}, func() error {
		rows := make([][]string, 0, len(results))
		for _, r := range results {
			status := "ok"
			if r.Missing {
				status = "missing"
			}
			rows = append(rows, []string{
				r.Table,
				status,
				strconv.FormatInt(r.Read, 10),
				strconv.FormatInt(r.Inserted, 10),
				strconv.FormatInt(r.Existing, 10),
				strconv.FormatInt(r.Failed, 10),
				strconv.FormatInt(r.LastID, 10),
			})
		}
		return outputTable([]string{"TABLE", "STATUS", "READ", "INSERTED", "EXISTING", "FAILED", "LAST_ID"}, rows)
	})
}
