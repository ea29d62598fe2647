// =============================================================================
// ACRIS Unit Report - Import Command
// =============================================================================
//
// This file defines the 'import' command, which loads the delimited dataset
// exports into the MongoDB collections the mongo source reads.
//
// COMMAND USAGE:
//   acris-report import [legals|parties|masters ...] [flags]
//
// FLAGS:
//   --drop       : Drop each collection before loading it
//   --batch-size : Documents per insert
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/acris-unit-report/internal/config"
	"github.com/ginjaninja78/acris-unit-report/internal/records"
)

var (
	importDrop      bool
	importBatchSize int
)

var importCmd = &cobra.Command{
	Use:   "import [legals|parties|masters ...]",
	Short: "Load the CSV dataset exports into MongoDB",
	Long: `The import command reads the legals, parties, and master CSV exports from
the data directory and inserts them into the configured MongoDB collections.
Column headers are matched by name, so column order does not matter.

With no arguments all three datasets are imported.`,

	ValidArgs: []string{string(records.DatasetLegals), string(records.DatasetParties), string(records.DatasetMasters)},
	Args:      cobra.OnlyValidArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importDrop, "drop", false, "Drop each collection before loading it")
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", records.DefaultBatchSize, "Documents per insert")
}

func runImport(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	mainConfig, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(mainConfig)

	datasets := records.Datasets
	if len(args) > 0 {
		datasets = make([]records.Dataset, len(args))
		for i, arg := range args {
			datasets[i] = records.Dataset(arg)
		}
	}

	ctx := cmd.Context()
	client, err := records.ConnectMongo(ctx, mainConfig.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			logger.Warnf("failed to disconnect from MongoDB: %v", err)
		}
	}()

	importer := records.NewImporter(client.Database(mainConfig.Mongo.Database), mainConfig.Mongo.Collections, importBatchSize, logger)

	fmt.Fprintln(out, "=== ACRIS Import ===")
	for _, dataset := range datasets {
		path := filepath.Join(mainConfig.DataDir, dataset.Pick(mainConfig.Files))
		if strings.EqualFold(filepath.Ext(path), ".xlsx") {
			return fmt.Errorf("%s: import reads delimited files only", path)
		}

		stats, err := importFile(cmd, importer, dataset, path, mainConfig.CSVSettings)
		if err != nil {
			fmt.Fprintf(out, "  ✗ %s: %v\n", dataset, err)
			return err
		}
		fmt.Fprintf(out, "  ✓ %s: %d inserted, %d skipped\n", dataset, stats.Inserted, stats.Skipped)
	}

	return nil
}

func importFile(cmd *cobra.Command, importer *records.Importer, dataset records.Dataset, path string, settings config.CSVSettings) (records.ImportStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return records.ImportStats{Dataset: dataset}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return importer.Import(cmd.Context(), dataset, file, settings, importDrop)
}
