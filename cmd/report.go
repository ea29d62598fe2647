// =============================================================================
// ACRIS Unit Report - Report Command
// =============================================================================
//
// This file defines the 'report' command, which runs the pipeline for one
// building and writes the report.
//
// COMMAND USAGE:
//   acris-report report [flags]
//
// FLAGS:
//   --block, --lot : Building to report on (default from config)
//   --source       : csv, xlsx, or mongo (default from config)
//   --format       : csv or xlsx report (default from config)
//   --output       : Output directory (default from config)
//   --dry-run      : Build the report without writing it
//
// PROCESSING PIPELINE:
//   1. Load configuration and apply flag overrides
//   2. Load the rented-units list
//   3. Open the record source
//   4. Run the pipeline
//   5. Write the run summary and print the counts
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/acris-unit-report/internal/aggregator"
	"github.com/ginjaninja78/acris-unit-report/internal/config"
	"github.com/ginjaninja78/acris-unit-report/internal/pipeline"
	"github.com/ginjaninja78/acris-unit-report/internal/rented"
	"github.com/ginjaninja78/acris-unit-report/internal/types"
	"github.com/ginjaninja78/acris-unit-report/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

type reportFlags struct {
	block     int64
	lot       int64
	source    string
	format    string
	outputDir string
	dryRun    bool
}

var reportOpts reportFlags

// =============================================================================
// REPORT COMMAND DEFINITION
// =============================================================================

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the per-unit sales report for one building",
	Long: `The report command loads the legals, parties, and master records of one
building, derives one summary row per unit, and writes the report to the
output directory.

Every unit in the building's legal records gets a row, even when it has no
sale on file. Missing amounts and dates are left empty.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().Int64Var(&reportOpts.block, "block", 0, "Tax block of the building")
	reportCmd.Flags().Int64Var(&reportOpts.lot, "lot", 0, "Tax lot of the building")
	reportCmd.Flags().StringVar(&reportOpts.source, "source", "", "Record source: csv, xlsx, or mongo")
	reportCmd.Flags().StringVar(&reportOpts.format, "format", "", "Report format: csv or xlsx")
	reportCmd.Flags().StringVar(&reportOpts.outputDir, "output", "", "Output directory")
	reportCmd.Flags().BoolVar(&reportOpts.dryRun, "dry-run", false, "Build the report without writing any files")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runReport(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	fmt.Fprintln(out, "=== ACRIS Unit Report ===")

	mainConfig, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyReportFlags(cmd, mainConfig); err != nil {
		return err
	}

	logger := newLogger(mainConfig)
	filter := types.Filter{Block: mainConfig.Filter.Block, Lot: mainConfig.Filter.Lot}

	fmt.Fprintf(out, "Building:        block %d, lot %d\n", filter.Block, filter.Lot)
	fmt.Fprintf(out, "Source:          %s\n", mainConfig.Source)

	// =========================================================================
	// STEP 2: LOAD RENTED UNITS
	// =========================================================================

	rentedUnits, err := loadRentedUnits(mainConfig.RentedUnitsFile, logger)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 3: OPEN SOURCE
	// =========================================================================

	ctx := cmd.Context()
	source, cleanup, err := openSource(ctx, mainConfig, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	// =========================================================================
	// STEP 4: RUN PIPELINE
	// =========================================================================

	reportPath := ""
	if !reportOpts.dryRun {
		if err := utils.EnsureDirectories(mainConfig.OutputDir); err != nil {
			return err
		}
		reportPath = pipeline.ReportPath(mainConfig, filter)
	}

	p := pipeline.New(source, rentedUnits, aggregator.OptionsFromConfig(mainConfig), logger)
	result, err := p.Run(ctx, filter, pipeline.NewSink(mainConfig, reportPath, reportOpts.dryRun))
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 5: SUMMARY
	// =========================================================================

	if !reportOpts.dryRun {
		summaryPath, err := utils.WriteSummaryLog(utils.RunSummary{
			RunID:      result.RunID,
			StartTime:  result.Stats.StartTime,
			EndTime:    result.Stats.EndTime,
			Source:     mainConfig.Source,
			Block:      filter.Block,
			Lot:        filter.Lot,
			Legals:     result.Stats.Legals,
			Parties:    result.Stats.Parties,
			Masters:    result.Stats.Masters,
			UnitsSold:  result.Summary.UnitsSold,
			LLCs:       result.Summary.LLCs,
			Rented:     result.Stats.Rented,
			ReportPath: reportPath,
		}, mainConfig.OutputDir)
		if err != nil {
			logger.Warnf("failed to write run summary: %v", err)
		} else {
			logger.Debugf("run summary written to %s", summaryPath)
		}
	}

	fmt.Fprintln(out, "\n=== Report Complete ===")
	fmt.Fprintf(out, "Units sold:      %d\n", result.Summary.UnitsSold)
	fmt.Fprintf(out, "LLCs:            %d\n", result.Summary.LLCs)
	fmt.Fprintf(out, "Rented:          %d\n", result.Stats.Rented)
	if reportOpts.dryRun {
		fmt.Fprintln(out, "Report:          (dry run, nothing written)")
	} else {
		fmt.Fprintf(out, "Report:          %s\n", filepath.Clean(reportPath))
	}
	fmt.Fprintf(out, "Time elapsed:    %s\n", result.Stats.Duration())

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// applyReportFlags overrides configuration with the flags that were set,
// then validates the result again.
func applyReportFlags(cmd *cobra.Command, mainConfig *config.MainConfig) error {
	flags := cmd.Flags()
	if flags.Changed("block") {
		mainConfig.Filter.Block = reportOpts.block
	}
	if flags.Changed("lot") {
		mainConfig.Filter.Lot = reportOpts.lot
	}
	if flags.Changed("source") {
		mainConfig.SetSource(reportOpts.source)
	}
	if flags.Changed("format") {
		mainConfig.OutputFormat = reportOpts.format
	}
	if flags.Changed("output") {
		mainConfig.OutputDir = reportOpts.outputDir
	}

	config.ApplyDefaults(mainConfig)
	if err := config.Validate(mainConfig); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// loadRentedUnits reads the rented-units list. A missing file means no
// unit is rented.
func loadRentedUnits(path string, logger logrus.FieldLogger) (rented.Set, error) {
	if !utils.FileExists(path) {
		logger.Warnf("rented units file %s not found; no unit is marked rented", path)
		return rented.New(), nil
	}

	rentedUnits, err := rented.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debugf("loaded %d rented units from %s", len(rentedUnits), path)
	return rentedUnits, nil
}
