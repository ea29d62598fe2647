// =============================================================================
// ACRIS Unit Report - Pipeline
// =============================================================================
//
// This module runs one report from start to finish.
//
// PIPELINE:
//   1. Load the building's records from the source
//   2. Aggregate one summary row per unit
//   3. Assemble the report and write it to the sink
//
// The whole building is loaded before aggregation starts and units are
// summarized one at a time. Only the load honors ctx.
//
// =============================================================================

package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/acris-unit-report/internal/aggregator"
	"github.com/ginjaninja78/acris-unit-report/internal/config"
	"github.com/ginjaninja78/acris-unit-report/internal/records"
	"github.com/ginjaninja78/acris-unit-report/internal/rented"
	"github.com/ginjaninja78/acris-unit-report/internal/report"
	"github.com/ginjaninja78/acris-unit-report/internal/types"
	"github.com/ginjaninja78/acris-unit-report/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result is the outcome of one run.
type Result struct {
	// RunID identifies the run in logs and the run summary.
	RunID string

	// Rows are the report rows in output order.
	Rows []types.UnitSummary

	// Summary is the operator-facing count.
	Summary report.Summary

	Stats Stats
}

// Stats describes what a run read and produced.
type Stats struct {
	Legals  int
	Parties int
	Masters int

	// Rented is the number of report rows flagged as rented.
	Rented int

	StartTime time.Time
	EndTime   time.Time
}

// Duration is the wall time of the run.
func (s Stats) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// =============================================================================
// PIPELINE STRUCTURE
// =============================================================================

// Pipeline wires a record source, the aggregator, and the assembler.
type Pipeline struct {
	source      records.Source
	rentedUnits rented.Set
	aggregator  *aggregator.Aggregator
	assembler   *report.Assembler
	logger      logrus.FieldLogger
}

// New creates a pipeline.
//
// PARAMETERS:
//   - source: Where the records are loaded from.
//   - rentedUnits: Units flagged as rented in the report.
//   - opts: Cleaning options for the aggregator.
//   - logger: Run logger.
func New(source records.Source, rentedUnits rented.Set, opts aggregator.Options, logger logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		source:      source,
		rentedUnits: rentedUnits,
		aggregator:  aggregator.New(opts, logger),
		assembler:   report.NewAssembler(logger),
		logger:      logger,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run produces the report for one building and writes it to sink.
//
// RETURNS:
//   - The run result. On a sink failure the rows and summary are still set.
//   - An error from loading, aggregation, or the sink.
func (p *Pipeline) Run(ctx context.Context, filter types.Filter, sink report.Sink) (Result, error) {
	result := Result{
		RunID: uuid.New().String(),
		Stats: Stats{StartTime: time.Now()},
	}
	logger := p.logger.WithField("run", result.RunID)

	// =========================================================================
	// STEP 1: LOAD
	// =========================================================================

	logger.Infof("Loading records for block %d, lot %d", filter.Block, filter.Lot)

	store, err := p.source.Load(ctx, filter)
	if err != nil {
		return result, fmt.Errorf("failed to load records: %w", err)
	}

	result.Stats.Legals = len(store.Legals())
	result.Stats.Parties = len(store.Parties())
	result.Stats.Masters = len(store.Masters())
	logger.Infof("Loaded %d legals, %d parties, %d masters across %d units",
		result.Stats.Legals, result.Stats.Parties, result.Stats.Masters, len(store.Units()))

	// =========================================================================
	// STEP 2: AGGREGATE
	// =========================================================================

	rows, err := p.aggregator.Aggregate(store, p.rentedUnits)
	if err != nil {
		return result, fmt.Errorf("failed to aggregate units: %w", err)
	}
	result.Rows = rows

	for _, row := range rows {
		if row.Rented {
			result.Stats.Rented++
		}
	}

	// =========================================================================
	// STEP 3: ASSEMBLE AND WRITE
	// =========================================================================

	summary, err := p.assembler.Assemble(rows, sink)
	result.Summary = summary
	result.Stats.EndTime = time.Now()
	if err != nil {
		return result, err
	}

	logger.Infof("Report complete in %s", result.Stats.Duration())
	return result, nil
}

// =============================================================================
// SINK SELECTION
// =============================================================================

// NewSink returns the sink for the configured output format. A dry run
// discards the report.
func NewSink(cfg *config.MainConfig, path string, dryRun bool) report.Sink {
	if dryRun {
		return report.DiscardSink{}
	}

	if cfg.OutputFormat == config.FormatXLSX {
		return &report.XLSXSink{Path: path}
	}

	return &report.CSVSink{Path: path}
}

// ReportPath names the report file in the output directory.
func ReportPath(cfg *config.MainConfig, filter types.Filter) string {
	name := utils.GenerateOutputFileName(cfg.ReportNameFormat, "."+cfg.OutputFormat, map[string]string{
		"block": strconv.FormatInt(filter.Block, 10),
		"lot":   strconv.FormatInt(filter.Lot, 10),
	})
	return filepath.Join(cfg.OutputDir, name)
}
