// =============================================================================
// ACRIS Unit Report - File Manager Utility
// =============================================================================
//
// This module provides the file utilities the report run needs:
//   - Directory management
//   - Report file naming
//   - Run summary logs written next to the report
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates every directory that does not exist yet.
//
// RETURNS:
//   - An error if any directory cannot be created.
func EnsureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName fills in a report file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//     Placeholders:
//     {uuid}      - A random UUID
//     {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//     {date}      - Current date (YYYYMMDD)
//     plus one placeholder per params key, e.g. {block}
//   - extension: The extension the name must end with (".csv").
//   - params: A map of placeholder values.
//
// RETURNS:
//   - The generated file name.
//
// EXAMPLE:
//   format: "units_{block}_{lot}_{timestamp}"
//   params: {"block": "149", "lot": "1102"}
//   output: "units_149_1102_20240115_143022.csv"
func GenerateOutputFileName(format, extension string, params map[string]string) string {
	return expandFileName(format, extension, params, time.Now(), uuid.New())
}

func expandFileName(format, extension string, params map[string]string, now time.Time, id uuid.UUID) string {
	pairs := []string{
		"{uuid}", id.String(),
		"{timestamp}", now.Format("20060102_150405"),
		"{date}", now.Format("20060102"),
	}
	for key, value := range params {
		pairs = append(pairs, "{"+key+"}", value)
	}

	result := strings.NewReplacer(pairs...).Replace(format)

	if extension != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(extension)) {
		result = strings.TrimSuffix(result, filepath.Ext(result)) + extension
	}

	return result
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary describes one report run.
type RunSummary struct {
	RunID      string
	StartTime  time.Time
	EndTime    time.Time
	Source     string
	Block      int64
	Lot        int64
	Legals     int
	Parties    int
	Masters    int
	UnitsSold  int
	LLCs       int
	Rented     int
	ReportPath string
}

// WriteSummaryLog writes a run summary to a text file in outputDir.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary RunSummary, outputDir string) (string, error) {
	timestamp := summary.StartTime.Format("20060102_150405")
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("run_summary_%s.txt", timestamp))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	reportPath := summary.ReportPath
	if reportPath == "" {
		reportPath = "(dry run)"
	}

	fmt.Fprintf(writer, "ACRIS Unit Report - Run Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Source:         %s\n"+
		"  Block / Lot:    %d / %d\n\n"+
		"Records:\n"+
		"  Legals:         %d\n"+
		"  Parties:        %d\n"+
		"  Masters:        %d\n\n"+
		"Report:\n"+
		"  Units Sold:     %d\n"+
		"  LLCs:           %d\n"+
		"  Rented:         %d\n"+
		"  Output:         %s\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.Source,
		summary.Block, summary.Lot,
		summary.Legals, summary.Parties, summary.Masters,
		summary.UnitsSold, summary.LLCs, summary.Rented,
		reportPath)

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}
