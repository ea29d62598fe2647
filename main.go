// =============================================================================
// ACRIS Unit Report - Main Entry Point
// =============================================================================
//
// USAGE:
//   acris-report report    - Build the per-unit report for one building
//   acris-report import    - Load the CSV exports into MongoDB
//   acris-report validate  - Check configuration and inputs
//   acris-report classify  - Show the layout of unit identifiers
//   acris-report version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : record loading, aggregation, and report writing
//   - pkg/       : shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/acris-unit-report/cmd"
)

func main() {
	cmd.Execute()
}
