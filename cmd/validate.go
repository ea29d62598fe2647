// =============================================================================
// ACRIS Unit Report - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration
// and the inputs without building a report.
//
// CHECKS:
//   - The configuration file parses and its settings are known values
//   - File sources: each record file exists and has the columns it needs
//   - Mongo source: the database answers a ping
//   - The rented-units file, if present, is a list of units
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/acris-unit-report/internal/config"
	"github.com/ginjaninja78/acris-unit-report/internal/records"
	"github.com/ginjaninja78/acris-unit-report/internal/rented"
	"github.com/ginjaninja78/acris-unit-report/pkg/utils"
)

// errValidationFailed is returned after the individual failures are printed.
var errValidationFailed = errors.New("validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check configuration and inputs without building a report",

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	mainConfig, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintf(out, "  ✗ configuration: %v\n", err)
		return errValidationFailed
	}
	fmt.Fprintf(out, "  ✓ configuration (source %s, block %d, lot %d)\n",
		mainConfig.Source, mainConfig.Filter.Block, mainConfig.Filter.Lot)

	logger := newLogger(mainConfig)
	failed := false

	if mainConfig.Source == config.SourceMongo {
		client, err := records.ConnectMongo(cmd.Context(), mainConfig.Mongo)
		if err != nil {
			fmt.Fprintf(out, "  ✗ mongo: %v\n", err)
			failed = true
		} else {
			fmt.Fprintf(out, "  ✓ mongo: %s\n", mainConfig.Mongo.URI)
			_ = client.Disconnect(cmd.Context())
		}
	} else {
		if err := records.NewFileSource(mainConfig, logger).Check(); err != nil {
			fmt.Fprintf(out, "  ✗ record files:\n%v\n", err)
			failed = true
		} else {
			fmt.Fprintf(out, "  ✓ record files in %s\n", mainConfig.DataDir)
		}
	}

	if utils.FileExists(mainConfig.RentedUnitsFile) {
		rentedUnits, err := rented.Load(mainConfig.RentedUnitsFile)
		if err != nil {
			fmt.Fprintf(out, "  ✗ rented units: %v\n", err)
			failed = true
		} else {
			fmt.Fprintf(out, "  ✓ rented units: %d listed (%s)\n",
				len(rentedUnits), strings.Join(rentedUnits.Units(), ", "))
		}
	} else {
		fmt.Fprintf(out, "  - rented units: %s not found, no unit will be marked rented\n", mainConfig.RentedUnitsFile)
	}

	if failed {
		return errValidationFailed
	}
	return nil
}
