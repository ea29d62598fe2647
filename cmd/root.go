// =============================================================================
// ACRIS Unit Report - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (acris-report)
//   ├── reportCmd   (acris-report report)
//   ├── importCmd   (acris-report import)
//   ├── validateCmd (acris-report validate)
//   ├── classifyCmd (acris-report classify)
//   └── versionCmd  (acris-report version)
//
// CONFIGURATION:
//   The root command owns the global flags (--config, --verbose). Commands
//   that need configuration call loadConfig, which falls back to the
//   defaults when the default config.yaml is absent.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/acris-unit-report/internal/config"
	"github.com/ginjaninja78/acris-unit-report/internal/logging"
	"github.com/ginjaninja78/acris-unit-report/internal/records"
	"github.com/ginjaninja78/acris-unit-report/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// defaultConfigFile is used when --config is not given.
const defaultConfigFile = "config.yaml"

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging, which also dumps every derived row.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "acris-report",
	Short: "ACRIS Unit Report - Per-unit sales summary for one building",

	Long: `ACRIS Unit Report joins the ACRIS real property datasets (legals, parties,
and master records) for one building and writes one summary row per unit:
floor, line, layout, sale amount, sale date, buyers, entity ownership, and
rental status.

Records can be read from CSV or XLSX exports, or from a MongoDB database
loaded with the import command.

Example Usage:
  acris-report report                          # Report on the configured building
  acris-report report --block 149 --lot 1102   # Report on another building
  acris-report import --drop                   # Load the CSV exports into MongoDB
  acris-report validate                        # Check configuration and inputs
  acris-report classify 15A 42E                # Show the layout of units`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		defaultConfigFile,
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging, including every derived row",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfig reads the configuration file. A missing default file yields
// the built-in defaults; a missing file named with --config is an error.
func loadConfig(cmd *cobra.Command) (*config.MainConfig, error) {
	if !utils.FileExists(cfgFile) && !cmd.Flags().Changed("config") {
		return config.Default(), nil
	}

	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}
	return mainConfig, nil
}

// newLogger builds the run logger. Logs go to stderr so stdout carries only
// command output.
func newLogger(mainConfig *config.MainConfig) *logrus.Logger {
	return logging.New(os.Stderr, mainConfig.LogLevel, verbose)
}

// openSource returns the configured record source. The returned cleanup
// must be called when the source is no longer needed.
func openSource(ctx context.Context, mainConfig *config.MainConfig, logger logrus.FieldLogger) (records.Source, func(), error) {
	if mainConfig.Source != config.SourceMongo {
		return records.NewFileSource(mainConfig, logger), func() {}, nil
	}

	client, err := records.ConnectMongo(ctx, mainConfig.Mongo)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Warnf("failed to disconnect from MongoDB: %v", err)
		}
	}

	timeout := time.Duration(mainConfig.Mongo.TimeoutSeconds) * time.Second
	source := records.NewMongoSource(client.Database(mainConfig.Mongo.Database), mainConfig.Mongo.Collections, timeout, logger)
	return source, cleanup, nil
}
