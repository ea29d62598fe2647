// =============================================================================
// ACRIS Unit Report - Configuration Module
// =============================================================================
//
// This module is responsible for loading and validating the report
// configuration. One YAML file describes where the property records come
// from, which building to report on, and where the report goes.
//
// CONFIGURATION FILE (config.yaml):
//   source:            csv | xlsx | mongo
//   data_dir:          directory holding the record files
//   files:             legals / parties / masters file names
//   csv_settings:      delimiter and header layout of the record files
//   mongo:             connection and collection names
//   filter:            block / lot of the building
//   rented_units_file: JSON or YAML list of rented unit identifiers
//   output_*:          report destination, naming, and format
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// Record sources.
const (
	SourceCSV   = "csv"
	SourceXLSX  = "xlsx"
	SourceMongo = "mongo"
)

// Report formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Malformed unit identifier policies.
const (
	// UnitPolicyLenient emits malformed units with empty floor and line.
	UnitPolicyLenient = "lenient"

	// UnitPolicyStrict fails the run on the first malformed unit.
	UnitPolicyStrict = "strict"
)

// DefaultExcludedBuyer is the sponsor entity that sold every unit in the
// building. It appears as a party on each first sale and is not a buyer.
const DefaultExcludedBuyer = "138 WILLOUGHBY LLC"

// DefaultEntityMarkers flag a buyer name as a business entity.
var DefaultEntityMarkers = []string{"LLC", "LTD", "TRUST"}

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the report configuration.
type MainConfig struct {
	// =========================================================================
	// SOURCE SETTINGS
	// =========================================================================

	// Source selects where the records are read from.
	// Valid values: "csv", "xlsx", "mongo"
	// Default: "csv"
	Source string `yaml:"source"`

	// DataDir is the directory holding the record files.
	// Default: "./data"
	DataDir string `yaml:"data_dir"`

	// Files names the three record files inside DataDir.
	Files RecordFiles `yaml:"files"`

	// CSVSettings describes the layout of delimited record files.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// Mongo holds the document store settings used when Source is "mongo"
	// and by the import command.
	Mongo MongoSettings `yaml:"mongo"`

	// =========================================================================
	// REPORT SCOPE
	// =========================================================================

	// Filter selects the building.
	Filter FilterSettings `yaml:"filter"`

	// RentedUnitsFile lists the units currently rented (JSON or YAML).
	// Default: "./units_rented.json"
	RentedUnitsFile string `yaml:"rented_units_file"`

	// ExcludedBuyer is dropped from every buyer list.
	// Default: DefaultExcludedBuyer
	ExcludedBuyer string `yaml:"excluded_buyer"`

	// EntityMarkers are case-sensitive substrings that mark a buyer as an
	// entity rather than a person.
	// Default: DefaultEntityMarkers
	EntityMarkers []string `yaml:"entity_markers"`

	// UnitPolicy decides what happens to unit identifiers too short to
	// carry a floor and a line.
	// Valid values: "lenient", "strict"
	// Default: "lenient"
	UnitPolicy string `yaml:"unit_policy"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputDir is where the report is written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// OutputFormat selects the report sink.
	// Valid values: "csv", "xlsx"
	// Default: "csv"
	OutputFormat string `yaml:"output_format"`

	// ReportNameFormat is the report file name.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {block}     - Filter block
	//   {lot}       - Filter lot
	// Default: "report.csv" (or "report.xlsx")
	ReportNameFormat string `yaml:"report_name_format"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`
}

// RecordFiles names the legal, party, and master record files.
type RecordFiles struct {
	Legals  string `yaml:"legals"`
	Parties string `yaml:"parties"`
	Masters string `yaml:"masters"`
}

// CSVSettings contains settings for parsing delimited record files.
type CSVSettings struct {
	// Delimiter is the field separator.
	// Common values: "," (comma), "|" (pipe), "\t" (tab)
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// HeaderRows is the number of header rows.
	// Default: 1
	HeaderRows int `yaml:"header_rows"`

	// DataStartRow is the 1-based row where data begins.
	// Default: HeaderRows + 1
	DataStartRow int `yaml:"data_start_row"`
}

// MongoSettings holds the document store connection.
type MongoSettings struct {
	// URI is the connection string.
	// Default: "mongodb://127.0.0.1:27017"
	URI string `yaml:"uri"`

	// Database is the database name.
	// Default: "acris"
	Database string `yaml:"database"`

	// Collections names the three record collections.
	Collections RecordFiles `yaml:"collections"`

	// TimeoutSeconds bounds connecting and each query.
	// Default: 30
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// FilterSettings is the block and lot of the building.
type FilterSettings struct {
	Block int64 `yaml:"block"`
	Lot   int64 `yaml:"lot"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct with defaults applied.
//   - An error if the file cannot be read, parsed, or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseMainConfig(data)
}

// ParseMainConfig parses configuration YAML, applies defaults, and
// validates the result.
func ParseMainConfig(data []byte) (*MainConfig, error) {
	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	ApplyDefaults(&config)

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns a configuration with every default applied. It is used
// when no configuration file exists.
func Default() *MainConfig {
	config := &MainConfig{}
	ApplyDefaults(config)
	return config
}

// defaultFiles names the record files of a source. The mongo source uses
// the CSV names, which the import command reads.
func defaultFiles(source string) RecordFiles {
	ext := ".csv"
	if source == SourceXLSX {
		ext = ".xlsx"
	}
	return RecordFiles{
		Legals:  "real_property_legals" + ext,
		Parties: "real_property_parties" + ext,
		Masters: "real_property_master" + ext,
	}
}

// SetSource switches the record source. File names still at the previous
// source's defaults follow the new source; names set explicitly are kept.
func (config *MainConfig) SetSource(source string) {
	source = strings.ToLower(source)
	previous := defaultFiles(config.Source)
	next := defaultFiles(source)

	if config.Files.Legals == previous.Legals {
		config.Files.Legals = next.Legals
	}
	if config.Files.Parties == previous.Parties {
		config.Files.Parties = next.Parties
	}
	if config.Files.Masters == previous.Masters {
		config.Files.Masters = next.Masters
	}

	config.Source = source
}

// ApplyDefaults sets default values for any unset configuration options.
func ApplyDefaults(config *MainConfig) {
	if config.Source == "" {
		config.Source = SourceCSV
	}
	config.Source = strings.ToLower(config.Source)

	if config.DataDir == "" {
		config.DataDir = "./data"
	}

	files := defaultFiles(config.Source)
	if config.Files.Legals == "" {
		config.Files.Legals = files.Legals
	}
	if config.Files.Parties == "" {
		config.Files.Parties = files.Parties
	}
	if config.Files.Masters == "" {
		config.Files.Masters = files.Masters
	}

	// CSV settings.
	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = ","
	}
	if config.CSVSettings.HeaderRows == 0 {
		config.CSVSettings.HeaderRows = 1
	}
	if config.CSVSettings.DataStartRow == 0 {
		config.CSVSettings.DataStartRow = config.CSVSettings.HeaderRows + 1
	}

	// Mongo settings.
	if config.Mongo.URI == "" {
		config.Mongo.URI = "mongodb://127.0.0.1:27017"
	}
	if config.Mongo.Database == "" {
		config.Mongo.Database = "acris"
	}
	if config.Mongo.Collections.Legals == "" {
		config.Mongo.Collections.Legals = "realpropertylegals"
	}
	if config.Mongo.Collections.Parties == "" {
		config.Mongo.Collections.Parties = "realpropertyparties"
	}
	if config.Mongo.Collections.Masters == "" {
		config.Mongo.Collections.Masters = "realpropertymasters"
	}
	if config.Mongo.TimeoutSeconds == 0 {
		config.Mongo.TimeoutSeconds = 30
	}

	// Report scope.
	if config.Filter.Block == 0 {
		config.Filter.Block = 149
	}
	if config.Filter.Lot == 0 {
		config.Filter.Lot = 1102
	}
	if config.RentedUnitsFile == "" {
		config.RentedUnitsFile = "./units_rented.json"
	}
	if config.ExcludedBuyer == "" {
		config.ExcludedBuyer = DefaultExcludedBuyer
	}
	if len(config.EntityMarkers) == 0 {
		config.EntityMarkers = append([]string(nil), DefaultEntityMarkers...)
	}
	if config.UnitPolicy == "" {
		config.UnitPolicy = UnitPolicyLenient
	}
	config.UnitPolicy = strings.ToLower(config.UnitPolicy)

	// Output settings.
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.OutputFormat == "" {
		config.OutputFormat = FormatCSV
	}
	config.OutputFormat = strings.ToLower(config.OutputFormat)
	if config.ReportNameFormat == "" {
		config.ReportNameFormat = "report." + config.OutputFormat
	}

	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
}

// Validate checks enumerated settings. Directories are created by the
// command that needs them, not here.
func Validate(config *MainConfig) error {
	switch config.Source {
	case SourceCSV, SourceXLSX, SourceMongo:
	default:
		return fmt.Errorf("unknown source %q (want csv, xlsx, or mongo)", config.Source)
	}

	switch config.OutputFormat {
	case FormatCSV, FormatXLSX:
	default:
		return fmt.Errorf("unknown output format %q (want csv or xlsx)", config.OutputFormat)
	}

	switch config.UnitPolicy {
	case UnitPolicyLenient, UnitPolicyStrict:
	default:
		return fmt.Errorf("unknown unit policy %q (want lenient or strict)", config.UnitPolicy)
	}

	if config.CSVSettings.HeaderRows < 1 {
		return fmt.Errorf("csv_settings.header_rows must be at least 1")
	}
	if config.CSVSettings.DataStartRow <= config.CSVSettings.HeaderRows {
		return fmt.Errorf("csv_settings.data_start_row must come after the header rows")
	}

	if config.Mongo.TimeoutSeconds < 0 {
		return fmt.Errorf("mongo.timeout_seconds must not be negative")
	}

	return nil
}
