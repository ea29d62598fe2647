package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, SourceCSV, cfg.Source)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "real_property_legals.csv", cfg.Files.Legals)
	assert.Equal(t, "real_property_parties.csv", cfg.Files.Parties)
	assert.Equal(t, "real_property_master.csv", cfg.Files.Masters)
	assert.Equal(t, int64(149), cfg.Filter.Block)
	assert.Equal(t, int64(1102), cfg.Filter.Lot)
	assert.Equal(t, DefaultExcludedBuyer, cfg.ExcludedBuyer)
	assert.Equal(t, []string{"LLC", "LTD", "TRUST"}, cfg.EntityMarkers)
	assert.Equal(t, UnitPolicyLenient, cfg.UnitPolicy)
	assert.Equal(t, FormatCSV, cfg.OutputFormat)
	assert.Equal(t, "report.csv", cfg.ReportNameFormat)
	assert.Equal(t, 2, cfg.CSVSettings.DataStartRow)
	assert.Equal(t, "acris", cfg.Mongo.Database)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestDefault_DoesNotShareMarkers(t *testing.T) {
	cfg := Default()
	cfg.EntityMarkers[0] = "CHANGED"

	assert.Equal(t, "LLC", DefaultEntityMarkers[0])
}

func TestParseMainConfig_Overrides(t *testing.T) {
	data := []byte(`
source: XLSX
data_dir: /records
filter:
  block: 12
  lot: 34
output_format: xlsx
unit_policy: strict
excluded_buyer: SPONSOR LLC
entity_markers: [INC]
csv_settings:
  delimiter: "|"
  header_rows: 2
`)

	cfg, err := ParseMainConfig(data)
	require.NoError(t, err)

	assert.Equal(t, SourceXLSX, cfg.Source)
	assert.Equal(t, "/records", cfg.DataDir)
	assert.Equal(t, "real_property_legals.xlsx", cfg.Files.Legals)
	assert.Equal(t, int64(12), cfg.Filter.Block)
	assert.Equal(t, int64(34), cfg.Filter.Lot)
	assert.Equal(t, FormatXLSX, cfg.OutputFormat)
	assert.Equal(t, "report.xlsx", cfg.ReportNameFormat)
	assert.Equal(t, UnitPolicyStrict, cfg.UnitPolicy)
	assert.Equal(t, "SPONSOR LLC", cfg.ExcludedBuyer)
	assert.Equal(t, []string{"INC"}, cfg.EntityMarkers)
	assert.Equal(t, "|", cfg.CSVSettings.Delimiter)
	assert.Equal(t, 3, cfg.CSVSettings.DataStartRow)
}

func TestParseMainConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown source", "source: postgres"},
		{"unknown format", "output_format: json"},
		{"unknown policy", "unit_policy: maybe"},
		{"data before headers", "csv_settings:\n  header_rows: 2\n  data_start_row: 2"},
		{"bad yaml", "filter: [1, 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMainConfig([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadMainConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: mongo\n"), 0644))

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)
	assert.Equal(t, SourceMongo, cfg.Source)
	assert.Equal(t, "realpropertylegals", cfg.Mongo.Collections.Legals)
}

func TestLoadMainConfig_MissingFile(t *testing.T) {
	_, err := LoadMainConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSetSource(t *testing.T) {
	cfg := Default()
	require.Equal(t, "real_property_legals.csv", cfg.Files.Legals)

	cfg.SetSource("XLSX")
	assert.Equal(t, SourceXLSX, cfg.Source)
	assert.Equal(t, RecordFiles{
		Legals:  "real_property_legals.xlsx",
		Parties: "real_property_parties.xlsx",
		Masters: "real_property_master.xlsx",
	}, cfg.Files)

	cfg.SetSource(SourceCSV)
	assert.Equal(t, "real_property_master.csv", cfg.Files.Masters)
}

func TestSetSource_KeepsExplicitFiles(t *testing.T) {
	cfg, err := ParseMainConfig([]byte("files:\n  legals: legals_2016.xlsx\n"))
	require.NoError(t, err)

	cfg.SetSource(SourceXLSX)
	assert.Equal(t, "legals_2016.xlsx", cfg.Files.Legals)
	assert.Equal(t, "real_property_parties.xlsx", cfg.Files.Parties)
	assert.NoError(t, Validate(cfg))
}
