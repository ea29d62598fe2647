package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags()
	})

	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags puts every flag back to its default so one test's flags do
// not leak into the next run of the shared command tree.
func resetFlags() {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	for _, c := range append([]*cobra.Command{rootCmd}, rootCmd.Commands()...) {
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
	}
}

func writeWorkbook(t *testing.T, dir, name string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(filepath.Join(dir, name)))
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestClassifyCommand(t *testing.T) {
	out, err := execute(t, "classify", "15A", "42D", "39A", "5A")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[1], "2/2")
	assert.Contains(t, lines[2], "3/3")
	assert.Contains(t, lines[3], "unclassified")
	assert.Contains(t, lines[4], "malformed")
}

func TestClassifyCommand_RequiresUnit(t *testing.T) {
	_, err := execute(t, "classify")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ACRIS Unit Report")
	assert.Contains(t, out, "Version:    "+Version)
}

func TestReportCommand(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	outputDir := filepath.Join(dir, "output")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))

	writeFixture(t, dataDir, "real_property_legals.csv", "DOCUMENT ID,BLOCK,LOT,UNIT\n"+
		"1,149,1102,15A\n"+
		"2,149,1102,42D\n")
	writeFixture(t, dataDir, "real_property_parties.csv", "DOCUMENT ID,RECORD TYPE,PARTY TYPE,NAME\n"+
		"1,P,2,JANE DOE\n"+
		"2,P,2,ACME TRUST\n")
	writeFixture(t, dataDir, "real_property_master.csv", "DOCUMENT ID,RECORDED / FILED,DOC. AMOUNT\n"+
		"1,03/01/2020 12:00:00 AM,12345000\n")
	rentedPath := writeFixture(t, dir, "units_rented.json", `["42D"]`)

	configPath := writeFixture(t, dir, "config.yaml", "data_dir: "+dataDir+"\n"+
		"output_dir: "+outputDir+"\n"+
		"rented_units_file: "+rentedPath+"\n"+
		"log_level: error\n")

	out, err := execute(t, "report", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Units sold:      2")
	assert.Contains(t, out, "LLCs:            1")
	assert.Contains(t, out, "Rented:          1")

	data, err := os.ReadFile(filepath.Join(outputDir, "report.csv"))
	require.NoError(t, err)
	assert.Equal(t, "unit,floor,line,beds,baths,date,amount,isLLC,rented,buyers\n"+
		`15A,15,A,2,2,03/01/20,12.35,false,false,"[""JANE DOE""]"`+"\n"+
		`42D,42,D,3,3,,,true,true,"[""ACME TRUST""]"`+"\n", string(data))

	summaries, err := filepath.Glob(filepath.Join(outputDir, "run_summary_*.txt"))
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestReportCommand_MissingConfig(t *testing.T) {
	_, err := execute(t, "report", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load main config")
}

func TestReportCommand_SourceFlagXLSX(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	outputDir := filepath.Join(dir, "output")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))

	writeWorkbook(t, dataDir, "real_property_legals.xlsx", [][]interface{}{
		{"DOCUMENT ID", "BLOCK", "LOT", "UNIT"},
		{"1", "149", "1102", "15A"},
	})
	writeWorkbook(t, dataDir, "real_property_parties.xlsx", [][]interface{}{
		{"DOCUMENT ID", "RECORD TYPE", "PARTY TYPE", "NAME"},
		{"1", "P", "2", "JANE DOE"},
	})
	writeWorkbook(t, dataDir, "real_property_master.xlsx", [][]interface{}{
		{"DOCUMENT ID", "RECORDED / FILED", "DOC. AMOUNT"},
		{"1", "03/01/2020", "12345000"},
	})

	// No files section: the names follow the source chosen on the command line.
	configPath := writeFixture(t, dir, "config.yaml", "data_dir: "+dataDir+"\n"+
		"output_dir: "+outputDir+"\n"+
		"rented_units_file: "+filepath.Join(dir, "absent.json")+"\n"+
		"log_level: error\n")

	out, err := execute(t, "report", "--config", configPath, "--source", "xlsx")
	require.NoError(t, err)
	assert.Contains(t, out, "Units sold:      1")

	data, err := os.ReadFile(filepath.Join(outputDir, "report.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `15A,15,A,2,2,03/01/20,12.35,false,false,"[""JANE DOE""]"`)
}

func validateFixture(t *testing.T, parties, rentedUnits string) string {
	t.Helper()
	dir := t.TempDir()

	writeFixture(t, dir, "real_property_legals.csv", "DOCUMENT ID,BLOCK,LOT,UNIT\n1,149,1102,15A\n")
	writeFixture(t, dir, "real_property_parties.csv", parties)
	writeFixture(t, dir, "real_property_master.csv", "DOCUMENT ID,RECORDED / FILED,DOC. AMOUNT\n1,,\n")
	rentedPath := writeFixture(t, dir, "units_rented.json", rentedUnits)

	return writeFixture(t, dir, "config.yaml", "data_dir: "+dir+"\n"+
		"rented_units_file: "+rentedPath+"\n"+
		"log_level: error\n")
}

func TestValidateCommand(t *testing.T) {
	configPath := validateFixture(t,
		"DOCUMENT ID,RECORD TYPE,PARTY TYPE,NAME\n1,P,2,JANE DOE\n",
		`["21C", "17B"]`)

	out, err := execute(t, "validate", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ configuration (source csv, block 149, lot 1102)")
	assert.Contains(t, out, "✓ record files in ")
	assert.Contains(t, out, "✓ rented units: 2 listed (17B, 21C)")
}

func TestValidateCommand_Failures(t *testing.T) {
	configPath := validateFixture(t,
		"DOCUMENT ID,NAME\n1,JANE DOE\n",
		`{"units": ["17B"]}`)

	out, err := execute(t, "validate", "--config", configPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errValidationFailed))

	assert.Contains(t, out, "✓ configuration")
	assert.Contains(t, out, "✗ record files:")
	assert.Contains(t, out, `"record_type"`)
	assert.Contains(t, out, "✗ rented units:")
	assert.NotContains(t, out, "✓ rented units")
}

func TestValidateCommand_BadConfig(t *testing.T) {
	configPath := writeFixture(t, t.TempDir(), "config.yaml", "source: postgres\n")

	out, err := execute(t, "validate", "--config", configPath)
	assert.True(t, errors.Is(err, errValidationFailed))
	assert.Contains(t, out, "✗ configuration:")
}
