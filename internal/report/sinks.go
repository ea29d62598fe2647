package report

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/acris-unit-report/internal/types"
)

// DefaultSheetName is the worksheet the XLSX sink writes.
const DefaultSheetName = "Units"

// =============================================================================
// CSV SINK
// =============================================================================

// CSVSink writes the report as a delimited text file.
type CSVSink struct {
	Path string

	// Delimiter defaults to a comma.
	Delimiter rune
}

// Write creates or truncates the file and writes the header and every row.
func (s *CSVSink) Write(rows []types.UnitSummary) error {
	file, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}

	if err := s.writeRows(file, rows); err != nil {
		file.Close()
		return fmt.Errorf("%w: %s: %w", ErrSinkWrite, s.Path, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSinkWrite, s.Path, err)
	}
	return nil
}

func (s *CSVSink) writeRows(file *os.File, rows []types.UnitSummary) error {
	writer := csv.NewWriter(file)
	if s.Delimiter != 0 {
		writer.Comma = s.Delimiter
	}

	if err := writer.Write(Columns); err != nil {
		return err
	}
	for _, row := range rows {
		record, err := Record(row)
		if err != nil {
			return err
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// =============================================================================
// XLSX SINK
// =============================================================================

// XLSXSink writes the report as a single-sheet workbook. Amounts are
// numeric cells and flags are boolean cells.
type XLSXSink struct {
	Path string

	// Sheet defaults to DefaultSheetName.
	Sheet string
}

// Write builds the workbook and saves it to Path.
func (s *XLSXSink) Write(rows []types.UnitSummary) error {
	sheet := s.Sheet
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}

	header := make([]interface{}, len(Columns))
	for i, column := range Columns {
		header[i] = column
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}

	for i, row := range rows {
		values, err := xlsxValues(row)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSinkWrite, err)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSinkWrite, err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("%w: %w", ErrSinkWrite, err)
		}
	}

	if err := f.SaveAs(s.Path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSinkWrite, s.Path, err)
	}
	return nil
}

// xlsxValues types the report cells for a workbook row.
func xlsxValues(row types.UnitSummary) ([]interface{}, error) {
	record, err := Record(row)
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, len(record))
	for i, cell := range record {
		values[i] = cell
	}

	if row.Amount != nil {
		values[6] = row.Amount.InexactFloat64()
	}
	values[7] = row.IsLLC
	values[8] = row.Rented
	return values, nil
}

// =============================================================================
// DISCARD SINK
// =============================================================================

// DiscardSink drops the report. It is used for dry runs.
type DiscardSink struct{}

// Write does nothing.
func (DiscardSink) Write([]types.UnitSummary) error { return nil }
