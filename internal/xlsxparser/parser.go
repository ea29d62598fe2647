// =============================================================================
// ACRIS Unit Report - XLSX Parser
// =============================================================================
//
// This module reads property record exports saved as Excel workbooks. The
// first visible sheet (or a named sheet) is read into the same header-keyed
// table the CSV parser produces, so the record decoders do not care which
// format the data arrived in.
//
// EXPECTED LAYOUT:
//
//   | Column A    | Column B | Column C | Column D |
//   |-------------|----------|----------|----------|
//   | DOCUMENT ID | BLOCK    | LOT      | UNIT     |
//   | 20200301... | 149      | 1102     | 15A      |
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/acris-unit-report/internal/csvparser"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads the first sheet of a workbook whose name does not start
// with "_".
//
// PARAMETERS:
//   - path: The path to the XLSX file.
//
// RETURNS:
//   - The parsed table with normalized headers.
//   - An error if the workbook cannot be opened or has no usable sheet.
func Parse(path string) (*csvparser.Table, error) {
	return ParseSheet(path, "")
}

// ParseSheet reads the named sheet of a workbook. An empty sheet name picks
// the first sheet not prefixed with "_".
func ParseSheet(path, sheetName string) (*csvparser.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = firstSheet(f)
	}
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %q: %w", sheetName, err)
	}

	table, err := rowsToTable(rows)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheetName, err)
	}

	table.SourceFile = path
	return table, nil
}

// firstSheet returns the first sheet whose name does not start with "_".
// Helper sheets such as lookups are conventionally prefixed that way.
func firstSheet(f *excelize.File) string {
	for _, name := range f.GetSheetList() {
		if !strings.HasPrefix(name, "_") {
			return name
		}
	}
	return ""
}

// rowsToTable treats the first non-empty row as the header row.
func rowsToTable(rows [][]string) (*csvparser.Table, error) {
	headerIndex := -1
	for i, row := range rows {
		if !isRowEmpty(row) {
			headerIndex = i
			break
		}
	}
	if headerIndex < 0 {
		return nil, fmt.Errorf("sheet is empty")
	}

	rawHeaders := rows[headerIndex]
	headers := make([]string, len(rawHeaders))
	for i, h := range rawHeaders {
		headers[i] = csvparser.NormalizeHeader(h)
		if headers[i] == "" {
			headers[i] = fmt.Sprintf("column_%d", i+1)
		}
	}

	table := &csvparser.Table{
		Headers: headers,
		Rows:    make([]map[string]string, 0, len(rows)-headerIndex-1),
	}

	for _, row := range rows[headerIndex+1:] {
		if isRowEmpty(row) {
			continue
		}

		// GetRows trims trailing empty cells, so short rows are normal.
		rowMap := make(map[string]string, len(headers))
		for col, header := range headers {
			if col < len(row) {
				rowMap[header] = strings.TrimSpace(row[col])
			} else {
				rowMap[header] = ""
			}
		}
		table.Rows = append(table.Rows, rowMap)
	}

	return table, nil
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
