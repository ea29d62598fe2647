// =============================================================================
// ACRIS Unit Report - CSV Parser Module
// =============================================================================
//
// This module parses the delimited exports of the property records
// datasets (legals, parties, master) into header-keyed tables. It handles:
//   - Different delimiters (comma, pipe, tab, semicolon)
//   - Multi-line headers
//   - Custom data start rows
//   - Header normalization ("DOCUMENT ID" -> "document_id")
//
// Two entry points are provided:
//   - Parse / ParseReader load a whole file (the report reads one building's
//     worth of records at once).
//   - StreamingParser walks a file row by row (the import command loads
//     full dataset exports that do not fit in memory).
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/ginjaninja78/acris-unit-report/internal/config"
)

// =============================================================================
// TABLE STRUCTURE
// =============================================================================

// Table is a parsed delimited file.
type Table struct {
	// Headers are the normalized column names in file order.
	Headers []string

	// Rows are the data rows keyed by normalized header.
	Rows []map[string]string

	// SourceFile is the path the table was read from, if any.
	SourceFile string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a delimited file and returns the parsed table.
//
// PARAMETERS:
//   - filePath: The path to the file.
//   - settings: The delimiter and header layout.
//
// RETURNS:
//   - A pointer to the parsed Table.
//   - An error if the file cannot be read or parsed.
func Parse(filePath string, settings config.CSVSettings) (*Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	table, err := ParseReader(file, settings)
	if err != nil {
		return nil, err
	}

	table.SourceFile = filePath
	return table, nil
}

// ParseReader parses delimited data from a reader.
func ParseReader(r io.Reader, settings config.CSVSettings) (*Table, error) {
	csvReader := csv.NewReader(bufio.NewReader(r))
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	headers, err := extractHeaders(allRows, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to extract headers: %w", err)
	}

	return &Table{
		Headers: headers,
		Rows:    extractDataRows(allRows, headers, settings),
	}, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Dataset exports are not always rectangular.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// extractHeaders extracts and merges headers from the CSV.
//
// MULTI-LINE HEADER HANDLING:
//   Headers spanning several rows are joined column by column:
//
//   Row 1: "DOCUMENT", "RECORDED"
//   Row 2: "ID",       "/ FILED"
//   Result: "document_id", "recorded_filed"
func extractHeaders(allRows [][]string, settings config.CSVSettings) ([]string, error) {
	headerRows := settings.HeaderRows
	if headerRows <= 0 {
		headerRows = 1
	}

	if len(allRows) < headerRows {
		return nil, fmt.Errorf("file has fewer rows than header_rows setting")
	}

	maxCols := 0
	for i := 0; i < headerRows; i++ {
		if len(allRows[i]) > maxCols {
			maxCols = len(allRows[i])
		}
	}

	headers := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		var parts []string

		for row := 0; row < headerRows; row++ {
			if col < len(allRows[row]) {
				value := strings.TrimSpace(allRows[row][col])
				if value != "" {
					parts = append(parts, value)
				}
			}
		}

		headers[col] = strings.Join(parts, " ")
	}

	return cleanHeaders(headers), nil
}

// cleanHeaders normalizes header values and names empty columns by index.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = NormalizeHeader(header)
		if header == "" {
			header = fmt.Sprintf("column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// NormalizeHeader turns a dataset column name into a snake_case key.
// Runs of anything other than letters and digits collapse to a single
// underscore, and the result is lower case.
//
// EXAMPLES:
//   "DOCUMENT ID"      -> "document_id"
//   "RECORDED / FILED" -> "recorded_filed"
//   "DOC. AMOUNT"      -> "doc_amount"
//   "PARTY TYPE"       -> "party_type"
func NormalizeHeader(header string) string {
	var b strings.Builder
	pendingSep := false

	for _, r := range strings.TrimSpace(header) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSep = true
	}

	return b.String()
}

// extractDataRows converts data rows to header-keyed maps, skipping blank
// rows. Missing trailing cells become empty strings.
func extractDataRows(allRows [][]string, headers []string, settings config.CSVSettings) []map[string]string {
	startIndex := settings.DataStartRow - 1
	if startIndex < settings.HeaderRows {
		startIndex = settings.HeaderRows
	}
	if startIndex < 1 {
		startIndex = 1
	}

	if startIndex >= len(allRows) {
		return []map[string]string{}
	}

	dataRows := make([]map[string]string, 0, len(allRows)-startIndex)
	for rowIndex := startIndex; rowIndex < len(allRows); rowIndex++ {
		row := allRows[rowIndex]
		if isRowEmpty(row) {
			continue
		}
		dataRows = append(dataRows, rowToMap(row, headers))
	}

	return dataRows
}

func rowToMap(row []string, headers []string) map[string]string {
	rowMap := make(map[string]string, len(headers))
	for colIndex, header := range headers {
		if colIndex < len(row) {
			rowMap[header] = strings.TrimSpace(row[colIndex])
		} else {
			rowMap[header] = ""
		}
	}
	return rowMap
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// STREAMING PARSER FOR LARGE FILES
// =============================================================================

// StreamingParser reads a delimited file one row at a time.
//
// USAGE:
//   parser, err := NewStreamingParser(file, settings)
//   if err != nil {
//       return err
//   }
//
//   for parser.Next() {
//       row := parser.Row()
//       // Process the row...
//   }
//
//   if err := parser.Err(); err != nil {
//       return err
//   }
type StreamingParser struct {
	reader     *csv.Reader
	headers    []string
	currentRow map[string]string
	rowNumber  int
	err        error
	settings   config.CSVSettings
}

// NewStreamingParser reads the header rows from r and positions the parser
// at the first data row. The caller owns r.
func NewStreamingParser(r io.Reader, settings config.CSVSettings) (*StreamingParser, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	configureReader(reader, settings)

	parser := &StreamingParser{
		reader:   reader,
		settings: settings,
	}

	if err := parser.readHeaders(); err != nil {
		return nil, err
	}

	if err := parser.skipToDataStart(); err != nil {
		return nil, err
	}

	return parser, nil
}

// readHeaders reads and merges the header rows.
func (p *StreamingParser) readHeaders() error {
	headerRows := p.settings.HeaderRows
	if headerRows <= 0 {
		headerRows = 1
	}

	rows := make([][]string, 0, headerRows)
	for i := 0; i < headerRows; i++ {
		row, err := p.reader.Read()
		if err == io.EOF {
			return fmt.Errorf("unexpected end of file while reading headers")
		}
		if err != nil {
			return fmt.Errorf("error reading header row %d: %w", i+1, err)
		}
		rows = append(rows, row)
		p.rowNumber++
	}

	headers, err := extractHeaders(rows, p.settings)
	if err != nil {
		return err
	}

	p.headers = headers
	return nil
}

// skipToDataStart skips rows until the data start row.
func (p *StreamingParser) skipToDataStart() error {
	for p.rowNumber < p.settings.DataStartRow-1 {
		_, err := p.reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error skipping to data start: %w", err)
		}
		p.rowNumber++
	}

	return nil
}

// Next advances to the next non-blank row. Returns false when there are no
// more rows or an error occurred.
func (p *StreamingParser) Next() bool {
	for p.err == nil {
		row, err := p.reader.Read()
		if err == io.EOF {
			return false
		}
		if err != nil {
			p.err = fmt.Errorf("error reading row %d: %w", p.rowNumber+1, err)
			return false
		}

		p.rowNumber++
		if isRowEmpty(row) {
			continue
		}

		p.currentRow = rowToMap(row, p.headers)
		return true
	}

	return false
}

// Row returns the current row as a map.
func (p *StreamingParser) Row() map[string]string {
	return p.currentRow
}

// Headers returns the normalized headers.
func (p *StreamingParser) Headers() []string {
	return p.headers
}

// RowNumber returns the current 1-based row number.
func (p *StreamingParser) RowNumber() int {
	return p.rowNumber
}

// Err returns any error that occurred during parsing.
func (p *StreamingParser) Err() error {
	return p.err
}
