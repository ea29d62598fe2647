// =============================================================================
// ACRIS Unit Report - Report Assembler
// =============================================================================
//
// This module takes the aggregator's rows, counts them for the operator, and
// hands them to a sink unchanged and in order.
//
// REPORT LAYOUT (one row per unit):
//
//   unit,floor,line,beds,baths,date,amount,isLLC,rented,buyers
//   15A,15,A,2,2,03/01/20,12.35,false,false,"[""JANE DOE""]"
//
// Absent values are empty cells. Buyers are written as a JSON array so a
// multi-buyer unit stays in one cell.
//
// =============================================================================

package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/acris-unit-report/internal/types"
)

// ErrSinkWrite is returned when a sink cannot write the report.
var ErrSinkWrite = errors.New("failed to write report")

// Columns is the report header, in output order.
var Columns = []string{"unit", "floor", "line", "beds", "baths", "date", "amount", "isLLC", "rented", "buyers"}

// Summary is the operator-facing count of a run.
type Summary struct {
	UnitsSold int `json:"unitsSold"`
	LLCs      int `json:"llcs"`
}

// Summarize counts rows and rows flagged as entity-owned.
func Summarize(rows []types.UnitSummary) Summary {
	summary := Summary{UnitsSold: len(rows)}
	for _, row := range rows {
		if row.IsLLC {
			summary.LLCs++
		}
	}
	return summary
}

// Sink receives the finished report.
type Sink interface {
	Write(rows []types.UnitSummary) error
}

// =============================================================================
// ASSEMBLER
// =============================================================================

// Assembler counts the rows and passes them to a sink.
type Assembler struct {
	logger logrus.FieldLogger
}

// NewAssembler creates an assembler.
func NewAssembler(logger logrus.FieldLogger) *Assembler {
	return &Assembler{logger: logger}
}

// Assemble computes the summary and writes rows to sink.
//
// RETURNS:
//   - the summary, also when the write fails
//   - an error wrapping ErrSinkWrite if the sink failed
func (a *Assembler) Assemble(rows []types.UnitSummary, sink Sink) (Summary, error) {
	summary := Summarize(rows)
	a.logger.WithFields(logrus.Fields{
		"unitsSold": summary.UnitsSold,
		"llcs":      summary.LLCs,
	}).Info("report assembled")

	if err := sink.Write(rows); err != nil {
		if !errors.Is(err, ErrSinkWrite) {
			err = fmt.Errorf("%w: %w", ErrSinkWrite, err)
		}
		return summary, err
	}
	return summary, nil
}

// =============================================================================
// ROW FORMATTING
// =============================================================================

// Record renders one row as report cells in Columns order.
func Record(row types.UnitSummary) ([]string, error) {
	buyers, err := FormatBuyers(row.Buyers)
	if err != nil {
		return nil, err
	}

	amount := ""
	if row.Amount != nil {
		amount = row.Amount.String()
	}

	return []string{
		row.Unit,
		row.Floor,
		row.Line,
		optional(row.Beds),
		optional(row.Baths),
		optional(row.Date),
		amount,
		strconv.FormatBool(row.IsLLC),
		strconv.FormatBool(row.Rented),
		buyers,
	}, nil
}

// FormatBuyers renders buyer names as a JSON array. HTML characters are
// left unescaped so names like "A & B LLC" read as written.
func FormatBuyers(buyers []string) (string, error) {
	if buyers == nil {
		buyers = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(buyers); err != nil {
		return "", fmt.Errorf("failed to encode buyers: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
