package records

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/acris-unit-report/internal/csvparser"
	"github.com/ginjaninja78/acris-unit-report/internal/types"
	"github.com/ginjaninja78/acris-unit-report/internal/validation"
)

// Normalized column names of the three datasets.
const (
	ColDocumentID   = "document_id"
	ColBlock        = "block"
	ColLot          = "lot"
	ColUnit         = "unit"
	ColRecordType   = "record_type"
	ColPartyType    = "party_type"
	ColName         = "name"
	ColRecordedDate = "recorded_filed"
	ColAmount       = "doc_amount"
)

// Columns each decoder reads. Only presence is checked.
var (
	LegalColumns  = []string{ColDocumentID, ColBlock, ColLot, ColUnit}
	PartyColumns  = []string{ColDocumentID, ColRecordType, ColPartyType, ColName}
	MasterColumns = []string{ColDocumentID, ColRecordedDate, ColAmount}
)

// dateLayouts are tried in order. The dataset exports use the first.
var dateLayouts = []string{
	"01/02/2006 03:04:05 PM",
	"01/02/2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// =============================================================================
// TABLE DECODERS
// =============================================================================

// DecodeLegals converts a legals table into records. Rows whose document
// id, block, or lot cannot be read are skipped and logged.
func DecodeLegals(table *csvparser.Table, logger logrus.FieldLogger) ([]types.LegalRecord, error) {
	if err := validation.RequireColumns(table.SourceFile, table.Headers, LegalColumns...); err != nil {
		return nil, err
	}

	legals := make([]types.LegalRecord, 0, len(table.Rows))
	for i, row := range table.Rows {
		legal, err := DecodeLegalRow(row)
		if err != nil {
			logger.Warnf("legals row %d skipped: %v", i+1, err)
			continue
		}
		legals = append(legals, legal)
	}
	return legals, nil
}

// DecodeParties converts a parties table into records.
func DecodeParties(table *csvparser.Table, logger logrus.FieldLogger) ([]types.PartyRecord, error) {
	if err := validation.RequireColumns(table.SourceFile, table.Headers, PartyColumns...); err != nil {
		return nil, err
	}

	parties := make([]types.PartyRecord, 0, len(table.Rows))
	for i, row := range table.Rows {
		party, err := DecodePartyRow(row)
		if err != nil {
			logger.Warnf("parties row %d skipped: %v", i+1, err)
			continue
		}
		parties = append(parties, party)
	}
	return parties, nil
}

// DecodeMasters converts a master table into records. Unreadable dates and
// amounts are kept as absent values.
func DecodeMasters(table *csvparser.Table, logger logrus.FieldLogger) ([]types.MasterRecord, error) {
	if err := validation.RequireColumns(table.SourceFile, table.Headers, MasterColumns...); err != nil {
		return nil, err
	}

	masters := make([]types.MasterRecord, 0, len(table.Rows))
	for i, row := range table.Rows {
		master, warnings, err := DecodeMasterRow(row)
		if err != nil {
			logger.Warnf("master row %d skipped: %v", i+1, err)
			continue
		}
		for _, w := range warnings {
			logger.Debugf("master row %d: %s", i+1, w)
		}
		masters = append(masters, master)
	}
	return masters, nil
}

// =============================================================================
// ROW DECODERS
// =============================================================================

// DecodeLegalRow reads one legals row.
func DecodeLegalRow(row map[string]string) (types.LegalRecord, error) {
	docID, err := parseInt(row, ColDocumentID)
	if err != nil {
		return types.LegalRecord{}, err
	}
	block, err := parseInt(row, ColBlock)
	if err != nil {
		return types.LegalRecord{}, err
	}
	lot, err := parseInt(row, ColLot)
	if err != nil {
		return types.LegalRecord{}, err
	}

	return types.LegalRecord{
		DocumentID: docID,
		Block:      block,
		Lot:        lot,
		Unit:       strings.TrimSpace(row[ColUnit]),
	}, nil
}

// DecodePartyRow reads one parties row. An empty party type reads as 0.
func DecodePartyRow(row map[string]string) (types.PartyRecord, error) {
	docID, err := parseInt(row, ColDocumentID)
	if err != nil {
		return types.PartyRecord{}, err
	}

	var partyType int64
	if strings.TrimSpace(row[ColPartyType]) != "" {
		partyType, err = parseInt(row, ColPartyType)
		if err != nil {
			return types.PartyRecord{}, err
		}
	}

	return types.PartyRecord{
		DocumentID: docID,
		RecordType: strings.TrimSpace(row[ColRecordType]),
		PartyType:  partyType,
		Name:       strings.TrimSpace(row[ColName]),
	}, nil
}

// DecodeMasterRow reads one master row. Only the document id is required;
// problems with the date or amount are reported as warnings and leave the
// value absent.
func DecodeMasterRow(row map[string]string) (types.MasterRecord, []string, error) {
	docID, err := parseInt(row, ColDocumentID)
	if err != nil {
		return types.MasterRecord{}, nil, err
	}

	master := types.MasterRecord{DocumentID: docID}
	var warnings []string

	if raw := strings.TrimSpace(row[ColRecordedDate]); raw != "" {
		date, err := ParseDate(raw)
		if err != nil {
			warnings = append(warnings, err.Error())
		} else {
			master.RecordedDate = date
		}
	}

	if raw := strings.TrimSpace(row[ColAmount]); raw != "" {
		amount, err := ParseAmount(raw)
		if err != nil {
			warnings = append(warnings, err.Error())
		} else {
			master.Amount = &amount
		}
	}

	return master, warnings, nil
}

// =============================================================================
// VALUE PARSERS
// =============================================================================

// ParseDate reads a recorded date in any of the known layouts. Dates
// without a zone are taken as UTC.
func ParseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// ParseAmount reads a document amount, tolerating currency symbols and
// thousands separators ("$1,234,500.00").
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("unrecognized amount %q", raw)
	}
	return amount, nil
}

func parseInt(row map[string]string, column string) (int64, error) {
	raw := strings.TrimSpace(row[column])
	if raw == "" {
		return 0, fmt.Errorf("empty %s", column)
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", column, raw)
	}
	return value, nil
}
