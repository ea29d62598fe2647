// =============================================================================
// ACRIS Unit Report - Shared Types
// =============================================================================
//
// This package contains the record shapes shared across modules to avoid
// import cycles. Types defined here are used by:
//   - records     (decoding and lookups)
//   - aggregator  (join and derive)
//   - report      (summary counts and sinks)
//
// =============================================================================

package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// INPUT RECORDS
// =============================================================================

// Filter selects the legal records of a single building.
type Filter struct {
	Block int64
	Lot   int64
}

// LegalRecord is one legal description row: a document touching a unit.
// A single document may touch several units, and a unit appears once per
// document that references it.
type LegalRecord struct {
	DocumentID int64
	Block      int64
	Lot        int64
	Unit       string
}

// PartyRecord is one party named on a filing (buyer, seller, lender...).
// The pipeline does not filter by party or record type.
type PartyRecord struct {
	DocumentID int64
	RecordType string
	PartyType  int64
	Name       string
}

// MasterRecord is the deed/mortgage master row for a document.
type MasterRecord struct {
	DocumentID int64

	// RecordedDate is the zero time when the source had no usable date.
	RecordedDate time.Time

	// Amount is nil when the source had no amount.
	Amount *decimal.Decimal
}

// HasDate reports whether the record carries a recorded date.
func (m MasterRecord) HasDate() bool {
	return !m.RecordedDate.IsZero()
}

// =============================================================================
// OUTPUT ROW
// =============================================================================

// UnitSummary is the derived per-unit report row. Pointer fields are nil
// when the value is absent.
type UnitSummary struct {
	Unit   string
	Floor  string
	Line   string
	Beds   *string
	Baths  *string
	Date   *string
	Amount *decimal.Decimal
	IsLLC  bool
	Rented bool

	// Buyers is unique and keeps first-seen order.
	Buyers []string
}
