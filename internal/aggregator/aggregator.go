// =============================================================================
// ACRIS Unit Report - Aggregator
// =============================================================================
//
// The aggregator turns one building's records into one summary row per unit.
// For each unit, in ascending order:
//
//   1. Collect the document ids of the unit's legal records.
//   2. Join masters and parties through those ids.
//   3. Amount: first non-zero amount, scaled (see ScaleAmount).
//   4. Date: earliest recorded date, as MM/DD/YY.
//   5. Buyers: party names without the sponsor, unique, first-seen order.
//   6. Entity flag: any buyer name contains an entity marker.
//   7. Floor and line from the unit identifier, then the layout.
//   8. Rented flag from the rented-units set.
//
// Missing joins never fail a unit. They leave fields absent.
//
// =============================================================================

package aggregator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/acris-unit-report/internal/classifier"
	"github.com/ginjaninja78/acris-unit-report/internal/config"
	"github.com/ginjaninja78/acris-unit-report/internal/records"
	"github.com/ginjaninja78/acris-unit-report/internal/rented"
	"github.com/ginjaninja78/acris-unit-report/internal/types"
	"github.com/ginjaninja78/acris-unit-report/internal/validation"
)

// DateLayout is the report's date format (MM/DD/YY).
const DateLayout = "01/02/06"

var (
	amountDivisor = decimal.NewFromInt(10000)
	amountCents   = decimal.NewFromInt(100)
)

// Options tune the cleaning heuristics.
type Options struct {
	// ExcludedBuyer is removed from every buyer list.
	ExcludedBuyer string

	// EntityMarkers flag a buyer as a business entity (case-sensitive).
	EntityMarkers []string

	// UnitPolicy is config.UnitPolicyLenient or config.UnitPolicyStrict.
	UnitPolicy string
}

// OptionsFromConfig reads the aggregator options out of the configuration.
func OptionsFromConfig(cfg *config.MainConfig) Options {
	return Options{
		ExcludedBuyer: cfg.ExcludedBuyer,
		EntityMarkers: cfg.EntityMarkers,
		UnitPolicy:    cfg.UnitPolicy,
	}
}

// Aggregator derives unit summaries from a record store.
type Aggregator struct {
	opts   Options
	logger logrus.FieldLogger
}

// New creates an aggregator.
func New(opts Options, logger logrus.FieldLogger) *Aggregator {
	return &Aggregator{opts: opts, logger: logger}
}

// Aggregate summarizes every unit of the store in ascending unit order.
//
// RETURNS:
//   - one row per distinct unit
//   - an error wrapping validation.ErrMalformedUnit under the strict policy
func (a *Aggregator) Aggregate(store *records.Store, rentedUnits rented.Set) ([]types.UnitSummary, error) {
	units := store.Units()
	rows := make([]types.UnitSummary, 0, len(units))

	for _, unit := range units {
		row, err := a.Summarize(store, unit, rentedUnits)
		if err != nil {
			return nil, err
		}

		a.logger.WithFields(logrus.Fields{
			"unit":   row.Unit,
			"amount": formatAmount(row.Amount),
			"date":   stringOrEmpty(row.Date),
			"buyers": strings.Join(row.Buyers, "; "),
			"llc":    row.IsLLC,
			"rented": row.Rented,
		}).Debug("unit summarized")

		rows = append(rows, row)
	}

	return rows, nil
}

// Summarize derives the summary row of one unit.
func (a *Aggregator) Summarize(store *records.Store, unit string, rentedUnits rented.Set) (types.UnitSummary, error) {
	var masters []types.MasterRecord
	var parties []types.PartyRecord
	for _, id := range store.DocumentIDs(unit) {
		masters = append(masters, store.MastersByDocument(id)...)
		parties = append(parties, store.PartiesByDocument(id)...)
	}

	buyers := Buyers(parties, a.opts.ExcludedBuyer)
	row := types.UnitSummary{
		Unit:   unit,
		Amount: FirstAmount(masters),
		Date:   EarliestDate(masters),
		IsLLC:  HasEntity(buyers, a.opts.EntityMarkers),
		Rented: rentedUnits.Contains(unit),
		Buyers: buyers,
	}
	if row.Amount != nil {
		scaled := ScaleAmount(*row.Amount)
		row.Amount = &scaled
	}

	floor, line, err := validation.SplitUnit(unit)
	if err != nil {
		if a.opts.UnitPolicy == config.UnitPolicyStrict {
			return types.UnitSummary{}, fmt.Errorf("unit %q: %w", unit, err)
		}
		if errors.Is(err, validation.ErrMalformedUnit) {
			a.logger.Warnf("unit %q is too short for a floor and line; emitting without layout", unit)
		}
		return row, nil
	}
	row.Floor = floor
	row.Line = line

	if layout, ok := classifier.ClassifyUnit(floor, line); ok {
		row.Beds = &layout.Beds
		row.Baths = &layout.Baths
	}

	return row, nil
}

// =============================================================================
// DERIVATIONS
// =============================================================================

// FirstAmount returns the first non-zero amount in input order, or nil.
// A zero amount is treated as missing.
func FirstAmount(masters []types.MasterRecord) *decimal.Decimal {
	for _, master := range masters {
		if master.Amount != nil && !master.Amount.IsZero() {
			amount := *master.Amount
			return &amount
		}
	}
	return nil
}

// ScaleAmount converts a raw document amount to report units: divide by
// 10,000, round half away from zero to an integer, then divide by 100.
// 12,345,000 becomes 12.35.
func ScaleAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(amountDivisor).Round(0).Div(amountCents)
}

// EarliestDate returns the earliest recorded date formatted as MM/DD/YY, or
// nil when no master carries a date.
func EarliestDate(masters []types.MasterRecord) *string {
	var earliest time.Time
	for _, master := range masters {
		if !master.HasDate() {
			continue
		}
		if earliest.IsZero() || master.RecordedDate.Before(earliest) {
			earliest = master.RecordedDate
		}
	}
	if earliest.IsZero() {
		return nil
	}

	formatted := earliest.UTC().Format(DateLayout)
	return &formatted
}

// Buyers returns party names in input order without the excluded name and
// without repeats.
func Buyers(parties []types.PartyRecord, excluded string) []string {
	seen := make(map[string]bool, len(parties))
	buyers := make([]string, 0, len(parties))
	for _, party := range parties {
		if party.Name == excluded || seen[party.Name] {
			continue
		}
		seen[party.Name] = true
		buyers = append(buyers, party.Name)
	}
	return buyers
}

// HasEntity reports whether any buyer name contains one of the markers.
func HasEntity(buyers []string, markers []string) bool {
	for _, buyer := range buyers {
		for _, marker := range markers {
			if marker != "" && strings.Contains(buyer, marker) {
				return true
			}
		}
	}
	return false
}

func formatAmount(amount *decimal.Decimal) string {
	if amount == nil {
		return ""
	}
	return amount.String()
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
