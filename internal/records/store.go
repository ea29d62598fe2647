// =============================================================================
// ACRIS Unit Report - Record Store
// =============================================================================
//
// The Store holds one building's slice of the three datasets and answers
// the lookups the aggregator needs:
//   - legals by unit
//   - parties by document id
//   - masters by document id
//
// Lookups on a missing key return an empty slice, never an error. Each
// group keeps the order the records had in the input.
//
// =============================================================================

package records

import (
	"sort"

	"github.com/ginjaninja78/acris-unit-report/internal/types"
)

// Store is an immutable, filtered view of the three record collections.
type Store struct {
	filter  types.Filter
	legals  []types.LegalRecord
	parties []types.PartyRecord
	masters []types.MasterRecord

	legalsByUnit map[string][]types.LegalRecord
	partiesByDoc map[int64][]types.PartyRecord
	mastersByDoc map[int64][]types.MasterRecord
	units        []string
}

// NewStore filters the raw collections and builds the lookups.
//
// FILTERING:
//   - legals:  records whose block and lot match the filter
//   - parties: records whose document id appears in the filtered legals
//   - masters: records whose document id appears in the filtered legals
func NewStore(legals []types.LegalRecord, parties []types.PartyRecord, masters []types.MasterRecord, filter types.Filter) *Store {
	s := &Store{
		filter:       filter,
		legalsByUnit: make(map[string][]types.LegalRecord),
		partiesByDoc: make(map[int64][]types.PartyRecord),
		mastersByDoc: make(map[int64][]types.MasterRecord),
	}

	docIDs := make(map[int64]bool)
	for _, legal := range legals {
		if legal.Block != filter.Block || legal.Lot != filter.Lot {
			continue
		}
		s.legals = append(s.legals, legal)
		docIDs[legal.DocumentID] = true

		if _, seen := s.legalsByUnit[legal.Unit]; !seen {
			s.units = append(s.units, legal.Unit)
		}
		s.legalsByUnit[legal.Unit] = append(s.legalsByUnit[legal.Unit], legal)
	}
	sort.Strings(s.units)

	for _, party := range parties {
		if docIDs[party.DocumentID] {
			s.parties = append(s.parties, party)
			s.partiesByDoc[party.DocumentID] = append(s.partiesByDoc[party.DocumentID], party)
		}
	}

	for _, master := range masters {
		if docIDs[master.DocumentID] {
			s.masters = append(s.masters, master)
			s.mastersByDoc[master.DocumentID] = append(s.mastersByDoc[master.DocumentID], master)
		}
	}

	return s
}

// Filter returns the filter the store was built with.
func (s *Store) Filter() types.Filter { return s.filter }

// Legals returns the legal records matching the filter.
func (s *Store) Legals() []types.LegalRecord { return s.legals }

// Parties returns the party records joined to the filtered legals.
func (s *Store) Parties() []types.PartyRecord { return s.parties }

// Masters returns the master records joined to the filtered legals.
func (s *Store) Masters() []types.MasterRecord { return s.masters }

// Units returns the distinct units of the filtered legals in ascending
// byte order.
func (s *Store) Units() []string { return s.units }

// LegalsByUnit returns the legal records for a unit.
func (s *Store) LegalsByUnit(unit string) []types.LegalRecord {
	return orEmpty(s.legalsByUnit[unit])
}

// PartiesByDocument returns the party records for a document.
func (s *Store) PartiesByDocument(id int64) []types.PartyRecord {
	return orEmpty(s.partiesByDoc[id])
}

// MastersByDocument returns the master records for a document.
func (s *Store) MastersByDocument(id int64) []types.MasterRecord {
	return orEmpty(s.mastersByDoc[id])
}

// DocumentIDs returns the document ids of a unit's legal records in input
// order. A document listed twice for the same unit is returned twice.
func (s *Store) DocumentIDs(unit string) []int64 {
	legals := s.legalsByUnit[unit]
	ids := make([]int64, len(legals))
	for i, legal := range legals {
		ids[i] = legal.DocumentID
	}
	return ids
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
