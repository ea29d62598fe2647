// =============================================================================
// ACRIS Unit Report - Unit Classifier
// =============================================================================
//
// This module maps a unit's floor and line to its bedroom/bathroom layout.
// The layouts come from the building's offering plan and do not depend on
// the input data, so the table below is static.
//
// TABLE (floor ranges are inclusive):
//
//   | Floors | Lines          | Layout |
//   |--------|----------------|--------|
//   | 15-16  | A E F L        | 2/2    |
//   |        | B C D          | 1/1    |
//   |        | G              | 0/1    |
//   | 17-38  | A E F L        | 2/2    |
//   |        | B C D H J K    | 1/1    |
//   |        | G              | 0/1    |
//   | 41-68  | A B C H        | 2/2    |
//   |        | G J F          | 1/1    |
//   |        | E              | 3/2    |
//   |        | D              | 3/3    |
//
// Floors 39-40 (mechanical) and any line outside the listed sets are
// unclassified.
//
// =============================================================================

package classifier

import (
	"strconv"
	"strings"
)

// UnitType is a bedroom/bathroom layout such as 2/2.
type UnitType struct {
	Beds  string
	Baths string
}

// String returns the layout in "beds/baths" form.
func (u UnitType) String() string {
	return u.Beds + "/" + u.Baths
}

// lineRule maps a set of line letters to a layout.
type lineRule struct {
	lines    string
	unitType UnitType
}

// floorRule groups line rules for an inclusive floor range.
type floorRule struct {
	minFloor int
	maxFloor int
	lines    []lineRule
}

var (
	twoTwo   = UnitType{Beds: "2", Baths: "2"}
	oneOne   = UnitType{Beds: "1", Baths: "1"}
	studio   = UnitType{Beds: "0", Baths: "1"}
	threeTwo = UnitType{Beds: "3", Baths: "2"}
	threeThr = UnitType{Beds: "3", Baths: "3"}
)

// rules is evaluated top to bottom; within a floor range the line sets are
// tested in order and the first match wins.
var rules = []floorRule{
	{
		minFloor: 15, maxFloor: 16,
		lines: []lineRule{
			{lines: "AEFL", unitType: twoTwo},
			{lines: "BCD", unitType: oneOne},
			{lines: "G", unitType: studio},
		},
	},
	{
		minFloor: 17, maxFloor: 38,
		lines: []lineRule{
			{lines: "AEFL", unitType: twoTwo},
			{lines: "BCDHJK", unitType: oneOne},
			{lines: "G", unitType: studio},
		},
	},
	{
		minFloor: 41, maxFloor: 68,
		lines: []lineRule{
			{lines: "ABCH", unitType: twoTwo},
			{lines: "GJF", unitType: oneOne},
			{lines: "E", unitType: threeTwo},
			{lines: "D", unitType: threeThr},
		},
	},
}

// Classify returns the layout for a floor and line letter.
//
// RETURNS:
//   - The layout and true when the table has an entry.
//   - The zero UnitType and false otherwise.
func Classify(floor int, line byte) (UnitType, bool) {
	for _, rule := range rules {
		if floor < rule.minFloor || floor > rule.maxFloor {
			continue
		}

		// First matching range wins even when no line matches inside it.
		for _, lr := range rule.lines {
			if strings.IndexByte(lr.lines, line) >= 0 {
				return lr.unitType, true
			}
		}
		return UnitType{}, false
	}

	return UnitType{}, false
}

// ClassifyUnit classifies the floor and line strings derived from a unit
// identifier. A non-numeric floor or a line that is not exactly one
// character is unclassified.
func ClassifyUnit(floor, line string) (UnitType, bool) {
	if len(line) != 1 {
		return UnitType{}, false
	}

	floorNumber, err := strconv.Atoi(floor)
	if err != nil {
		return UnitType{}, false
	}

	return Classify(floorNumber, line[0])
}
