// =============================================================================
// ACRIS Unit Report - Validation
// =============================================================================
//
// Validation here is deliberately narrow:
//   - Field presence: a record table must carry the columns its decoder
//     reads. Values are not type-checked at this stage.
//   - Unit identifiers: a unit must be long enough to carry a two-character
//     floor prefix and a one-character line suffix.
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrMissingColumn is returned when a record table lacks a column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrMalformedUnit is returned for unit identifiers too short to derive
	// a floor and a line from.
	ErrMalformedUnit = errors.New("malformed unit identifier")
)

// MinUnitLength is the shortest unit identifier that has a floor and a line.
const MinUnitLength = 3

// ValidationError describes one failed check.
type ValidationError struct {
	// Source is the file or collection being checked.
	Source string

	// Field is the column or field name.
	Field string

	// Value is the offending value, if any.
	Value string

	// Err is the sentinel the failure matches.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.Source != "" {
		b.WriteString(e.Source)
		b.WriteString(": ")
	}
	b.WriteString(e.Err.Error())
	if e.Field != "" {
		fmt.Fprintf(&b, " %q", e.Field)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " (value %q)", e.Value)
	}
	return b.String()
}

// Unwrap allows errors.Is against the sentinels.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// =============================================================================
// FIELD PRESENCE
// =============================================================================

// RequireColumns checks that every required column is present in headers.
//
// RETURNS:
//   - nil when all columns are present.
//   - An error joining one ValidationError per missing column.
func RequireColumns(source string, headers []string, required ...string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var errs []error
	for _, column := range required {
		if !present[column] {
			errs = append(errs, &ValidationError{
				Source: source,
				Field:  column,
				Err:    ErrMissingColumn,
			})
		}
	}

	return errors.Join(errs...)
}

// =============================================================================
// UNIT IDENTIFIERS
// =============================================================================

// SplitUnit derives the floor (first two characters) and line (last
// character) of a unit identifier such as "15A".
//
// RETURNS:
//   - floor, line, nil for identifiers of at least MinUnitLength characters.
//   - "", "", and an error wrapping ErrMalformedUnit for shorter identifiers
//     and for invalid UTF-8.
func SplitUnit(unit string) (floor, line string, err error) {
	if !utf8.ValidString(unit) || utf8.RuneCountInString(unit) < MinUnitLength {
		return "", "", &ValidationError{Field: "unit", Value: unit, Err: ErrMalformedUnit}
	}

	runes := []rune(unit)
	return string(runes[:2]), string(runes[len(runes)-1:]), nil
}
