// Package rented loads the list of units currently rented out.
//
// The list is a JSON array of unit identifiers (["17B", "21C"]). YAML
// sequences are accepted too, since YAML is a superset of JSON.
package rented

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Set is a membership set of unit identifiers.
type Set map[string]bool

// Load reads a rented-units file.
//
// RETURNS:
//   - the set of units listed in the file
//   - an error if the file cannot be read or is not a list of strings
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rented units: %w", err)
	}

	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Parse reads a JSON or YAML list of unit identifiers. Empty input is an
// empty set.
func Parse(data []byte) (Set, error) {
	var units []string
	if err := yaml.Unmarshal(data, &units); err != nil {
		return nil, fmt.Errorf("rented units must be a list of unit identifiers: %w", err)
	}
	return New(units...), nil
}

// New builds a set from unit identifiers. Surrounding whitespace is dropped.
func New(units ...string) Set {
	set := make(Set, len(units))
	for _, unit := range units {
		if unit = strings.TrimSpace(unit); unit != "" {
			set[unit] = true
		}
	}
	return set
}

// Contains reports whether the unit is rented. A nil set contains nothing.
func (s Set) Contains(unit string) bool {
	return s[unit]
}

// Units returns the members in ascending order.
func (s Set) Units() []string {
	units := make([]string, 0, len(s))
	for unit := range s {
		units = append(units, unit)
	}
	sort.Strings(units)
	return units
}
