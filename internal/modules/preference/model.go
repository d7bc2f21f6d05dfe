// README: Preference domain definitions and the deduplicated chip set.
package preference

import "sort"

// Domain selects which field table the normalizer applies. It is always an
// explicit caller input, never inferred from entity content.
type Domain string

const (
	DomainFlight Domain = "flight"
	DomainHotel  Domain = "hotel"
)

// ValidDomain reports whether d is one of the known preference schemas.
func ValidDomain(d Domain) bool {
	return d == DomainFlight || d == DomainHotel
}

// Entity is one decoded preference record as it arrives off the wire: string
// keys, heterogeneous values (string, []any of strings, nil, absent).
type Entity map[string]any

// ChipSet collects human-readable preference labels with set semantics:
// adding an equal chip twice is a no-op, empty chips are never stored.
type ChipSet map[string]struct{}

// NewChipSet returns an empty chip set.
func NewChipSet() ChipSet {
	return make(ChipSet)
}

// Add inserts a chip. Empty strings are silently ignored.
func (s ChipSet) Add(chip string) {
	if chip == "" {
		return
	}
	s[chip] = struct{}{}
}

// Has reports whether the chip is present.
func (s ChipSet) Has(chip string) bool {
	_, ok := s[chip]
	return ok
}

// Len returns the number of distinct chips.
func (s ChipSet) Len() int {
	return len(s)
}

// Values returns the chips in sorted order for stable display and testing.
func (s ChipSet) Values() []string {
	out := make([]string, 0, len(s))
	for chip := range s {
		out = append(out, chip)
	}
	sort.Strings(out)
	return out
}
