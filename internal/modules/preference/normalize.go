// README: Entity normalizer; per-domain field tables mapping raw entities to chips.
package preference

import (
	"fmt"
	"strings"
)

// fieldRule describes how one recognized entity key contributes chips.
// Extraction is uniform: the value is coerced to a string slice first
// (a bare string becomes a one-element slice), so scalar fields accept a
// single-element list as a fallback source for free.
type fieldRule struct {
	key    string
	scalar bool                // take at most one value
	format func(string) string // nil means verbatim
}

// verbatim rules insert each element unchanged.
func verbatim(key string) fieldRule {
	return fieldRule{key: key}
}

func scalar(key string, format func(string) string) fieldRule {
	return fieldRule{key: key, scalar: true, format: format}
}

func list(key string, format func(string) string) fieldRule {
	return fieldRule{key: key, format: format}
}

func prefixed(prefix string) func(string) string {
	return func(v string) string { return prefix + v }
}

// formatStops maps the wire encoding of the stops preference to display text.
func formatStops(v string) string {
	switch v {
	case "0":
		return "Non-stop"
	case "1":
		return "1 stop"
	default:
		return fmt.Sprintf("%s stops", v)
	}
}

// The two field tables are fixed and disjoint except for the generic "chips"
// passthrough, which is merged for every domain (see Normalize).
var flightRules = []fieldRule{
	scalar("trip_duration", nil),
	verbatim("preferred_airlines"),
	list("not_preferred_airlines", prefixed("Not ")),
	list("preferred_departure_time", prefixed("Departure: ")),
	list("stops_preference", formatStops),
	scalar("flight_budget", prefixed("Budget: ")),
	verbatim("flight_amenities"),
}

var hotelRules = []fieldRule{
	scalar("star_rating", func(v string) string { return v + " stars" }),
	scalar("preferred_user_rating", prefixed("User rating: ")),
	scalar("stay_budget", prefixed("Budget: ")),
	verbatim("amenities"),
	verbatim("accommodation_type"),
	verbatim("preferred_hotel_names"),
}

// chipsKey is the server-driven passthrough field: a raw list of
// already-formatted labels merged in for every domain.
const chipsKey = "chips"

// Normalize maps one decoded entity to its chip set using the field table for
// the given domain. It is pure and total: absent, null, empty, or oddly typed
// fields contribute no chips and never cause an error. Unknown domains yield
// only the passthrough chips.
func Normalize(entity Entity, domain Domain) ChipSet {
	chips := NewChipSet()
	if entity == nil {
		return chips
	}

	var rules []fieldRule
	switch domain {
	case DomainFlight:
		rules = flightRules
	case DomainHotel:
		rules = hotelRules
	}

	for _, r := range rules {
		values := stringValues(entity[r.key])
		if r.scalar && len(values) > 1 {
			values = values[:1]
		}
		for _, v := range values {
			if r.format != nil {
				v = r.format(v)
			}
			chips.Add(v)
		}
	}

	for _, v := range stringValues(entity[chipsKey]) {
		chips.Add(v)
	}

	return chips
}

// stringValues coerces an entity value to its non-empty string elements.
// Strings become a one-element slice; lists keep only their string elements;
// anything else (nil, numbers, nested objects) yields nothing.
func stringValues(v any) []string {
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, el := range t {
			s, ok := el.(string)
			if !ok || strings.TrimSpace(s) == "" {
				continue
			}
			out = append(out, s)
		}
		return out
	case []string:
		out := make([]string, 0, len(t))
		for _, s := range t {
			if strings.TrimSpace(s) == "" {
				continue
			}
			out = append(out, s)
		}
		return out
	default:
		return nil
	}
}
