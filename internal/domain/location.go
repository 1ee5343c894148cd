package domain

import (
	"fmt"
	"strings"
)

// Location is a physical site where an item is kept
type Location string

const (
	LocationLondon    Location = "London"
	LocationStockholm Location = "Stockholm"
)

// Locations lists every allowed location in display order.
var Locations = []Location{LocationLondon, LocationStockholm}

// Valid reports whether l is one of the allowed locations.
func (l Location) Valid() bool {
	for _, allowed := range Locations {
		if l == allowed {
			return true
		}
	}
	return false
}

func (l Location) String() string {
	return string(l)
}

// ParseLocation converts s to a Location. Matching is exact.
func ParseLocation(s string) (Location, error) {
	l := Location(s)
	if !l.Valid() {
		return "", fmt.Errorf("invalid location %q: %s", s, LocationMessage())
	}
	return l, nil
}

// LocationMessage is the client-facing explanation for a rejected location.
func LocationMessage() string {
	names := make([]string, len(Locations))
	for i, l := range Locations {
		names[i] = string(l)
	}
	return "Location must be either " + strings.Join(names, " or ") + "."
}
