package domain

import "strings"

// Sport is the closed set of sports a checklist can belong to.
type Sport string

// Supported sports.
const (
	SportBasketball Sport = "Basketball"
	SportFootball   Sport = "Football"
)

// Sports lists every supported sport in display order.
var Sports = []Sport{SportBasketball, SportFootball}

// Valid returns true if the sport is a recognized value.
func (s Sport) Valid() bool {
	switch s {
	case SportBasketball, SportFootball:
		return true
	default:
		return false
	}
}

// Is reports whether s names the same sport as other, ignoring case.
// Rows written before the sport column was validated may carry any casing.
func (s Sport) Is(other Sport) bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), strings.TrimSpace(string(other)))
}

// ParseSport maps a case-insensitive name to a Sport.
// The second return value is false when the name is not a supported sport.
func ParseSport(name string) (Sport, bool) {
	for _, sport := range Sports {
		if sport.Is(Sport(name)) {
			return sport, true
		}
	}
	return "", false
}
