// Package checklist turns checklist files into sets and card rows: it parses
// the release year and set name out of a file name, detects the sport, and
// decodes the CSV and JSON row formats accepted by the importer.
package checklist

import (
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/birdwell/trading-cards/internal/domain"
)

// SetInfo is what a checklist file name says about its set.
type SetInfo struct {
	Year string
	Name string
}

var (
	seasonPattern   = regexp.MustCompile(`(?i)^(\d{4}-\d{2})-(.+?)-(Basketball|Football)-Checklist$`)
	yearPattern     = regexp.MustCompile(`(?i)^(\d{4})-(.+?)-(Basketball|Football)-Checklist$`)
	fallbackPattern = regexp.MustCompile(`(?i)^(\d{4}(?:-\d{2})?)-?(.+?)(?:-(Basketball|Football|Checklist))*$`)
	trailingWords   = regexp.MustCompile(`(?i)\s+(Basketball|Football|Checklist)\s*$`)
	extension       = regexp.MustCompile(`\.[^/.]+$`)
)

// now is swapped in tests.
var now = time.Now

// ParseFileName extracts the year and set name from a checklist file name.
//
//	"2024-25-Panini-NBA-Hoops-Basketball-Checklist.xlsx" -> {2024-25, Panini NBA Hoops}
//	"2024-Panini-Prizm-Football-Checklist.xlsx"          -> {2024, Panini Prizm}
//	"2024-Panini-Donruss-Football.xlsx"                  -> {2024, Panini Donruss}
//
// Names without a leading year get the current year and the whole base name.
func ParseFileName(fileName string) SetInfo {
	base := BaseName(fileName)
	base = extension.ReplaceAllString(base, "")

	for _, re := range []*regexp.Regexp{seasonPattern, yearPattern} {
		if m := re.FindStringSubmatch(base); m != nil {
			return SetInfo{Year: m[1], Name: undash(m[2])}
		}
	}

	if m := fallbackPattern.FindStringSubmatch(base); m != nil {
		name := trailingWords.ReplaceAllString(undash(m[2]), "")
		return SetInfo{Year: m[1], Name: strings.TrimSpace(name)}
	}

	return SetInfo{
		Year: strconv.Itoa(now().Year()),
		Name: undash(base),
	}
}

// BaseName strips any directory part, accepting both slash styles.
// The result is the key sets are deduplicated on.
func BaseName(fileName string) string {
	return path.Base(strings.ReplaceAll(fileName, `\`, "/"))
}

// DetectSport guesses the sport from a URL or file name. Basketball wins when
// both words appear; anything else defaults to football.
func DetectSport(s string) domain.Sport {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "basketball"):
		return domain.SportBasketball
	case strings.Contains(lower, "football"):
		return domain.SportFootball
	default:
		return domain.SportFootball
	}
}

func undash(s string) string {
	return strings.ReplaceAll(s, "-", " ")
}
