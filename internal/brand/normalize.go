package brand

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize produces a stable grouping key: whitespace is collapsed and every
// word is lowercased with its first letter in title case.
//
//	"panini prizm"        -> "Panini Prizm"
//	"  Topps   Chrome  "  -> "Topps Chrome"
//	"Panini NBA Hoops"    -> "Panini Nba Hoops"
//
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	// Casers carry state and must not be shared across goroutines.
	lower := cases.Lower(language.Und)

	words := strings.Fields(norm.NFC.String(s))
	for i, w := range words {
		words[i] = titleWord(lower, w)
	}
	return strings.Join(words, " ")
}

func titleWord(lower cases.Caser, w string) string {
	w = lower.String(w)
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return string(unicode.ToTitle(r)) + w[size:]
}
