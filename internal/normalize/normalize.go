// Package normalize cleans free text coming from imported checklists before
// it is stored.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Text returns s with null bytes removed, unicode composed (NFC), runs of
// whitespace collapsed to a single space and the ends trimmed.
// Spreadsheet exports routinely carry non-breaking spaces and stray NULs.
func Text(s string) string {
	s = sanitizeString(s)
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// sanitizeString removes null bytes, which break both SQLite text handling
// and JSON encoding.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
}
