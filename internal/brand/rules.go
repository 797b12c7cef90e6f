package brand

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Rules is the classification data: the ordered brand patterns and the two
// word lists consulted by the two-word fallback. The defaults are curated by
// hand and may be replaced per field from a TOML file.
type Rules struct {
	// Patterns are tried in order; each is anchored at the start of the set
	// name and matched case-insensitively. Longer product lines must come
	// before their manufacturer ("Topps Chrome" before "Topps").
	Patterns []string `toml:"patterns"`

	// SubBrandWords make the second token part of the brand.
	SubBrandWords []string `toml:"sub_brand_words"`

	// NonBrandWords stop the second token from joining the brand.
	NonBrandWords []string `toml:"non_brand_words"`
}

// DefaultRules returns the built-in rule set.
func DefaultRules() Rules {
	return Rules{
		Patterns: []string{
			// Panini
			`Panini\s+(?:NBA\s+)?Hoops`,
			`Panini\s+Prizm`,
			`Panini\s+Select`,
			`Panini\s+Contenders`,
			`Panini\s+Chronicles`,
			`Panini\s+Mosaic`,
			`Panini\s+Immaculate`,
			`Panini\s+National\s+Treasures`,
			`Panini\s+Flawless`,

			// Topps
			`Topps\s+Chrome`,
			`Topps\s+Stadium\s+Club`,
			`Topps\s+Finest`,
			`Topps\s+Heritage`,
			`Topps\s+Bowman`,
			`Topps`,

			// Donruss
			`Donruss\s+Optic`,
			`Donruss\s+Elite`,
			`Donruss\s+Rated\s+Rookies`,
			`Donruss`,

			// Upper Deck
			`Upper\s+Deck\s+SP\s+Authentic`,
			`Upper\s+Deck\s+Artifacts`,
			`Upper\s+Deck\s+Black\s+Diamond`,
			`Upper\s+Deck`,

			// Leaf
			`Leaf\s+Metal`,
			`Leaf\s+Trinity`,
			`Leaf`,

			`Score`,

			// Bowman without the Topps prefix
			`Bowman\s+Chrome`,
			`Bowman\s+Sterling`,
			`Bowman`,
		},
		SubBrandWords: []string{
			"chrome", "optic", "prizm", "select", "hoops",
			"mosaic", "contenders", "ultra", "finest", "heritage",
		},
		NonBrandWords: []string{
			"basketball", "football", "baseball", "hockey",
			"cards", "trading", "collection",
		},
	}
}

// LoadRules reads rules from a TOML file. Any list left out of the file
// keeps its default.
//
// Example:
//
//	patterns = ['Panini\s+Prizm', 'Topps']
//	sub_brand_words = ["chrome", "optic"]
func LoadRules(path string) (Rules, error) {
	f, err := os.Open(path)
	if err != nil {
		return Rules{}, fmt.Errorf("open brand rules: %w", err)
	}
	defer f.Close()

	var fromFile Rules
	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fromFile); err != nil {
		return Rules{}, fmt.Errorf("parse brand rules %s: %w", path, err)
	}

	rules := DefaultRules()
	if len(fromFile.Patterns) > 0 {
		rules.Patterns = fromFile.Patterns
	}
	if len(fromFile.SubBrandWords) > 0 {
		rules.SubBrandWords = fromFile.SubBrandWords
	}
	if len(fromFile.NonBrandWords) > 0 {
		rules.NonBrandWords = fromFile.NonBrandWords
	}
	return rules, nil
}
