// Package brand derives a grouping label ("Panini Prizm", "Topps Chrome")
// from a set's display name. Brands are never stored; they are recomputed
// from the name whenever sets are grouped.
package brand

import (
	"fmt"
	"regexp"
	"strings"
)

var yearToken = regexp.MustCompile(`^\d{4}(-\d{2})?$`)

// Classifier maps set names to brand labels using a Rules table.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	patterns []*regexp.Regexp
	subBrand map[string]struct{}
	nonBrand map[string]struct{}
}

// NewClassifier compiles the rule patterns.
func NewClassifier(rules Rules) (*Classifier, error) {
	c := &Classifier{
		patterns: make([]*regexp.Regexp, 0, len(rules.Patterns)),
		subBrand: wordSet(rules.SubBrandWords),
		nonBrand: wordSet(rules.NonBrandWords),
	}
	for _, p := range rules.Patterns {
		re, err := regexp.Compile(`(?i)^(?:` + p + `)`)
		if err != nil {
			return nil, fmt.Errorf("compile brand pattern %q: %w", p, err)
		}
		c.patterns = append(c.patterns, re)
	}
	return c, nil
}

// Default returns a classifier over DefaultRules.
func Default() *Classifier {
	c, err := NewClassifier(DefaultRules())
	if err != nil {
		panic(err)
	}
	return c
}

// Classify returns the brand part of a set name, keeping the input's casing.
// It never fails. For any non-empty input the result is non-empty: in the
// worst case it is the first word of the name.
//
// Manufacturers without a recognised product line fall back to a two-word
// guess ("Unknown Brand Name" -> "Unknown Brand"). That heuristic is known
// to be loose for names outside the pattern list.
func (c *Classifier) Classify(setName string) string {
	for _, re := range c.patterns {
		if m := re.FindString(setName); m != "" {
			return strings.TrimSpace(m)
		}
	}

	words := strings.Fields(setName)
	if len(words) > 0 && yearToken.MatchString(words[0]) {
		words = words[1:]
	}

	if len(words) >= 2 {
		second := strings.ToLower(words[1])
		if _, ok := c.subBrand[second]; ok {
			return words[0] + " " + words[1]
		}
		if _, ok := c.nonBrand[second]; !ok {
			return words[0] + " " + words[1]
		}
	}

	if len(words) > 0 {
		return words[0]
	}
	if trimmed := strings.TrimSpace(setName); trimmed != "" {
		return trimmed
	}
	return setName
}

// Brand returns the normalized grouping key for a set name.
func (c *Classifier) Brand(setName string) string {
	return Normalize(c.Classify(setName))
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return set
}
