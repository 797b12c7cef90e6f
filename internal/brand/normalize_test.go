package brand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"panini prizm", "Panini Prizm"},
		{"DONRUSS OPTIC", "Donruss Optic"},
		{"  Topps   Chrome  ", "Topps Chrome"},
		{"topps", "Topps"},
		{"DONRUSS", "Donruss"},
		{"Panini NBA Hoops", "Panini Nba Hoops"},
		{"upper\tdeck", "Upper Deck"},
		{"école", "École"},
		{"ǆemal", "ǅemal"},
		{"ǄEMAL", "ǅemal"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"panini prizm", "DONRUSS OPTIC", "  Topps   Chrome  ", "UPPER DECK SP authentic",
		"école", "ǆungla", "o'neal", "123 go", "",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "Normalize(%q)", in)
	}
}
