package checklist

import (
	"testing"
	"time"

	"github.com/birdwell/trading-cards/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseFileName(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		expected SetInfo
	}{
		{"season with league", "2024-25-Panini-NBA-Hoops-Basketball-Checklist.xlsx", SetInfo{"2024-25", "Panini NBA Hoops"}},
		{"single year", "2024-Panini-Prizm-Football-Checklist.xlsx", SetInfo{"2024", "Panini Prizm"}},
		{"other brand", "2023-Topps-Chrome-Basketball-Checklist.xlsx", SetInfo{"2023", "Topps Chrome"}},
		{"season with series", "2023-24-Upper-Deck-Series-1-Basketball-Checklist.xlsx", SetInfo{"2023-24", "Upper Deck Series 1"}},
		{"no checklist suffix", "2024-Panini-Donruss-Football.xlsx", SetInfo{"2024", "Panini Donruss"}},
		{"with path", "./spreadsheet-downloads/2024-25-Panini-NBA-Hoops-Basketball-Checklist.xlsx", SetInfo{"2024-25", "Panini NBA Hoops"}},
		{"windows path", `C:\inbox\2024-Panini-Prizm-Football-Checklist.csv`, SetInfo{"2024", "Panini Prizm"}},
		{"lower case", "2024-panini-select-football-checklist.json", SetInfo{"2024", "panini select"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseFileName(tt.fileName))
		})
	}
}

func TestParseFileName_Fallback(t *testing.T) {
	original := now
	now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = original })

	assert.Equal(t, SetInfo{"2026", "random file name"}, ParseFileName("random-file-name.xlsx"))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "a.csv", BaseName("/inbox/a.csv"))
	assert.Equal(t, "a.csv", BaseName(`inbox\a.csv`))
	assert.Equal(t, "a.csv", BaseName("a.csv"))
}

func TestDetectSport(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected domain.Sport
	}{
		{"football url", "https://www.beckett.com/news/2024-panini-prizm-football-cards/", domain.SportFootball},
		{"basketball url", "https://www.beckett.com/news/2024-25-panini-nba-hoops-basketball-cards/", domain.SportBasketball},
		{"upper case football", "https://beckett.com/FOOTBALL-cards", domain.SportFootball},
		{"upper case basketball", "https://beckett.com/BASKETBALL-cards", domain.SportBasketball},
		{"both words", "https://beckett.com/basketball-vs-football-comparison", domain.SportBasketball},
		{"no keyword", "https://www.beckett.com/news/2024-panini-cards/", domain.SportFootball},
		{"file name", "2024-25-Panini-NBA-Hoops-Basketball-Checklist.csv", domain.SportBasketball},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectSport(tt.input))
		})
	}
}
