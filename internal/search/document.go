// Package search provides full-text search over the card catalog using Bleve.
// Set name, year, sport and brand are denormalized into every card document
// so a single query can match players and sets together and facet the hits.
package search

import (
	"strconv"
	"strings"

	"github.com/birdwell/trading-cards/internal/domain"
)

// docIDPrefix namespaces card documents in the index.
const docIDPrefix = "card-"

// CardDocument is the indexed form of a card.
type CardDocument struct {
	ID         string `json:"id"`
	CardID     int64  `json:"card_id"`
	CardNumber int    `json:"card_number"`
	PlayerName string `json:"player_name"`
	CardType   string `json:"card_type"`
	Owned      bool   `json:"owned"`

	// Denormalized from the set.
	SetID   int64  `json:"set_id"`
	SetName string `json:"set_name"`
	Year    string `json:"year"`
	Sport   string `json:"sport"`
	Brand   string `json:"brand"`
}

// NewCardDocument builds the document for card within set.
func NewCardDocument(set *domain.Set, card *domain.Card, brand string) *CardDocument {
	return &CardDocument{
		ID:         DocID(card.ID),
		CardID:     card.ID,
		CardNumber: card.CardNumber,
		PlayerName: card.PlayerName,
		CardType:   card.CardType,
		Owned:      card.IsOwned,
		SetID:      set.ID,
		SetName:    set.Name,
		Year:       set.Year,
		Sport:      string(set.Sport),
		Brand:      brand,
	}
}

// DocID returns the index document ID for a card.
func DocID(cardID int64) string {
	return docIDPrefix + strconv.FormatInt(cardID, 10)
}

// CardIDFromDocID reverses DocID.
func CardIDFromDocID(docID string) (int64, bool) {
	raw, ok := strings.CutPrefix(docID, docIDPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ToMap converts the document to a map keyed by the mapping's field names.
func (d *CardDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":          d.ID,
		"card_id":     float64(d.CardID),
		"card_number": float64(d.CardNumber),
		"player_name": d.PlayerName,
		"card_type":   d.CardType,
		"owned":       d.Owned,
		"set_id":      float64(d.SetID),
		"set_name":    d.SetName,
		"year":        d.Year,
		"sport":       d.Sport,
	}
	if d.Brand != "" {
		m["brand"] = d.Brand
	}
	return m
}
