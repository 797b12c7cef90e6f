package domain

// Set is one trading-card checklist release, e.g. "2024 Topps Chrome Football".
// SourceFile is the natural idempotency key: importing the same file twice
// must never produce two sets.
type Set struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Year       string `json:"year"` // "2024" or a season range such as "2023-24"
	SourceFile string `json:"sourceFile"`
	Sport      Sport  `json:"sport"`
}

// Card is a single checklist entry belonging to exactly one Set.
// CardNumber is not unique within a set (parallels share numbers).
type Card struct {
	ID         int64  `json:"id"`
	CardNumber int    `json:"cardNumber"`
	PlayerName string `json:"playerName"`
	CardType   string `json:"cardType"`
	SetID      int64  `json:"setId"`
	IsOwned    bool   `json:"isOwned"`
}

// SetDetail is a set together with its cards and their stats.
type SetDetail struct {
	Set   *Set     `json:"set"`
	Cards []*Card  `json:"cards"`
	Stats SetStats `json:"stats"`
}
