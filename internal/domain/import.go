package domain

// ChecklistRow is one parsed checklist line before it is attached to a set.
type ChecklistRow struct {
	CardNumber int    `json:"cardNumber" validate:"gte=0"`
	PlayerName string `json:"playerName" validate:"required,max=200"`
	CardType   string `json:"cardType" validate:"required,max=100"`
}

// ImportResult describes the outcome of importing a checklist.
// Created is false when the source file had already been imported; in that
// case Set is the existing set and Cards is empty.
type ImportResult struct {
	ImportID string  `json:"importId"`
	Created  bool    `json:"created"`
	Set      *Set    `json:"set"`
	Cards    []*Card `json:"cards"`
}
