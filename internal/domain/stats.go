package domain

import "math"

// PlayerPreviewLimit caps SetStats.Players. The preview keeps encounter
// order and is not a ranking.
const PlayerPreviewLimit = 10

// SetStats is derived from a set's cards on every request. It is never persisted.
type SetStats struct {
	TotalCards      int      `json:"totalCards"`
	OwnedCards      int      `json:"ownedCards"`
	UniqueCardTypes int      `json:"uniqueCardTypes"`
	UniquePlayers   int      `json:"uniquePlayers"`
	CardTypes       []string `json:"cardTypes"`
	Players         []string `json:"players"`
}

// CompletionPercentage returns the rounded share of owned cards.
func (s SetStats) CompletionPercentage() int {
	return CompletionPercentage(s.OwnedCards, s.TotalCards)
}

// ComputeSetStats folds a set's cards into SetStats.
func ComputeSetStats(cards []*Card) SetStats {
	stats := SetStats{
		CardTypes: []string{},
		Players:   []string{},
	}

	seenTypes := make(map[string]struct{})
	seenPlayers := make(map[string]struct{})

	for _, c := range cards {
		stats.TotalCards++
		if c.IsOwned {
			stats.OwnedCards++
		}
		if _, ok := seenTypes[c.CardType]; !ok {
			seenTypes[c.CardType] = struct{}{}
			stats.CardTypes = append(stats.CardTypes, c.CardType)
		}
		if _, ok := seenPlayers[c.PlayerName]; !ok {
			seenPlayers[c.PlayerName] = struct{}{}
			if len(stats.Players) < PlayerPreviewLimit {
				stats.Players = append(stats.Players, c.PlayerName)
			}
		}
	}

	stats.UniqueCardTypes = len(seenTypes)
	stats.UniquePlayers = len(seenPlayers)
	return stats
}

// CompletionPercentage returns round(100 * owned / total), or 0 when total is 0.
func CompletionPercentage(owned, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(owned) / float64(total)))
}

// StatsResult is the outcome of a stats lookup: either the stats of an
// existing set or an explicit not-found marker. A set with zero cards is
// Found with zero counts, never NotFound.
type StatsResult struct {
	stats SetStats
	found bool
}

// FoundStats wraps stats for an existing set.
func FoundStats(stats SetStats) StatsResult {
	return StatsResult{stats: stats, found: true}
}

// StatsNotFound reports that the requested set does not exist.
func StatsNotFound() StatsResult {
	return StatsResult{}
}

// Get returns the stats and whether the set was found.
func (r StatsResult) Get() (SetStats, bool) {
	return r.stats, r.found
}

// Found reports whether the set existed.
func (r StatsResult) Found() bool {
	return r.found
}
