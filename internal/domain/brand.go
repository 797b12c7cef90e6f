package domain

// SetWithStats pairs a set with its freshly computed stats.
type SetWithStats struct {
	Set   *Set     `json:"set"`
	Stats SetStats `json:"stats"`
}

// OverallStats rolls up the sets of one brand.
type OverallStats struct {
	TotalSets            int `json:"totalSets"`
	TotalCards           int `json:"totalCards"`
	TotalOwnedCards      int `json:"totalOwnedCards"`
	CompletionPercentage int `json:"completionPercentage"`
}

// Add folds one set's stats into the totals and refreshes the percentage.
func (o *OverallStats) Add(stats SetStats) {
	o.TotalCards += stats.TotalCards
	o.TotalOwnedCards += stats.OwnedCards
	o.CompletionPercentage = CompletionPercentage(o.TotalOwnedCards, o.TotalCards)
}

// BrandSummary is one row of the brand overview.
type BrandSummary struct {
	Brand        string         `json:"brand"`
	Sets         []SetWithStats `json:"sets"`
	OverallStats OverallStats   `json:"overallStats"`
}

// YearGroup holds a brand's sets for one year, split by sport.
type YearGroup struct {
	Year       string         `json:"year"`
	Basketball []SetWithStats `json:"basketball"`
	Football   []SetWithStats `json:"football"`
}

// BrandDetail is the per-brand drill-down view.
type BrandDetail struct {
	Brand        string       `json:"brand"`
	OverallStats OverallStats `json:"overallStats"`
	YearGroups   []YearGroup  `json:"yearGroups"`
}
