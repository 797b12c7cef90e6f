package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Default and maximum page sizes.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string

	// Filters; empty means any.
	Sport     string
	Year      string
	Brand     string
	OwnedOnly bool

	Limit  int
	Offset int
}

// SearchResult is one page of card hits with facet counts over all matches.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"tookMs"`
	Hits   []SearchHit  `json:"hits"`
	Facets SearchFacets `json:"facets"`
}

// SearchHit is a single matching card.
type SearchHit struct {
	CardID     int64             `json:"cardId"`
	Score      float64           `json:"score"`
	CardNumber int               `json:"cardNumber"`
	PlayerName string            `json:"playerName"`
	CardType   string            `json:"cardType"`
	SetID      int64             `json:"setId"`
	SetName    string            `json:"setName"`
	Year       string            `json:"year"`
	Sport      string            `json:"sport"`
	Brand      string            `json:"brand,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// SearchFacets holds the top values of the keyword fields.
type SearchFacets struct {
	Brands    []FacetCount `json:"brands"`
	Sports    []FacetCount `json:"sports"`
	CardTypes []FacetCount `json:"cardTypes"`
}

// FacetCount is a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

var facetFields = map[string]func(*SearchFacets) *[]FacetCount{
	"brand":     func(f *SearchFacets) *[]FacetCount { return &f.Brands },
	"sport":     func(f *SearchFacets) *[]FacetCount { return &f.Sports },
	"card_type": func(f *SearchFacets) *[]FacetCount { return &f.CardTypes },
}

// Search executes a query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), limit, max(params.Offset, 0), false)
	req.SortBy([]string{"-_score", "card_id"})
	for field := range facetFields {
		req.AddFacet(field, bleve.NewFacetRequest(field, 20))
	}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("player_name")
	req.Highlight.AddField("set_name")
	req.Fields = []string{
		"card_id", "card_number", "player_name", "card_type",
		"set_id", "set_name", "year", "sport", "brand",
	}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
		Facets: SearchFacets{
			Brands:    []FacetCount{},
			Sports:    []FacetCount{},
			CardTypes: []FacetCount{},
		},
	}

	for _, hit := range res.Hits {
		h := SearchHit{Score: hit.Score}
		h.CardID, _ = CardIDFromDocID(hit.ID)
		if v, ok := hit.Fields["card_number"].(float64); ok {
			h.CardNumber = int(v)
		}
		if v, ok := hit.Fields["set_id"].(float64); ok {
			h.SetID = int64(v)
		}
		h.PlayerName, _ = hit.Fields["player_name"].(string)
		h.CardType, _ = hit.Fields["card_type"].(string)
		h.SetName, _ = hit.Fields["set_name"].(string)
		h.Year, _ = hit.Fields["year"].(string)
		h.Sport, _ = hit.Fields["sport"].(string)
		h.Brand, _ = hit.Fields["brand"].(string)

		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, h)
	}

	for field, target := range facetFields {
		facet, ok := res.Facets[field]
		if !ok || facet.Terms == nil {
			continue
		}
		dst := target(&result.Facets)
		for _, term := range facet.Terms.Terms() {
			*dst = append(*dst, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	return result, nil
}

// buildSearchQuery matches the text against player and set names, then
// narrows by the keyword filters.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		lower := strings.ToLower(q)

		playerMatch := bleve.NewMatchQuery(q)
		playerMatch.SetField("player_name")
		playerMatch.SetBoost(3.0)

		setMatch := bleve.NewMatchQuery(q)
		setMatch.SetField("set_name")
		setMatch.SetBoost(1.5)

		// Typo tolerance on player names.
		fuzzy := bleve.NewFuzzyQuery(lower)
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("player_name")
		fuzzy.SetBoost(0.8)

		textQueries := []query.Query{playerMatch, setMatch, fuzzy}

		if len(lower) >= 2 {
			prefix := bleve.NewPrefixQuery(lower)
			prefix.SetField("player_name")
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}
		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	for field, value := range map[string]string{
		"sport": params.Sport,
		"year":  params.Year,
		"brand": params.Brand,
	} {
		if value == "" {
			continue
		}
		tq := bleve.NewTermQuery(value)
		tq.SetField(field)
		queries = append(queries, tq)
	}

	if params.OwnedOnly {
		owned := bleve.NewBoolFieldQuery(true)
		owned.SetField("owned")
		queries = append(queries, owned)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}
