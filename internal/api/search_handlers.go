package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/birdwell/trading-cards/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search catalog",
		Description: "Full-text search over card players and set names with brand, sport and card type facets",
		Tags:        []string{"Search"},
	}, s.handleSearchCatalog)
}

// SearchCatalogInput contains search parameters.
type SearchCatalogInput struct {
	Query     string `query:"q" maxLength:"200" doc:"Search text; empty lists everything"`
	Sport     string `query:"sport" doc:"Filter by sport"`
	Year      string `query:"year" doc:"Filter by set year"`
	Brand     string `query:"brand" doc:"Filter by brand"`
	OwnedOnly bool   `query:"owned" doc:"Only cards in the collection"`
	Limit     int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Page size"`
	Offset    int    `query:"offset" minimum:"0" doc:"Hits to skip"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body *search.SearchResult
}

func (s *Server) handleSearchCatalog(ctx context.Context, input *SearchCatalogInput) (*SearchOutput, error) {
	if s.services.Search == nil {
		return nil, huma.Error503ServiceUnavailable("search is not available")
	}

	result, err := s.services.Search.Search(ctx, search.SearchParams{
		Query:     input.Query,
		Sport:     input.Sport,
		Year:      input.Year,
		Brand:     input.Brand,
		OwnedOnly: input.OwnedOnly,
		Limit:     input.Limit,
		Offset:    input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: result}, nil
}
