package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/birdwell/trading-cards/internal/domain"
	domainerrors "github.com/birdwell/trading-cards/internal/errors"
	"github.com/birdwell/trading-cards/internal/service"
)

func (s *Server) registerSetRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listSets",
		Method:      http.MethodGet,
		Path:        "/api/v1/sets",
		Summary:     "List sets",
		Description: "Returns sets, optionally filtered by exact year and name fragment",
		Tags:        []string{"Sets"},
	}, s.handleListSets)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSet",
		Method:      http.MethodGet,
		Path:        "/api/v1/sets/{id}",
		Summary:     "Get set",
		Description: "Returns a set with its cards and statistics",
		Tags:        []string{"Sets"},
	}, s.handleGetSet)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSetStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/sets/{id}/stats",
		Summary:     "Get set statistics",
		Description: "Returns card counts, completion and unique players and card types of a set",
		Tags:        []string{"Sets"},
	}, s.handleGetSetStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateSet",
		Method:      http.MethodPatch,
		Path:        "/api/v1/sets/{id}",
		Summary:     "Update set",
		Description: "Renames a set or changes its sport",
		Tags:        []string{"Sets"},
	}, s.handleUpdateSet)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteSet",
		Method:      http.MethodDelete,
		Path:        "/api/v1/sets/{id}",
		Summary:     "Delete set",
		Description: "Deletes a set and all of its cards",
		Tags:        []string{"Sets"},
	}, s.handleDeleteSet)
}

// === DTOs ===

// ListSetsInput contains parameters for listing sets.
type ListSetsInput struct {
	Year string `query:"year" maxLength:"7" doc:"Exact year, e.g. 2024 or 2023-24"`
	Name string `query:"name" maxLength:"200" doc:"Case-insensitive name fragment"`
}

// ListSetsResponse contains a list of sets.
type ListSetsResponse struct {
	Sets []*domain.Set `json:"sets" doc:"Sets in ID order"`
}

// ListSetsOutput wraps the set list for Huma.
type ListSetsOutput struct {
	Body ListSetsResponse
}

// SetIDInput identifies a set.
type SetIDInput struct {
	ID int64 `path:"id" minimum:"1" doc:"Set ID"`
}

// SetDetailOutput wraps a set with its cards for Huma.
type SetDetailOutput struct {
	Body *domain.SetDetail
}

// SetStatsResponse contains the statistics of one set.
type SetStatsResponse struct {
	SetID                int64           `json:"setId" doc:"Set ID"`
	CompletionPercentage int             `json:"completionPercentage" doc:"Rounded share of owned cards, 0-100"`
	Stats                domain.SetStats `json:"stats"`
}

// SetStatsOutput wraps set statistics for Huma.
type SetStatsOutput struct {
	Body SetStatsResponse
}

// UpdateSetInput wraps the update set request for Huma.
type UpdateSetInput struct {
	ID   int64 `path:"id" minimum:"1" doc:"Set ID"`
	Body service.UpdateSetRequest
}

// SetOutput wraps a set for Huma.
type SetOutput struct {
	Body *domain.Set
}

// DeleteResponse confirms a deletion.
type DeleteResponse struct {
	ID      int64 `json:"id" doc:"ID of the deleted entity"`
	Deleted bool  `json:"deleted" doc:"Always true"`
}

// DeleteOutput wraps a deletion confirmation for Huma.
type DeleteOutput struct {
	Body DeleteResponse
}

// === Handlers ===

func (s *Server) handleListSets(ctx context.Context, input *ListSetsInput) (*ListSetsOutput, error) {
	sets, err := s.services.Set.List(ctx, service.SetFilter{Year: input.Year, Name: input.Name})
	if err != nil {
		return nil, err
	}
	return &ListSetsOutput{Body: ListSetsResponse{Sets: sets}}, nil
}

func (s *Server) handleGetSet(ctx context.Context, input *SetIDInput) (*SetDetailOutput, error) {
	detail, err := s.services.Set.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &SetDetailOutput{Body: detail}, nil
}

func (s *Server) handleGetSetStats(ctx context.Context, input *SetIDInput) (*SetStatsOutput, error) {
	result, err := s.services.Stats.ComputeStats(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	stats, found := result.Get()
	if !found {
		return nil, domainerrors.NotFoundf("set %d not found", input.ID)
	}

	return &SetStatsOutput{Body: SetStatsResponse{
		SetID:                input.ID,
		CompletionPercentage: stats.CompletionPercentage(),
		Stats:                stats,
	}}, nil
}

func (s *Server) handleUpdateSet(ctx context.Context, input *UpdateSetInput) (*SetOutput, error) {
	set, err := s.services.Set.Update(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &SetOutput{Body: set}, nil
}

func (s *Server) handleDeleteSet(ctx context.Context, input *SetIDInput) (*DeleteOutput, error) {
	if err := s.services.Set.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &DeleteOutput{Body: DeleteResponse{ID: input.ID, Deleted: true}}, nil
}
