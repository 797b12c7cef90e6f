package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/birdwell/trading-cards/internal/domain"
	"github.com/birdwell/trading-cards/internal/service"
)

func (s *Server) registerCardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchCards",
		Method:      http.MethodGet,
		Path:        "/api/v1/cards",
		Summary:     "Find cards",
		Description: "Returns cards across all sets matching a player fragment, card type and/or card number",
		Tags:        []string{"Cards"},
	}, s.handleSearchCards)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCard",
		Method:      http.MethodGet,
		Path:        "/api/v1/cards/{id}",
		Summary:     "Get card",
		Tags:        []string{"Cards"},
	}, s.handleGetCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCardOwnership",
		Method:      http.MethodPatch,
		Path:        "/api/v1/cards/{id}/ownership",
		Summary:     "Set card ownership",
		Description: "Marks a card as owned or not owned",
		Tags:        []string{"Cards"},
	}, s.handleUpdateCardOwnership)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCard",
		Method:      http.MethodDelete,
		Path:        "/api/v1/cards/{id}",
		Summary:     "Delete card",
		Tags:        []string{"Cards"},
	}, s.handleDeleteCard)
}

// SearchCardsInput contains card lookup filters. At least one is required.
type SearchCardsInput struct {
	Player string `query:"player" maxLength:"200" doc:"Case-insensitive player name fragment"`
	Type   string `query:"type" maxLength:"100" doc:"Exact card type"`
	Number string `query:"number" pattern:"^[0-9]+$" doc:"Exact card number"`
}

// ListCardsResponse contains a list of cards.
type ListCardsResponse struct {
	Cards []*domain.Card `json:"cards" doc:"Matching cards"`
}

// ListCardsOutput wraps a card list for Huma.
type ListCardsOutput struct {
	Body ListCardsResponse
}

// CardIDInput identifies a card.
type CardIDInput struct {
	ID int64 `path:"id" minimum:"1" doc:"Card ID"`
}

// CardOutput wraps a card for Huma.
type CardOutput struct {
	Body *domain.Card
}

// UpdateOwnershipRequest is the request body for toggling ownership.
type UpdateOwnershipRequest struct {
	IsOwned bool `json:"isOwned" doc:"Whether the card is in the collection"`
}

// UpdateOwnershipInput wraps the ownership request for Huma.
type UpdateOwnershipInput struct {
	ID   int64 `path:"id" minimum:"1" doc:"Card ID"`
	Body UpdateOwnershipRequest
}

func (s *Server) handleSearchCards(ctx context.Context, input *SearchCardsInput) (*ListCardsOutput, error) {
	q := service.CardQuery{Player: input.Player, Type: input.Type}
	if input.Number != "" {
		n, err := strconv.Atoi(input.Number)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid card number")
		}
		q.Number = &n
	}

	cards, err := s.services.Card.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	return &ListCardsOutput{Body: ListCardsResponse{Cards: cards}}, nil
}

func (s *Server) handleGetCard(ctx context.Context, input *CardIDInput) (*CardOutput, error) {
	card, err := s.services.Card.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: card}, nil
}

func (s *Server) handleUpdateCardOwnership(ctx context.Context, input *UpdateOwnershipInput) (*CardOutput, error) {
	card, err := s.services.Card.SetOwned(ctx, input.ID, input.Body.IsOwned)
	if err != nil {
		return nil, err
	}
	return &CardOutput{Body: card}, nil
}

func (s *Server) handleDeleteCard(ctx context.Context, input *CardIDInput) (*DeleteOutput, error) {
	if err := s.services.Card.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &DeleteOutput{Body: DeleteResponse{ID: input.ID, Deleted: true}}, nil
}
