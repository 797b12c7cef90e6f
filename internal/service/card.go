package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/birdwell/trading-cards/internal/domain"
	domainerrors "github.com/birdwell/trading-cards/internal/errors"
	"github.com/birdwell/trading-cards/internal/sse"
	"github.com/birdwell/trading-cards/internal/store"
)

// CardService handles card lookups, ownership and deletion.
type CardService struct {
	store  store.Store
	events EventEmitter
	logger *slog.Logger
}

// NewCardService creates a new card service.
func NewCardService(store store.Store, logger *slog.Logger) *CardService {
	return &CardService{
		store:  store,
		events: noopEmitter{},
		logger: logger,
	}
}

// CardQuery selects cards across all sets. At least one field must be set;
// set fields are combined with AND.
type CardQuery struct {
	Player string // substring of the player name, case-insensitive
	Type   string // exact card type
	Number *int   // exact card number
}

// Get returns a single card.
func (s *CardService) Get(ctx context.Context, id int64) (*domain.Card, error) {
	card, err := s.store.GetCard(ctx, id)
	if err != nil {
		return nil, cardError(id, err)
	}
	return card, nil
}

// SetOwned marks a card as owned or not and returns the updated card.
func (s *CardService) SetOwned(ctx context.Context, id int64, owned bool) (*domain.Card, error) {
	card, err := s.store.SetCardOwned(ctx, id, owned)
	if err != nil {
		return nil, cardError(id, err)
	}
	s.logger.Debug("card ownership changed", "card_id", id, "owned", owned)
	s.events.Emit(sse.NewCardOwnershipEvent(card))
	return card, nil
}

// Delete removes a single card.
func (s *CardService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteCard(ctx, id); err != nil {
		return cardError(id, err)
	}
	s.logger.Info("card deleted", "card_id", id)
	s.events.Emit(sse.NewCardDeletedEvent(id))
	return nil
}

// Search returns the cards matching q in ID order.
func (s *CardService) Search(ctx context.Context, q CardQuery) ([]*domain.Card, error) {
	player := strings.TrimSpace(q.Player)
	cardType := strings.TrimSpace(q.Type)

	var (
		cards []*domain.Card
		err   error
	)
	switch {
	case player != "":
		cards, err = s.store.SearchCardsByPlayer(ctx, player)
	case cardType != "":
		cards, err = s.store.ListCardsByType(ctx, cardType)
	case q.Number != nil:
		cards, err = s.store.ListCardsByNumber(ctx, *q.Number)
	default:
		return nil, domainerrors.Validation("one of player, type or number is required")
	}
	if err != nil {
		return nil, fmt.Errorf("search cards: %w", err)
	}

	filtered := cards[:0]
	for _, c := range cards {
		if cardType != "" && c.CardType != cardType {
			continue
		}
		if q.Number != nil && c.CardNumber != *q.Number {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered, nil
}

func cardError(id int64, err error) error {
	if store.IsNotFound(err) {
		return domainerrors.NotFoundf("card %d not found", id)
	}
	return fmt.Errorf("card %d: %w", id, err)
}
