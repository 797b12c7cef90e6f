package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/birdwell/trading-cards/internal/domain"
	"github.com/birdwell/trading-cards/internal/search"
	"github.com/birdwell/trading-cards/internal/store"
)

// SearchService runs catalog searches and rebuilds the index from the store.
type SearchService struct {
	index  *search.SearchIndex
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search queries the card index. The sport filter accepts any casing.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	params.Query = strings.TrimSpace(params.Query)
	if sport, ok := domain.ParseSport(params.Sport); ok {
		params.Sport = string(sport)
	}
	return s.index.Search(ctx, params)
}

// Reindex rebuilds the index from every set and card in the store and
// returns the number of cards indexed.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	start := time.Now()

	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	sets, err := s.store.ListSets(ctx)
	if err != nil {
		return 0, fmt.Errorf("list sets: %w", err)
	}

	total := 0
	for _, set := range sets {
		cards, err := s.store.ListCardsBySet(ctx, set.ID)
		if err != nil {
			return total, fmt.Errorf("list cards of set %d: %w", set.ID, err)
		}
		if err := s.index.IndexCards(ctx, set, cards); err != nil {
			return total, fmt.Errorf("index set %d: %w", set.ID, err)
		}
		total += len(cards)
	}

	s.logger.Info("search index rebuilt", "sets", len(sets), "cards", total, "duration", time.Since(start))
	return total, nil
}

// ReindexIfEmpty rebuilds the index when it holds no documents but the store
// has cards, e.g. after a mapping change or a fresh index directory.
func (s *SearchService) ReindexIfEmpty(ctx context.Context) error {
	count, err := s.index.DocumentCount()
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	if count > 0 {
		return nil
	}

	cards, err := s.store.ListCards(ctx)
	if err != nil {
		return fmt.Errorf("list cards: %w", err)
	}
	if len(cards) == 0 {
		return nil
	}

	_, err = s.Reindex(ctx)
	return err
}

// DocumentCount returns the number of indexed cards.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}
