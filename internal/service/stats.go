package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/birdwell/trading-cards/internal/domain"
	"github.com/birdwell/trading-cards/internal/store"
)

// StatsService computes per-set collection statistics.
// Stats are derived from the store on every call and never cached.
type StatsService struct {
	store  store.Store
	logger *slog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(store store.Store, logger *slog.Logger) *StatsService {
	return &StatsService{
		store:  store,
		logger: logger,
	}
}

// ComputeStats returns the stats of set setID. A missing set yields
// domain.StatsNotFound and a nil error; store failures are returned.
func (s *StatsService) ComputeStats(ctx context.Context, setID int64) (domain.StatsResult, error) {
	if _, err := s.store.GetSet(ctx, setID); err != nil {
		if store.IsNotFound(err) {
			return domain.StatsNotFound(), nil
		}
		return domain.StatsResult{}, fmt.Errorf("get set %d: %w", setID, err)
	}

	cards, err := s.store.ListCardsBySet(ctx, setID)
	if err != nil {
		return domain.StatsResult{}, fmt.Errorf("list cards of set %d: %w", setID, err)
	}

	return domain.FoundStats(domain.ComputeSetStats(cards)), nil
}
