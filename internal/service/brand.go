package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
	"golang.org/x/sync/errgroup"

	"github.com/birdwell/trading-cards/internal/brand"
	"github.com/birdwell/trading-cards/internal/domain"
	domainerrors "github.com/birdwell/trading-cards/internal/errors"
	"github.com/birdwell/trading-cards/internal/store"
)

// DefaultStatsConcurrency bounds parallel per-set stats computations.
const DefaultStatsConcurrency = 8

// maxSuggestions caps the brand suggestions attached to a not found error.
const maxSuggestions = 3

// BrandService groups sets by brand and rolls their stats up into the
// overview and per-brand detail views. Every call reads the store afresh.
type BrandService struct {
	store       store.Store
	stats       *StatsService
	classifier  *brand.Classifier
	concurrency int
	logger      *slog.Logger
}

// NewBrandService creates a new brand service. A concurrency below 1 uses
// DefaultStatsConcurrency.
func NewBrandService(
	store store.Store,
	stats *StatsService,
	classifier *brand.Classifier,
	concurrency int,
	logger *slog.Logger,
) *BrandService {
	if concurrency < 1 {
		concurrency = DefaultStatsConcurrency
	}
	return &BrandService{
		store:       store,
		stats:       stats,
		classifier:  classifier,
		concurrency: concurrency,
		logger:      logger,
	}
}

// brandBucket is the sets classified to one brand, in store order.
type brandBucket struct {
	brand string
	sets  []*domain.Set
}

// Overview returns one summary per brand, sorted by brand name.
// TotalSets counts every set classified to the brand, including any whose
// stats could not be computed.
func (s *BrandService) Overview(ctx context.Context) ([]domain.BrandSummary, error) {
	sets, err := s.store.ListSets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}

	stats, err := s.statsFor(ctx, sets)
	if err != nil {
		return nil, err
	}

	buckets := s.bucket(sets)
	summaries := make([]domain.BrandSummary, 0, len(buckets))
	for _, b := range buckets {
		summary := domain.BrandSummary{
			Brand: b.brand,
			Sets:  make([]domain.SetWithStats, 0, len(b.sets)),
		}
		summary.OverallStats.TotalSets = len(b.sets)
		for _, set := range b.sets {
			st, ok := stats[set.ID]
			if !ok {
				continue
			}
			summary.Sets = append(summary.Sets, domain.SetWithStats{Set: set, Stats: st})
			summary.OverallStats.Add(st)
		}
		summaries = append(summaries, summary)
	}

	slices.SortFunc(summaries, func(a, b domain.BrandSummary) int {
		return strings.Compare(a.Brand, b.Brand)
	})
	return summaries, nil
}

// Details returns the drill-down view of one brand. The name is matched
// case-insensitively against the normalized brand of every set. Unknown
// brands yield a NOT_FOUND error whose details carry close brand names
// under "suggestions".
func (s *BrandService) Details(ctx context.Context, brandName string) (*domain.BrandDetail, error) {
	sets, err := s.store.ListSets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}

	wanted := strings.TrimSpace(brandName)
	var (
		label   string
		matched []*domain.Set
	)
	for _, set := range sets {
		b := s.classifier.Brand(set.Name)
		if strings.EqualFold(b, wanted) {
			if label == "" {
				label = b
			}
			matched = append(matched, set)
		}
	}

	if len(matched) == 0 {
		return nil, domainerrors.NotFoundf("brand %q not found", wanted).
			WithDetails(map[string][]string{"suggestions": s.suggest(wanted, sets)})
	}

	stats, err := s.statsFor(ctx, matched)
	if err != nil {
		return nil, err
	}

	detail := &domain.BrandDetail{
		Brand:      label,
		YearGroups: []domain.YearGroup{},
	}
	detail.OverallStats.TotalSets = len(matched)

	groups := make(map[string]*domain.YearGroup)
	for _, set := range matched {
		st, ok := stats[set.ID]
		if !ok {
			continue
		}
		detail.OverallStats.Add(st)

		g, ok := groups[set.Year]
		if !ok {
			g = &domain.YearGroup{
				Year:       set.Year,
				Basketball: []domain.SetWithStats{},
				Football:   []domain.SetWithStats{},
			}
			groups[set.Year] = g
		}

		entry := domain.SetWithStats{Set: set, Stats: st}
		switch {
		case set.Sport.Is(domain.SportBasketball):
			g.Basketball = append(g.Basketball, entry)
		case set.Sport.Is(domain.SportFootball):
			g.Football = append(g.Football, entry)
		default:
			s.logger.Debug("set sport not grouped", "set_id", set.ID, "sport", set.Sport)
		}
	}

	for _, g := range groups {
		detail.YearGroups = append(detail.YearGroups, *g)
	}
	// Plain string order, so "999" sorts above "2020".
	slices.SortFunc(detail.YearGroups, func(a, b domain.YearGroup) int {
		return strings.Compare(b.Year, a.Year)
	})

	return detail, nil
}

// bucket groups sets by brand, keeping store order within each bucket.
func (s *BrandService) bucket(sets []*domain.Set) []brandBucket {
	index := make(map[string]int)
	var buckets []brandBucket
	for _, set := range sets {
		b := s.classifier.Brand(set.Name)
		i, ok := index[b]
		if !ok {
			i = len(buckets)
			index[b] = i
			buckets = append(buckets, brandBucket{brand: b})
		}
		buckets[i].sets = append(buckets[i].sets, set)
	}
	return buckets
}

// statsFor computes stats for sets in parallel. Sets that vanished between
// listing and counting are left out of the result.
func (s *BrandService) statsFor(ctx context.Context, sets []*domain.Set) (map[int64]domain.SetStats, error) {
	results := make([]domain.StatsResult, len(sets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, set := range sets {
		g.Go(func() error {
			res, err := s.stats.ComputeStats(gctx, set.ID)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[int64]domain.SetStats, len(sets))
	for i, res := range results {
		st, ok := res.Get()
		if !ok {
			s.logger.Debug("skipping set without stats", "set_id", sets[i].ID)
			continue
		}
		out[sets[i].ID] = st
	}
	return out, nil
}

// suggest returns up to maxSuggestions known brands that fuzzy-match name.
func (s *BrandService) suggest(name string, sets []*domain.Set) []string {
	var brands []string
	seen := make(map[string]struct{})
	for _, set := range sets {
		b := s.classifier.Brand(set.Name)
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		brands = append(brands, b)
	}

	lower := make([]string, len(brands))
	for i, b := range brands {
		lower[i] = strings.ToLower(b)
	}

	suggestions := []string{}
	for _, m := range fuzzy.Find(strings.ToLower(name), lower) {
		suggestions = append(suggestions, brands[m.Index])
		if len(suggestions) == maxSuggestions {
			break
		}
	}
	return suggestions
}
