package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/birdwell/trading-cards/internal/domain"
	domainerrors "github.com/birdwell/trading-cards/internal/errors"
	"github.com/birdwell/trading-cards/internal/normalize"
	"github.com/birdwell/trading-cards/internal/sse"
	"github.com/birdwell/trading-cards/internal/store"
	"github.com/birdwell/trading-cards/internal/validation"
)

// SetService handles set browsing and editing.
type SetService struct {
	store     store.Store
	validator *validation.Validator
	events    EventEmitter
	logger    *slog.Logger
}

// NewSetService creates a new set service.
func NewSetService(store store.Store, validator *validation.Validator, logger *slog.Logger) *SetService {
	return &SetService{
		store:     store,
		validator: validator,
		events:    noopEmitter{},
		logger:    logger,
	}
}

// SetFilter narrows ListSets. Empty fields match everything.
type SetFilter struct {
	Year string // exact
	Name string // substring, case-insensitive
}

// UpdateSetRequest carries the editable fields of a set. Nil fields are
// left unchanged.
type UpdateSetRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Sport *string `json:"sport,omitempty" validate:"omitempty,sport"`
}

// List returns the sets matching filter in ID order.
func (s *SetService) List(ctx context.Context, filter SetFilter) ([]*domain.Set, error) {
	year := strings.TrimSpace(filter.Year)
	name := strings.TrimSpace(filter.Name)

	var (
		sets []*domain.Set
		err  error
	)
	switch {
	case year != "":
		sets, err = s.store.ListSetsByYear(ctx, year)
	case name != "":
		sets, err = s.store.SearchSetsByName(ctx, name)
	default:
		sets, err = s.store.ListSets(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}

	if year != "" && name != "" {
		filtered := sets[:0]
		for _, set := range sets {
			if strings.Contains(strings.ToLower(set.Name), strings.ToLower(name)) {
				filtered = append(filtered, set)
			}
		}
		sets = filtered
	}
	return sets, nil
}

// Get returns a set with its cards and stats.
func (s *SetService) Get(ctx context.Context, id int64) (*domain.SetDetail, error) {
	set, err := s.store.GetSet(ctx, id)
	if err != nil {
		return nil, setError(id, err)
	}

	cards, err := s.store.ListCardsBySet(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list cards of set %d: %w", id, err)
	}

	return &domain.SetDetail{
		Set:   set,
		Cards: cards,
		Stats: domain.ComputeSetStats(cards),
	}, nil
}

// Update edits a set's name and sport.
func (s *SetService) Update(ctx context.Context, id int64, req UpdateSetRequest) (*domain.Set, error) {
	if req.Name != nil {
		trimmed := normalize.Text(*req.Name)
		req.Name = &trimmed
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Name == nil && req.Sport == nil {
		return nil, domainerrors.Validation("nothing to update")
	}

	set, err := s.store.GetSet(ctx, id)
	if err != nil {
		return nil, setError(id, err)
	}

	if req.Name != nil {
		set.Name = *req.Name
	}
	if req.Sport != nil {
		set.Sport, _ = domain.ParseSport(*req.Sport)
	}

	if err := s.store.UpdateSet(ctx, set); err != nil {
		return nil, setError(id, err)
	}

	s.logger.Info("set updated", "set_id", id, "name", set.Name, "sport", set.Sport)
	s.events.Emit(sse.NewSetUpdatedEvent(set))
	return set, nil
}

// Delete removes a set and all of its cards.
func (s *SetService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteSet(ctx, id); err != nil {
		return setError(id, err)
	}
	s.logger.Info("set deleted", "set_id", id)
	s.events.Emit(sse.NewSetDeletedEvent(id))
	return nil
}

func setError(id int64, err error) error {
	if store.IsNotFound(err) {
		return domainerrors.NotFoundf("set %d not found", id)
	}
	return fmt.Errorf("set %d: %w", id, err)
}
