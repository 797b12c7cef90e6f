package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/birdwell/trading-cards/internal/checklist"
	"github.com/birdwell/trading-cards/internal/domain"
	domainerrors "github.com/birdwell/trading-cards/internal/errors"
	"github.com/birdwell/trading-cards/internal/id"
	"github.com/birdwell/trading-cards/internal/normalize"
	"github.com/birdwell/trading-cards/internal/sse"
	"github.com/birdwell/trading-cards/internal/store"
	"github.com/birdwell/trading-cards/internal/validation"
)

// ImportService turns checklists into sets and cards. Imports are
// idempotent on the checklist's file name.
type ImportService struct {
	store     store.Store
	validator *validation.Validator
	events    EventEmitter
	logger    *slog.Logger
}

// NewImportService creates a new import service.
func NewImportService(store store.Store, validator *validation.Validator, logger *slog.Logger) *ImportService {
	return &ImportService{
		store:     store,
		validator: validator,
		events:    noopEmitter{},
		logger:    logger,
	}
}

// ImportRequest is a checklist to import.
//
// The year and set name come from FileName. The sport is Sport when given,
// otherwise it is detected from SourceURL, falling back to FileName.
type ImportRequest struct {
	FileName  string                `json:"fileName" validate:"required,max=255"`
	Sport     string                `json:"sport,omitempty" validate:"omitempty,sport"`
	SourceURL string                `json:"sourceUrl,omitempty" validate:"omitempty,url"`
	Rows      []domain.ChecklistRow `json:"rows"`
}

// Import creates the set and cards described by req. When a set from the
// same file already exists nothing is written and the existing set is
// returned with Created false.
func (s *ImportService) Import(ctx context.Context, req ImportRequest) (*domain.ImportResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	rows := make([]domain.ChecklistRow, len(req.Rows))
	for i, r := range req.Rows {
		rows[i] = domain.ChecklistRow{
			CardNumber: r.CardNumber,
			PlayerName: normalize.Text(r.PlayerName),
			CardType:   normalize.Text(r.CardType),
		}
	}
	if err := s.validator.ValidateRows(rows); err != nil {
		return nil, err
	}

	importID, err := id.NewImportID()
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate import id")
	}
	logger := s.logger.With(slog.Group("import", "id", importID, "file", req.FileName))

	sourceFile := checklist.BaseName(req.FileName)
	existing, err := s.store.GetSetBySourceFile(ctx, sourceFile)
	switch {
	case err == nil:
		logger.Info("checklist already imported", "set_id", existing.ID)
		return skipped(importID, existing), nil
	case !store.IsNotFound(err):
		return nil, fmt.Errorf("look up %q: %w", sourceFile, err)
	}

	info := checklist.ParseFileName(sourceFile)
	set := &domain.Set{
		Name:       normalize.Text(info.Name),
		Year:       info.Year,
		SourceFile: sourceFile,
		Sport:      s.sport(req),
	}

	cards := make([]*domain.Card, len(rows))
	for i, r := range rows {
		cards[i] = &domain.Card{
			CardNumber: r.CardNumber,
			PlayerName: r.PlayerName,
			CardType:   r.CardType,
		}
	}

	if err := s.store.ImportChecklist(ctx, set, cards); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost a race with a concurrent import of the same file.
			existing, getErr := s.store.GetSetBySourceFile(ctx, sourceFile)
			if getErr != nil {
				return nil, fmt.Errorf("look up %q: %w", sourceFile, getErr)
			}
			logger.Info("checklist already imported", "set_id", existing.ID)
			return skipped(importID, existing), nil
		}
		return nil, fmt.Errorf("import %q: %w", sourceFile, err)
	}

	logger.Info("checklist imported",
		"set_id", set.ID,
		"set_name", set.Name,
		"year", set.Year,
		"sport", set.Sport,
		"cards", len(cards),
	)

	s.events.Emit(sse.NewSetImportedEvent(set, len(cards)))

	return &domain.ImportResult{
		ImportID: importID,
		Created:  true,
		Set:      set,
		Cards:    cards,
	}, nil
}

// ImportFile reads a CSV or JSON checklist from disk and imports it.
// sport may be empty to detect it from the file name.
func (s *ImportService) ImportFile(ctx context.Context, path, sport, sourceURL string) (*domain.ImportResult, error) {
	format, err := checklist.FormatOf(path)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open checklist: %w", err)
	}
	defer f.Close()

	rows, err := checklist.Decode(format, f)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "decode checklist")
	}

	return s.Import(ctx, ImportRequest{
		FileName:  checklist.BaseName(path),
		Sport:     sport,
		SourceURL: sourceURL,
		Rows:      rows,
	})
}

func (s *ImportService) sport(req ImportRequest) domain.Sport {
	if sport, ok := domain.ParseSport(req.Sport); ok {
		return sport
	}
	if req.SourceURL != "" {
		return checklist.DetectSport(req.SourceURL)
	}
	return checklist.DetectSport(req.FileName)
}

func skipped(importID string, set *domain.Set) *domain.ImportResult {
	return &domain.ImportResult{
		ImportID: importID,
		Created:  false,
		Set:      set,
		Cards:    []*domain.Card{},
	}
}
