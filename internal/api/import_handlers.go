package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/birdwell/trading-cards/internal/domain"
	"github.com/birdwell/trading-cards/internal/service"
)

func (s *Server) registerImportRoutes() {
	op := huma.Operation{
		OperationID:   "importChecklist",
		Method:        http.MethodPost,
		Path:          "/api/v1/imports",
		Summary:       "Import checklist",
		Description:   "Creates a set and its cards from parsed checklist rows. Importing the same file name again returns the existing set with created=false.",
		Tags:          []string{"Imports"},
		DefaultStatus: http.StatusCreated,
		MaxBodyBytes:  MaxImportBodySize,
	}
	if s.importLimiter != nil {
		op.Middlewares = huma.Middlewares{s.importRateLimit()}
	}
	huma.Register(s.api, op, s.handleImportChecklist)
}

// ImportChecklistInput wraps the import request for Huma.
type ImportChecklistInput struct {
	Body service.ImportRequest
}

// ImportOutput wraps the import result for Huma. Status is 201 for a new
// set and 200 when the file had been imported before.
type ImportOutput struct {
	Status int
	Body   *domain.ImportResult
}

func (s *Server) handleImportChecklist(ctx context.Context, input *ImportChecklistInput) (*ImportOutput, error) {
	result, err := s.services.Import.Import(ctx, input.Body)
	if err != nil {
		return nil, err
	}

	status := http.StatusCreated
	if !result.Created {
		status = http.StatusOK
	}
	return &ImportOutput{Status: status, Body: result}, nil
}
