package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/birdwell/trading-cards/internal/domain"
)

func (s *Server) registerBrandRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBrands",
		Method:      http.MethodGet,
		Path:        "/api/v1/brands",
		Summary:     "List brands",
		Description: "Returns every brand with its sets and overall completion, sorted by brand name",
		Tags:        []string{"Brands"},
	}, s.handleListBrands)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBrand",
		Method:      http.MethodGet,
		Path:        "/api/v1/brands/{name}",
		Summary:     "Get brand",
		Description: "Returns a brand's sets grouped by year and sport. Unknown brands return 404 with suggestions.",
		Tags:        []string{"Brands"},
	}, s.handleGetBrand)
}

// ListBrandsResponse contains the brand overview.
type ListBrandsResponse struct {
	Brands []domain.BrandSummary `json:"brands" doc:"Brands sorted by name"`
}

// ListBrandsOutput wraps the brand overview for Huma.
type ListBrandsOutput struct {
	Body ListBrandsResponse
}

// GetBrandInput contains parameters for getting a brand.
type GetBrandInput struct {
	Name string `path:"name" minLength:"1" maxLength:"200" doc:"Brand name, case-insensitive"`
}

// BrandOutput wraps a brand detail for Huma.
type BrandOutput struct {
	Body *domain.BrandDetail
}

func (s *Server) handleListBrands(ctx context.Context, _ *struct{}) (*ListBrandsOutput, error) {
	brands, err := s.services.Brand.Overview(ctx)
	if err != nil {
		return nil, err
	}
	return &ListBrandsOutput{Body: ListBrandsResponse{Brands: brands}}, nil
}

func (s *Server) handleGetBrand(ctx context.Context, input *GetBrandInput) (*BrandOutput, error) {
	detail, err := s.services.Brand.Details(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	return &BrandOutput{Body: detail}, nil
}
