package api

import (
	"github.com/birdwell/trading-cards/internal/service"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Stats  *service.StatsService
	Brand  *service.BrandService
	Set    *service.SetService
	Card   *service.CardService
	Import *service.ImportService
	Search *service.SearchService // optional; search routes return 503 without it
}
