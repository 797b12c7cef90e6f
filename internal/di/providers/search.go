package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/birdwell/trading-cards/internal/brand"
	"github.com/birdwell/trading-cards/internal/config"
	"github.com/birdwell/trading-cards/internal/logger"
	"github.com/birdwell/trading-cards/internal/search"
	"github.com/birdwell/trading-cards/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	classifier := do.MustInvoke[*brand.Classifier](i)

	index, err := search.NewSearchIndex(search.Options{
		Dir:    cfg.Search.IndexPath,
		Logger: log.Logger,
		Brand:  classifier.Brand,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "path", cfg.Search.IndexPath, "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewSearchService(indexHandle.SearchIndex, storeHandle.Store, log.Logger)

	// Wire to store for automatic indexing
	storeHandle.SetSearchIndexer(indexHandle.SearchIndex)

	return svc, nil
}

// TriggerSearchReindexIfNeeded rebuilds the index in the background when it
// is empty but the store has cards. Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	searchService := do.MustInvoke[*service.SearchService](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := searchService.DocumentCount()
	if docCount > 0 {
		return
	}

	go func() {
		if err := searchService.ReindexIfEmpty(context.Background()); err != nil {
			log.WithError(err).Error("Initial search reindex failed")
			return
		}
		if count, _ := searchService.DocumentCount(); count > 0 {
			log.Info("Initial search reindex completed", "documents", count)
		}
	}()
}
