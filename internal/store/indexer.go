package store

import (
	"context"

	"github.com/birdwell/trading-cards/internal/domain"
)

// SearchIndexer keeps the search index in sync with store writes without the
// store depending on the search implementation. Stores call it after a write
// commits; indexing failures are logged and never fail the write.
type SearchIndexer interface {
	// IndexCards (re)indexes cards together with their set's name and year.
	IndexCards(ctx context.Context, set *domain.Set, cards []*domain.Card) error
	// DeleteCards removes cards from the index.
	DeleteCards(ctx context.Context, cardIDs []int64) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexCards is a no-op.
func (NoopSearchIndexer) IndexCards(context.Context, *domain.Set, []*domain.Card) error { return nil }

// DeleteCards is a no-op.
func (NoopSearchIndexer) DeleteCards(context.Context, []int64) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}
