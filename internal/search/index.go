package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/birdwell/trading-cards/internal/domain"
	"github.com/birdwell/trading-cards/internal/store"
)

// SearchIndex wraps a Bleve index of card documents.
//
// All public methods are safe for concurrent use. The mutex guards the index
// handle during Rebuild.
type SearchIndex struct {
	index  bleve.Index
	path   string
	brand  func(setName string) string
	logger *slog.Logger
	mu     sync.RWMutex
}

var _ store.SearchIndexer = (*SearchIndex)(nil)

// Options configures the search index.
type Options struct {
	Dir    string       // Directory holding the index
	Logger *slog.Logger // Discards when nil

	// Brand derives the brand label stored on each document. Optional.
	Brand func(setName string) string
}

// mappingVersion must change whenever buildIndexMapping does; a mismatch
// on startup drops and recreates the index.
const mappingVersion = "1"

// NewSearchIndex opens the index in opts.Dir, creating it when missing and
// recreating it when it is unreadable or was built with another mapping.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	indexPath := filepath.Join(opts.Dir, "cards.bleve")
	versionPath := filepath.Join(opts.Dir, "cards.version")

	var (
		index        bleve.Index
		err          error
		needsRebuild bool
	)

	_, statErr := os.Stat(indexPath)
	indexExists := statErr == nil

	if indexExists {
		existing, readErr := os.ReadFile(versionPath)
		if readErr != nil || string(existing) != mappingVersion {
			logger.Info("search index mapping version changed, will rebuild",
				"old_version", string(existing),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	if indexExists && !needsRebuild {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("failed to open existing index, will recreate", "path", indexPath, "error", err)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, fmt.Errorf("remove old index: %w", err)
		}
		index = nil
	}

	if index == nil {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if err := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); err != nil {
			logger.Warn("failed to write search version file", "error", err)
		}
		logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &SearchIndex{
		index:  index,
		path:   indexPath,
		brand:  opts.Brand,
		logger: logger,
	}, nil
}

// Close closes the index and releases resources.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexDocuments indexes documents in batches of 500.
func (s *SearchIndex) IndexDocuments(docs []*CardDocument) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const batchSize = 500

	for i := 0; i < len(docs); i += batchSize {
		end := min(i+batchSize, len(docs))

		batch := s.index.NewBatch()
		for _, doc := range docs[i:end] {
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DeleteDocuments removes documents from the index.
func (s *SearchIndex) DeleteDocuments(ids []string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := s.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	return s.index.Batch(batch)
}

// DocumentCount returns the number of indexed cards.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// IndexCards indexes cards of one set. It implements store.SearchIndexer.
func (s *SearchIndex) IndexCards(ctx context.Context, set *domain.Set, cards []*domain.Card) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var brand string
	if s.brand != nil {
		brand = s.brand(set.Name)
	}

	docs := make([]*CardDocument, 0, len(cards))
	for _, c := range cards {
		docs = append(docs, NewCardDocument(set, c, brand))
	}
	return s.IndexDocuments(docs)
}

// DeleteCards removes cards from the index. It implements store.SearchIndexer.
func (s *SearchIndex) DeleteCards(ctx context.Context, cardIDs []int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ids := make([]string, len(cardIDs))
	for i, id := range cardIDs {
		ids[i] = DocID(id)
	}
	return s.DeleteDocuments(ids)
}

// Rebuild drops the index and creates an empty one with the current mapping.
// It blocks all other operations while it runs.
func (s *SearchIndex) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove index: %w", err)
	}

	index, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	s.index = index
	s.logger.Info("rebuilt search index", "path", s.path)
	return nil
}
