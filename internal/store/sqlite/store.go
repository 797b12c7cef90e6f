// Package sqlite implements store.Store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/birdwell/trading-cards/internal/domain"
	"github.com/birdwell/trading-cards/internal/store"

	_ "modernc.org/sqlite"
)

// Pragmas are set through the DSN so every pooled connection gets them;
// foreign keys in particular are per-connection in SQLite.
const dsnPragmas = "?_pragma=foreign_keys(1)" +
	"&_pragma=journal_mode(WAL)" +
	"&_pragma=synchronous(NORMAL)" +
	"&_pragma=busy_timeout(5000)"

// Store provides SQLite-backed persistence for sets and cards.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	mu            sync.RWMutex
	searchIndexer store.SearchIndexer
}

var _ store.Store = (*Store)(nil)

// Open creates or opens the SQLite store at the given path and applies any
// pending schema migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	migrator, err := NewMigrator(path)
	if err != nil {
		return nil, err
	}
	upErr := migrator.Up()
	closeErr := migrator.Close()
	if upErr != nil {
		return nil, upErr
	}
	if closeErr != nil {
		return nil, closeErr
	}

	db, err := sql.Open("sqlite", path+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &Store{
		db:            db,
		logger:        logger,
		searchIndexer: store.NewNoopSearchIndexer(),
	}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SetSearchIndexer sets the search indexer used for maintaining the search index.
func (s *Store) SetSearchIndexer(indexer store.SearchIndexer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchIndexer = indexer
}

func (s *Store) indexer() store.SearchIndexer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchIndexer
}

// indexCards pushes cards to the search index after a committed write.
func (s *Store) indexCards(ctx context.Context, set *domain.Set, cards []*domain.Card) {
	if len(cards) == 0 {
		return
	}
	if err := s.indexer().IndexCards(ctx, set, cards); err != nil {
		s.logger.Warn("failed to index cards for search", "set_id", set.ID, "count", len(cards), "error", err)
	}
}

// unindexCards removes cards from the search index after a committed delete.
func (s *Store) unindexCards(ctx context.Context, ids []int64) {
	if len(ids) == 0 {
		return
	}
	if err := s.indexer().DeleteCards(ctx, ids); err != nil {
		s.logger.Warn("failed to remove cards from search", "count", len(ids), "error", err)
	}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// likePattern builds a LIKE pattern matching fragment anywhere, with LIKE
// wildcards in the fragment escaped.
func likePattern(fragment string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(fragment) + "%"
}
