package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/birdwell/trading-cards/internal/domain"
	"github.com/birdwell/trading-cards/internal/store"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const setColumns = `id, name, year, source_file, sport`

func scanSet(row pgx.Row) (*domain.Set, error) {
	var (
		set   domain.Set
		sport string
	)
	if err := row.Scan(&set.ID, &set.Name, &set.Year, &set.SourceFile, &sport); err != nil {
		return nil, err
	}
	set.Sport = domain.Sport(sport)
	return &set, nil
}

// CreateSet inserts a new set and assigns its ID.
func (s *Store) CreateSet(ctx context.Context, set *domain.Set) error {
	return insertSet(ctx, s.pool, set)
}

func insertSet(ctx context.Context, q querier, set *domain.Set) error {
	err := q.QueryRow(ctx, `
		INSERT INTO sets (name, year, source_file, sport)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		set.Name, set.Year, set.SourceFile, string(set.Sport),
	).Scan(&set.ID)
	if hasCode(err, codeUniqueViolation) {
		return store.ErrAlreadyExists.WithMessage(fmt.Sprintf("set from %q already exists", set.SourceFile))
	}
	if err != nil {
		return fmt.Errorf("insert set: %w", err)
	}
	return nil
}

func (s *Store) getSet(ctx context.Context, where string, arg any) (*domain.Set, error) {
	set, err := scanSet(s.pool.QueryRow(ctx, `SELECT `+setColumns+` FROM sets WHERE `+where, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return set, nil
}

// GetSet retrieves a set by its ID.
func (s *Store) GetSet(ctx context.Context, id int64) (*domain.Set, error) {
	return s.getSet(ctx, `id = $1`, id)
}

// GetSetBySourceFile retrieves the set imported from sourceFile.
func (s *Store) GetSetBySourceFile(ctx context.Context, sourceFile string) (*domain.Set, error) {
	return s.getSet(ctx, `source_file = $1`, sourceFile)
}

// ListSets returns all sets ordered by ID.
func (s *Store) ListSets(ctx context.Context) ([]*domain.Set, error) {
	return s.querySets(ctx, `SELECT `+setColumns+` FROM sets ORDER BY id`)
}

// ListSetsByYear returns the sets released in year.
func (s *Store) ListSetsByYear(ctx context.Context, year string) ([]*domain.Set, error) {
	return s.querySets(ctx, `SELECT `+setColumns+` FROM sets WHERE year = $1 ORDER BY id`, year)
}

// SearchSetsByName returns sets whose name contains fragment, ignoring case.
func (s *Store) SearchSetsByName(ctx context.Context, fragment string) ([]*domain.Set, error) {
	return s.querySets(ctx,
		`SELECT `+setColumns+` FROM sets WHERE name ILIKE $1 ESCAPE '\' ORDER BY id`,
		likePattern(fragment))
}

func (s *Store) querySets(ctx context.Context, query string, args ...any) ([]*domain.Set, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sets := []*domain.Set{}
	for rows.Next() {
		set, err := scanSet(rows)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, rows.Err()
}

// UpdateSet saves a set's name and sport.
func (s *Store) UpdateSet(ctx context.Context, set *domain.Set) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sets SET name = $1, sport = $2 WHERE id = $3`,
		set.Name, string(set.Sport), set.ID)
	if err != nil {
		return fmt.Errorf("update set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	cards, err := s.ListCardsBySet(ctx, set.ID)
	if err != nil {
		s.logger.Warn("failed to reload cards for reindex", "set_id", set.ID, "error", err)
		return nil
	}
	s.indexCards(ctx, set, cards)
	return nil
}

// DeleteSet deletes a set together with all of its cards.
func (s *Store) DeleteSet(ctx context.Context, id int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	rows, err := tx.Query(ctx, `DELETE FROM cards WHERE set_id = $1 RETURNING id`, id)
	if err != nil {
		return fmt.Errorf("delete cards: %w", err)
	}
	cardIDs, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return fmt.Errorf("delete cards: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM sets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.unindexCards(ctx, cardIDs)
	return nil
}
