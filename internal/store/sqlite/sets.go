package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/birdwell/trading-cards/internal/domain"
	"github.com/birdwell/trading-cards/internal/store"
)

// setColumns is the ordered list of columns selected in set queries.
// Must match the scan order in scanSet.
const setColumns = `id, name, year, source_file, sport`

// scanSet scans a sql.Row (or sql.Rows via its Scan method) into a domain.Set.
func scanSet(scanner interface{ Scan(dest ...any) error }) (*domain.Set, error) {
	var (
		set   domain.Set
		sport string
	)
	if err := scanner.Scan(&set.ID, &set.Name, &set.Year, &set.SourceFile, &sport); err != nil {
		return nil, err
	}
	set.Sport = domain.Sport(sport)
	return &set, nil
}

// CreateSet inserts a new set and assigns its ID.
// Returns store.ErrAlreadyExists when the source file was already imported.
func (s *Store) CreateSet(ctx context.Context, set *domain.Set) error {
	return insertSet(ctx, s.db, set)
}

func insertSet(ctx context.Context, exec interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, set *domain.Set) error {
	res, err := exec.ExecContext(ctx, `
		INSERT INTO sets (name, year, source_file, sport)
		VALUES (?, ?, ?, ?)`,
		set.Name,
		set.Year,
		set.SourceFile,
		string(set.Sport),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage(fmt.Sprintf("set from %q already exists", set.SourceFile))
		}
		return fmt.Errorf("insert set: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read set id: %w", err)
	}
	set.ID = id
	return nil
}

// GetSet retrieves a set by its ID.
// Returns store.ErrNotFound if the set does not exist.
func (s *Store) GetSet(ctx context.Context, id int64) (*domain.Set, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+setColumns+` FROM sets WHERE id = ?`, id)

	set, err := scanSet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return set, nil
}

// GetSetBySourceFile retrieves the set imported from sourceFile.
// Returns store.ErrNotFound if no such set exists.
func (s *Store) GetSetBySourceFile(ctx context.Context, sourceFile string) (*domain.Set, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+setColumns+` FROM sets WHERE source_file = ?`, sourceFile)

	set, err := scanSet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return set, nil
}

// ListSets returns all sets ordered by ID.
func (s *Store) ListSets(ctx context.Context) ([]*domain.Set, error) {
	return s.querySets(ctx, `SELECT `+setColumns+` FROM sets ORDER BY id ASC`)
}

// ListSetsByYear returns the sets released in year, matched exactly.
func (s *Store) ListSetsByYear(ctx context.Context, year string) ([]*domain.Set, error) {
	return s.querySets(ctx,
		`SELECT `+setColumns+` FROM sets WHERE year = ? ORDER BY id ASC`, year)
}

// SearchSetsByName returns sets whose name contains fragment (ASCII case-insensitive).
func (s *Store) SearchSetsByName(ctx context.Context, fragment string) ([]*domain.Set, error) {
	return s.querySets(ctx,
		`SELECT `+setColumns+` FROM sets WHERE name LIKE ? ESCAPE '\' ORDER BY id ASC`,
		likePattern(fragment))
}

func (s *Store) querySets(ctx context.Context, query string, args ...any) ([]*domain.Set, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sets, nil
}

// UpdateSet saves a set's name and sport. The year and source file are fixed
// at import time.
// Returns store.ErrNotFound if the set does not exist.
func (s *Store) UpdateSet(ctx context.Context, set *domain.Set) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sets SET name = ?, sport = ? WHERE id = ?`,
		set.Name, string(set.Sport), set.ID)
	if err != nil {
		return fmt.Errorf("update set: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	// The set name is denormalized into every card document.
	cards, err := s.ListCardsBySet(ctx, set.ID)
	if err != nil {
		s.logger.Warn("failed to reload cards for reindex", "set_id", set.ID, "error", err)
		return nil
	}
	s.indexCards(ctx, set, cards)
	return nil
}

// DeleteSet deletes a set together with all of its cards.
// Returns store.ErrNotFound if the set does not exist.
func (s *Store) DeleteSet(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	cardIDs, err := queryIDs(ctx, tx, `SELECT id FROM cards WHERE set_id = ?`, id)
	if err != nil {
		return fmt.Errorf("list cards of set: %w", err)
	}

	// Cards go first so the delete does not rely on ON DELETE CASCADE alone.
	if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE set_id = ?`, id); err != nil {
		return fmt.Errorf("delete cards: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM sets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete set: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.unindexCards(ctx, cardIDs)
	return nil
}

func queryIDs(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
