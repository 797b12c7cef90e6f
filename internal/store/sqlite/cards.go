package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/birdwell/trading-cards/internal/domain"
	"github.com/birdwell/trading-cards/internal/store"
)

// cardColumns is the ordered list of columns selected in card queries.
// Must match the scan order in scanCard.
const cardColumns = `id, card_number, player_name, card_type, set_id, is_owned`

// scanCard scans a sql.Row (or sql.Rows via its Scan method) into a domain.Card.
func scanCard(scanner interface{ Scan(dest ...any) error }) (*domain.Card, error) {
	var c domain.Card
	err := scanner.Scan(
		&c.ID,
		&c.CardNumber,
		&c.PlayerName,
		&c.CardType,
		&c.SetID,
		&c.IsOwned,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCards inserts cards in a single transaction and assigns their IDs.
// Returns store.ErrInvalidInput if any card references a missing set.
func (s *Store) CreateCards(ctx context.Context, cards []*domain.Card) error {
	if len(cards) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := insertCards(ctx, tx, cards); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.indexCardsBySet(ctx, cards)
	return nil
}

func insertCards(ctx context.Context, tx *sql.Tx, cards []*domain.Card) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cards (card_number, player_name, card_type, set_id, is_owned)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare card insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range cards {
		res, err := stmt.ExecContext(ctx, c.CardNumber, c.PlayerName, c.CardType, c.SetID, c.IsOwned)
		if err != nil {
			if isForeignKeyViolation(err) {
				return store.ErrInvalidInput.WithMessage(fmt.Sprintf("set %d does not exist", c.SetID))
			}
			return fmt.Errorf("insert card: %w", err)
		}
		if c.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("read card id: %w", err)
		}
	}
	return nil
}

// indexCardsBySet groups freshly written cards by set for the indexer.
func (s *Store) indexCardsBySet(ctx context.Context, cards []*domain.Card) {
	bySet := make(map[int64][]*domain.Card)
	var order []int64
	for _, c := range cards {
		if _, ok := bySet[c.SetID]; !ok {
			order = append(order, c.SetID)
		}
		bySet[c.SetID] = append(bySet[c.SetID], c)
	}
	for _, setID := range order {
		set, err := s.GetSet(ctx, setID)
		if err != nil {
			s.logger.Warn("failed to load set for indexing", "set_id", setID, "error", err)
			continue
		}
		s.indexCards(ctx, set, bySet[setID])
	}
}

// GetCard retrieves a card by its ID.
// Returns store.ErrNotFound if the card does not exist.
func (s *Store) GetCard(ctx context.Context, id int64) (*domain.Card, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)

	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCards returns every card ordered by ID.
func (s *Store) ListCards(ctx context.Context) ([]*domain.Card, error) {
	return s.queryCards(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY id ASC`)
}

// ListCardsBySet returns a set's cards in insertion order.
func (s *Store) ListCardsBySet(ctx context.Context, setID int64) ([]*domain.Card, error) {
	return s.queryCards(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE set_id = ? ORDER BY id ASC`, setID)
}

// ListCardsByPlayer returns cards whose player name matches exactly.
func (s *Store) ListCardsByPlayer(ctx context.Context, playerName string) ([]*domain.Card, error) {
	return s.queryCards(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE player_name = ? ORDER BY id ASC`, playerName)
}

// ListCardsByType returns cards of the given card type.
func (s *Store) ListCardsByType(ctx context.Context, cardType string) ([]*domain.Card, error) {
	return s.queryCards(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE card_type = ? ORDER BY id ASC`, cardType)
}

// ListCardsByNumber returns cards with the given number across all sets.
func (s *Store) ListCardsByNumber(ctx context.Context, cardNumber int) ([]*domain.Card, error) {
	return s.queryCards(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE card_number = ? ORDER BY id ASC`, cardNumber)
}

// SearchCardsByPlayer returns cards whose player name contains fragment.
func (s *Store) SearchCardsByPlayer(ctx context.Context, fragment string) ([]*domain.Card, error) {
	return s.queryCards(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE player_name LIKE ? ESCAPE '\' ORDER BY id ASC`,
		likePattern(fragment))
}

func (s *Store) queryCards(ctx context.Context, query string, args ...any) ([]*domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := []*domain.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}

// SetCardOwned records whether the collector owns a card and returns the
// updated card.
// Returns store.ErrNotFound if the card does not exist.
func (s *Store) SetCardOwned(ctx context.Context, id int64, owned bool) (*domain.Card, error) {
	row := s.db.QueryRowContext(ctx,
		`UPDATE cards SET is_owned = ? WHERE id = ? RETURNING `+cardColumns, owned, id)

	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update card ownership: %w", err)
	}
	s.indexCardsBySet(ctx, []*domain.Card{c})
	return c, nil
}

// DeleteCard deletes a single card.
// Returns store.ErrNotFound if the card does not exist.
func (s *Store) DeleteCard(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}

	s.unindexCards(ctx, []int64{id})
	return nil
}

// ImportChecklist creates a set and its cards atomically. Card SetIDs are
// filled in from the new set.
// Returns store.ErrAlreadyExists when the set's source file was already imported.
func (s *Store) ImportChecklist(ctx context.Context, set *domain.Set, cards []*domain.Card) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := insertSet(ctx, tx, set); err != nil {
		return err
	}
	for _, c := range cards {
		c.SetID = set.ID
	}
	if len(cards) > 0 {
		if err := insertCards(ctx, tx, cards); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.indexCards(ctx, set, cards)
	return nil
}
