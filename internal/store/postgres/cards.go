package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/birdwell/trading-cards/internal/domain"
	"github.com/birdwell/trading-cards/internal/store"
)

const cardColumns = `id, card_number, player_name, card_type, set_id, is_owned`

func scanCard(row pgx.Row) (*domain.Card, error) {
	var c domain.Card
	if err := row.Scan(&c.ID, &c.CardNumber, &c.PlayerName, &c.CardType, &c.SetID, &c.IsOwned); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCards inserts cards in a single transaction and assigns their IDs.
func (s *Store) CreateCards(ctx context.Context, cards []*domain.Card) error {
	if len(cards) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := insertCards(ctx, tx, cards); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.indexCardsBySet(ctx, cards)
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

// insertCards sends every insert in one batch round trip.
func insertCards(ctx context.Context, tx pgx.Tx, cards []*domain.Card) error {
	const insert = `
		INSERT INTO cards (card_number, player_name, card_type, set_id, is_owned)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	batch := &pgx.Batch{}
	for _, c := range cards {
		batch.Queue(insert, c.CardNumber, c.PlayerName, c.CardType, c.SetID, c.IsOwned)
	}

	br := tx.SendBatch(ctx, batch)
	for _, c := range cards {
		if err := br.QueryRow().Scan(&c.ID); err != nil {
			br.Close()
			if hasCode(err, codeForeignKeyViolation) {
				return store.ErrInvalidInput.WithMessage(fmt.Sprintf("set %d does not exist", c.SetID))
			}
			return fmt.Errorf("insert card: %w", err)
		}
	}
	return br.Close()
}

// GetCard retrieves a card by its ID.
func (s *Store) GetCard(ctx context.Context, id int64) (*domain.Card, error) {
	c, err := scanCard(s.pool.QueryRow(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCards returns every card ordered by ID.
func (s *Store) ListCards(ctx context.Context) ([]*domain.Card, error) {
	return s.queryCards(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY id`)
}

// ListCardsBySet returns a set's cards in insertion order.
func (s *Store) ListCardsBySet(ctx context.Context, setID int64) ([]*domain.Card, error) {
	return s.queryCards(ctx, `SELECT `+cardColumns+` FROM cards WHERE set_id = $1 ORDER BY id`, setID)
}

// ListCardsByPlayer returns cards whose player name matches exactly.
func (s *Store) ListCardsByPlayer(ctx context.Context, playerName string) ([]*domain.Card, error) {
	return s.queryCards(ctx, `SELECT `+cardColumns+` FROM cards WHERE player_name = $1 ORDER BY id`, playerName)
}

// ListCardsByType returns cards of the given card type.
func (s *Store) ListCardsByType(ctx context.Context, cardType string) ([]*domain.Card, error) {
	return s.queryCards(ctx, `SELECT `+cardColumns+` FROM cards WHERE card_type = $1 ORDER BY id`, cardType)
}

// ListCardsByNumber returns cards with the given number across all sets.
func (s *Store) ListCardsByNumber(ctx context.Context, cardNumber int) ([]*domain.Card, error) {
	return s.queryCards(ctx, `SELECT `+cardColumns+` FROM cards WHERE card_number = $1 ORDER BY id`, cardNumber)
}

// SearchCardsByPlayer returns cards whose player name contains fragment, ignoring case.
func (s *Store) SearchCardsByPlayer(ctx context.Context, fragment string) ([]*domain.Card, error) {
	return s.queryCards(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE player_name ILIKE $1 ESCAPE '\' ORDER BY id`,
		likePattern(fragment))
}

func (s *Store) queryCards(ctx context.Context, query string, args ...any) ([]*domain.Card, error) {
	rows, err := s.pool.Query(ctx, query, args...)
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
	return cards, rows.Err()
}

// SetCardOwned records whether the collector owns a card and returns the
// updated card.
func (s *Store) SetCardOwned(ctx context.Context, id int64, owned bool) (*domain.Card, error) {
	c, err := scanCard(s.pool.QueryRow(ctx,
		`UPDATE cards SET is_owned = $1 WHERE id = $2 RETURNING `+cardColumns, owned, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update card ownership: %w", err)
	}
	s.indexCardsBySet(ctx, []*domain.Card{c})
	return c, nil
}

// DeleteCard deletes a single card.
func (s *Store) DeleteCard(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	s.unindexCards(ctx, []int64{id})
	return nil
}

// ImportChecklist creates a set and its cards atomically.
func (s *Store) ImportChecklist(ctx context.Context, set *domain.Set, cards []*domain.Card) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

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

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.indexCards(ctx, set, cards)
	return nil
}
