// Package store defines the persistence interface for sets and cards.
package store

import (
	"context"

	"github.com/birdwell/trading-cards/internal/domain"
)

// Store defines the interface for all persistence operations.
// List methods return an empty slice, never nil, when nothing matches.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error
	SetSearchIndexer(indexer SearchIndexer)

	// Sets
	CreateSet(ctx context.Context, set *domain.Set) error
	GetSet(ctx context.Context, id int64) (*domain.Set, error)
	GetSetBySourceFile(ctx context.Context, sourceFile string) (*domain.Set, error)
	ListSets(ctx context.Context) ([]*domain.Set, error)
	ListSetsByYear(ctx context.Context, year string) ([]*domain.Set, error)
	SearchSetsByName(ctx context.Context, fragment string) ([]*domain.Set, error)
	UpdateSet(ctx context.Context, set *domain.Set) error
	DeleteSet(ctx context.Context, id int64) error

	// Cards
	CreateCards(ctx context.Context, cards []*domain.Card) error
	GetCard(ctx context.Context, id int64) (*domain.Card, error)
	ListCards(ctx context.Context) ([]*domain.Card, error)
	ListCardsBySet(ctx context.Context, setID int64) ([]*domain.Card, error)
	ListCardsByPlayer(ctx context.Context, playerName string) ([]*domain.Card, error)
	ListCardsByType(ctx context.Context, cardType string) ([]*domain.Card, error)
	ListCardsByNumber(ctx context.Context, cardNumber int) ([]*domain.Card, error)
	SearchCardsByPlayer(ctx context.Context, fragment string) ([]*domain.Card, error)
	SetCardOwned(ctx context.Context, id int64, owned bool) (*domain.Card, error)
	DeleteCard(ctx context.Context, id int64) error

	// ImportChecklist creates a set and its cards in one transaction.
	// Returns ErrAlreadyExists if a set with the same source file exists.
	ImportChecklist(ctx context.Context, set *domain.Set, cards []*domain.Card) error
}
