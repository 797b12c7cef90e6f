package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/birdwell/trading-cards/internal/brand"
	"github.com/birdwell/trading-cards/internal/domain"
	"github.com/birdwell/trading-cards/internal/store"
	"github.com/birdwell/trading-cards/internal/store/sqlite"
	"github.com/birdwell/trading-cards/internal/validation"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupTestStore opens a SQLite store in a temp dir.
func setupTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type testServices struct {
	store   store.Store
	stats   *StatsService
	brands  *BrandService
	sets    *SetService
	cards   *CardService
	imports *ImportService
}

func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	s := setupTestStore(t)
	logger := testLogger()
	v := validation.New()
	stats := NewStatsService(s, logger)

	return &testServices{
		store:   s,
		stats:   stats,
		brands:  NewBrandService(s, stats, brand.Default(), 4, logger),
		sets:    NewSetService(s, v, logger),
		cards:   NewCardService(s, logger),
		imports: NewImportService(s, v, logger),
	}
}

// createTestSet imports a set whose cards are owned according to owned.
func createTestSet(t *testing.T, s store.Store, name, year string, sport domain.Sport, owned ...bool) *domain.Set {
	t.Helper()

	set := &domain.Set{
		Name:       name,
		Year:       year,
		SourceFile: year + "-" + name + "-" + string(sport) + ".csv",
		Sport:      sport,
	}
	cards := make([]*domain.Card, len(owned))
	for i, o := range owned {
		cards[i] = &domain.Card{
			CardNumber: i + 1,
			PlayerName: "Player " + string(rune('A'+i)),
			CardType:   "Base",
			IsOwned:    o,
		}
	}
	require.NoError(t, s.ImportChecklist(context.Background(), set, cards))
	return set
}
