package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birdwell/trading-cards/internal/domain"
	"github.com/birdwell/trading-cards/internal/sse"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(e sse.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) types() []sse.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sse.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func TestServices_EmitChangeEvents(t *testing.T) {
	env := setupTestServices(t)
	rec := &recordingEmitter{}
	env.imports.SetEventEmitter(rec)
	env.sets.SetEventEmitter(rec)
	env.cards.SetEventEmitter(rec)
	ctx := context.Background()

	req := ImportRequest{
		FileName: "2024-Topps-Chrome-Football-Checklist.csv",
		Rows: []domain.ChecklistRow{
			{CardNumber: 1, PlayerName: "Caleb Williams", CardType: "Base"},
			{CardNumber: 2, PlayerName: "Jayden Daniels", CardType: "Base"},
		},
	}
	res, err := env.imports.Import(ctx, req)
	require.NoError(t, err)

	// A skipped re-import changes nothing.
	_, err = env.imports.Import(ctx, req)
	require.NoError(t, err)

	_, err = env.cards.SetOwned(ctx, res.Cards[0].ID, true)
	require.NoError(t, err)
	require.NoError(t, env.cards.Delete(ctx, res.Cards[1].ID))

	name := "Topps Chrome Update"
	_, err = env.sets.Update(ctx, res.Set.ID, UpdateSetRequest{Name: &name})
	require.NoError(t, err)
	require.NoError(t, env.sets.Delete(ctx, res.Set.ID))

	// Failed operations emit nothing.
	_, err = env.cards.SetOwned(ctx, 999, true)
	require.Error(t, err)

	assert.Equal(t, []sse.EventType{
		sse.EventSetImported,
		sse.EventCardOwnership,
		sse.EventCardDeleted,
		sse.EventSetUpdated,
		sse.EventSetDeleted,
	}, rec.types())

	imported, ok := rec.events[0].Data.(sse.SetEventData)
	require.True(t, ok)
	assert.Equal(t, 2, imported.CardCount)

	owned, ok := rec.events[1].Data.(sse.CardEventData)
	require.True(t, ok)
	assert.True(t, owned.Card.IsOwned)
}

func TestServices_NilEmitterIsNoop(t *testing.T) {
	env := setupTestServices(t)
	env.cards.SetEventEmitter(nil)

	set := createTestSet(t, env.store, "Donruss", "2023", domain.SportFootball, false)
	cards, err := env.store.ListCardsBySet(context.Background(), set.ID)
	require.NoError(t, err)

	_, err = env.cards.SetOwned(context.Background(), cards[0].ID, true)
	assert.NoError(t, err)
}
