package sse

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birdwell/trading-cards/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startManager runs the broadcast loop until the test ends.
func startManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Start(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return m
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case e, ok := <-c.EventChan:
		require.True(t, ok, "client channel closed")
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
		return Event{}
	}
}

func TestManager_BroadcastsToAllClients(t *testing.T) {
	m := startManager(t)

	a, err := m.Connect()
	require.NoError(t, err)
	b, err := m.Connect()
	require.NoError(t, err)
	assert.Equal(t, 2, m.ClientCount())
	assert.True(t, strings.HasPrefix(a.ID, "sse-"))

	set := &domain.Set{ID: 3, Name: "Topps Chrome", Year: "2024", Sport: domain.SportFootball}
	m.Emit(NewSetImportedEvent(set, 220))

	for _, c := range []*Client{a, b} {
		e := receive(t, c)
		assert.Equal(t, EventSetImported, e.Type)
		data, ok := e.Data.(SetEventData)
		require.True(t, ok)
		assert.Equal(t, set, data.Set)
		assert.Equal(t, 220, data.CardCount)
	}
}

func TestManager_Disconnect(t *testing.T) {
	m := startManager(t)

	c, err := m.Connect()
	require.NoError(t, err)

	m.Disconnect(c.ID)
	m.Disconnect(c.ID)
	assert.Equal(t, 0, m.ClientCount())

	_, ok := <-c.EventChan
	assert.False(t, ok)
}

func TestManager_ShutdownClosesClientsAndDropsLateEvents(t *testing.T) {
	m := NewManager(testLogger())
	go m.Start(context.Background())

	c, err := m.Connect()
	require.NoError(t, err)

	m.Emit(NewCardDeletedEvent(9))
	assert.Equal(t, EventCardDeleted, receive(t, c).Type)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))
	require.NoError(t, m.Shutdown(ctx))

	select {
	case <-c.Done:
	case <-time.After(time.Second):
		t.Fatal("client not closed on shutdown")
	}

	// Must not panic on the closed channel.
	m.Emit(NewCardDeletedEvent(10))
	assert.Equal(t, 0, m.ClientCount())
}

func TestHandler_StreamsEvents(t *testing.T) {
	m := startManager(t)
	srv := httptest.NewServer(NewHandler(m, testLogger()))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	next := func() string {
		t.Helper()
		require.True(t, lines.Scan())
		return lines.Text()
	}

	assert.Equal(t, "event: connected", next())
	assert.Contains(t, next(), `"message":"SSE connection established"`)
	assert.Empty(t, next())

	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	m.Emit(NewSetDeletedEvent(7))

	assert.Equal(t, "event: set.deleted", next())
	data := next()
	assert.Contains(t, data, `"type":"set.deleted"`)
	assert.Contains(t, data, `"setId":7`)
}

func TestHandler_RejectsNonGet(t *testing.T) {
	m := NewManager(testLogger())
	rec := httptest.NewRecorder()

	NewHandler(m, testLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, 0, m.ClientCount())
}
