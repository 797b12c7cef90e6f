package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birdwell/trading-cards/internal/brand"
	"github.com/birdwell/trading-cards/internal/ratelimit"
	"github.com/birdwell/trading-cards/internal/search"
	"github.com/birdwell/trading-cards/internal/service"
	"github.com/birdwell/trading-cards/internal/sse"
	"github.com/birdwell/trading-cards/internal/store"
	"github.com/birdwell/trading-cards/internal/store/sqlite"
	"github.com/birdwell/trading-cards/internal/validation"
)

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api   humatest.TestAPI
	store store.Store
}

// testEnvelope mirrors the response envelope with typed data.
type testEnvelope[T any] struct {
	V       int             `json:"v"`
	Success bool            `json:"success"`
	Data    T               `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

func decode[T any](t *testing.T, body io.Reader) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.NewDecoder(body).Decode(&env))
	assert.Equal(t, EnvelopeVersion, env.V)
	return env
}

// serverConfig is what a serverOption may change before NewServer runs.
type serverConfig struct {
	services *Services
	limiter  *ratelimit.KeyedRateLimiter
	opts     Options
}

type serverOption func(*testing.T, *serverConfig)

// withImportLimit replaces the permissive default import limiter.
func withImportLimit(perMinute, burst int) serverOption {
	return func(t *testing.T, c *serverConfig) {
		limiter := ratelimit.PerMinute(perMinute, burst)
		t.Cleanup(limiter.Stop)
		c.limiter = limiter
	}
}

// withoutSearch leaves the search service unset.
func withoutSearch() serverOption {
	return func(_ *testing.T, c *serverConfig) {
		c.services.Search = nil
	}
}

// withEvents enables the change stream and wires the services to it.
func withEvents(m *sse.Manager) serverOption {
	return func(_ *testing.T, c *serverConfig) {
		c.opts.Events = m
		c.services.Import.SetEventEmitter(m)
		c.services.Set.SetEventEmitter(m)
		c.services.Card.SetEventEmitter(m)
	}
}

func setupTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	classifier := brand.Default()
	index, err := search.NewSearchIndex(search.Options{
		Dir:    filepath.Join(dir, "search"),
		Logger: logger,
		Brand:  classifier.Brand,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	st.SetSearchIndexer(index)

	v := validation.New()
	stats := service.NewStatsService(st, logger)
	services := &Services{
		Stats:  stats,
		Brand:  service.NewBrandService(st, stats, classifier, 4, logger),
		Set:    service.NewSetService(st, v, logger),
		Card:   service.NewCardService(st, logger),
		Import: service.NewImportService(st, v, logger),
		Search: service.NewSearchService(index, st, logger),
	}

	limiter := ratelimit.PerMinute(1000, 1000)
	t.Cleanup(limiter.Stop)
	cfg := &serverConfig{
		services: services,
		limiter:  limiter,
		opts:     Options{Version: "test"},
	}
	for _, opt := range opts {
		opt(t, cfg)
	}

	s := NewServer(st, cfg.services, cfg.limiter, cfg.opts, logger)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		store:  st,
	}
}

// checklistRow is a JSON import row.
type checklistRow struct {
	CardNumber int    `json:"cardNumber"`
	PlayerName string `json:"playerName"`
	CardType   string `json:"cardType"`
}

// importChecklist posts a checklist and returns the created set ID.
func (ts *testServer) importChecklist(t *testing.T, fileName string, rows ...checklistRow) int64 {
	t.Helper()

	resp := ts.api.Post("/api/v1/imports", map[string]any{
		"fileName": fileName,
		"rows":     rows,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	env := decode[importData](t, resp.Body)
	require.True(t, env.Data.Created)
	return env.Data.Set.ID
}

type importData struct {
	ImportID string `json:"importId"`
	Created  bool   `json:"created"`
	Set      struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Year  string `json:"year"`
		Sport string `json:"sport"`
	} `json:"set"`
	Cards []struct {
		ID int64 `json:"id"`
	} `json:"cards"`
}

func TestServer_OpenAPI(t *testing.T) {
	ts := setupTestServer(t)

	openapi := ts.API().OpenAPI()
	for _, path := range []string{
		"/health",
		"/api/v1/brands",
		"/api/v1/brands/{name}",
		"/api/v1/sets",
		"/api/v1/sets/{id}",
		"/api/v1/sets/{id}/stats",
		"/api/v1/cards",
		"/api/v1/cards/{id}",
		"/api/v1/cards/{id}/ownership",
		"/api/v1/imports",
		"/api/v1/search",
	} {
		assert.Contains(t, openapi.Paths, path)
	}
}

func TestServer_CORS(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/brands", "Origin: http://localhost:3000")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_UnknownErrorIsHidden(t *testing.T) {
	ts := setupTestServer(t)
	require.NoError(t, ts.store.Close())

	resp := ts.api.Get("/api/v1/brands")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)

	env := decode[any](t, resp.Body)
	assert.False(t, env.Success)
	assert.Equal(t, internalMessage, env.Error)
}

func TestServer_EventStream(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := sse.NewManager(logger)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	go manager.Start(ctx)

	ts := setupTestServer(t, withEvents(manager))
	setID := ts.importChecklist(t, "2024-Topps-Chrome-Football-Checklist.csv",
		checklistRow{CardNumber: 1, PlayerName: "Caleb Williams", CardType: "Base"})

	srv := httptest.NewServer(ts.Server)
	t.Cleanup(srv.Close)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: connected", lines.Text())

	require.Eventually(t, func() bool { return manager.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	del := ts.api.Delete(fmt.Sprintf("/api/v1/sets/%d", setID))
	require.Equal(t, http.StatusOK, del.Code)

	for lines.Scan() {
		if lines.Text() == "event: set.deleted" {
			require.True(t, lines.Scan())
			assert.Contains(t, lines.Text(), fmt.Sprintf(`"setId":%d`, setID))
			return
		}
	}
	t.Fatal("set.deleted event not received")
}
