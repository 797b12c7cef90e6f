package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// bleve starts its analysis workers at package init.
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/blevesearch/bleve_index_api.AnalysisWorker"),
	)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startWatcher watches dir and stops the watcher when the test ends.
func startWatcher(t *testing.T, dir string, opts Options) *Watcher {
	t.Helper()

	w, err := New(testLogger(), opts)
	require.NoError(t, err)
	require.NoError(t, w.Watch(dir))

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	go func() {
		defer close(started)
		_ = w.Start(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-started
		require.NoError(t, w.Stop())
	})
	return w
}

func waitEvent(t *testing.T, w *Watcher, timeout time.Duration) Event {
	t.Helper()
	select {
	case event := <-w.Events():
		return event
	case err := <-w.Errors():
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(timeout):
		t.Fatal("timeout waiting for event")
	}
	return Event{}
}

func TestNew(t *testing.T) {
	w, err := New(testLogger(), Options{})
	require.NoError(t, err)
	require.NotNil(t, w)

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop(), "Stop should be idempotent")
}

func TestWatcher_Watch_MissingPath(t *testing.T) {
	w, err := New(testLogger(), Options{})
	require.NoError(t, err)
	defer w.Stop() //nolint:errcheck // Test cleanup

	err = w.Watch(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestWatcher_FileCreation(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{SettleDelay: 50 * time.Millisecond})

	path := filepath.Join(dir, "2023-panini-prizm-basketball.csv")
	require.NoError(t, os.WriteFile(path, []byte("card_number,player_name,card_type\n"), 0o644))

	event := waitEvent(t, w, 2*time.Second)
	assert.Equal(t, EventAdded, event.Type)
	assert.Equal(t, path, event.Path)
	assert.Equal(t, int64(34), event.Size)
}

func TestWatcher_SecondSettleIsModified(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{SettleDelay: 50 * time.Millisecond})

	path := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))
	assert.Equal(t, EventAdded, waitEvent(t, w, 2*time.Second).Type)

	require.NoError(t, os.WriteFile(path, []byte("one two"), 0o644))
	event := waitEvent(t, w, 2*time.Second)
	assert.Equal(t, EventModified, event.Type)
	assert.Equal(t, int64(7), event.Size)
}

func TestWatcher_FileDeletion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.csv")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	w := startWatcher(t, dir, Options{})

	require.NoError(t, os.Remove(path))

	event := waitEvent(t, w, time.Second)
	assert.Equal(t, EventRemoved, event.Type)
	assert.Equal(t, path, event.Path)
}

func TestWatcher_FiltersHiddenAndExtensions(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{
		SettleDelay: 50 * time.Millisecond,
		Extensions:  []string{".csv"},
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.csv"), []byte("secret"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("text"), 0o644))
	normal := filepath.Join(dir, "normal.csv")
	require.NoError(t, os.WriteFile(normal, []byte("content"), 0o644))

	event := waitEvent(t, w, time.Second)
	assert.Equal(t, normal, event.Path)

	select {
	case event := <-w.Events():
		t.Fatalf("unexpected event: %+v", event)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{SettleDelay: 50 * time.Millisecond})

	sub := filepath.Join(dir, "2024")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(sub, "topps-chrome.csv")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	event := waitEvent(t, w, 2*time.Second)
	assert.Equal(t, path, event.Path)
	assert.Equal(t, EventAdded, event.Type)
}
