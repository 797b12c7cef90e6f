package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birdwell/trading-cards/internal/domain"
	"github.com/birdwell/trading-cards/internal/service"
	"github.com/birdwell/trading-cards/internal/store/sqlite"
	"github.com/birdwell/trading-cards/internal/validation"
)

type fakeImporter struct {
	mu    sync.Mutex
	paths []string
	calls chan string
	err   error
}

func newFakeImporter() *fakeImporter {
	return &fakeImporter{calls: make(chan string, 10)}
}

func (f *fakeImporter) ImportFile(_ context.Context, path, _, _ string) (*domain.ImportResult, error) {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()
	f.calls <- path

	if f.err != nil {
		return nil, f.err
	}
	return &domain.ImportResult{ImportID: "imp-test", Created: true, Set: &domain.Set{ID: 1}}, nil
}

// runInbox runs the inbox until the test ends.
func runInbox(t *testing.T, inbox *Inbox) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- inbox.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("inbox did not stop")
		}
	})

	select {
	case <-inbox.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("inbox did not finish startup")
	}
}

func waitCall(t *testing.T, f *fakeImporter) string {
	t.Helper()
	select {
	case path := <-f.calls:
		return path
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for import")
		return ""
	}
}

func TestNewInbox_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbox", "nested")

	inbox, err := NewInbox(dir, newFakeImporter(), Options{}, testLogger())
	require.NoError(t, err)
	defer inbox.watcher.Stop() //nolint:errcheck // Test cleanup

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, []string{".csv", ".json"}, inbox.watcher.opts.Extensions)
}

func TestInbox_ImportsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "2022-donruss-football.csv")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644))

	importer := newFakeImporter()
	inbox, err := NewInbox(dir, importer, Options{SettleDelay: 50 * time.Millisecond}, testLogger())
	require.NoError(t, err)
	runInbox(t, inbox)

	assert.Equal(t, existing, waitCall(t, importer))
}

func TestInbox_ImportsDroppedFiles(t *testing.T) {
	dir := t.TempDir()
	importer := newFakeImporter()
	inbox, err := NewInbox(dir, importer, Options{SettleDelay: 50 * time.Millisecond}, testLogger())
	require.NoError(t, err)
	runInbox(t, inbox)

	path := filepath.Join(dir, "2023-panini-prizm-basketball.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	assert.Equal(t, path, waitCall(t, importer))

	select {
	case extra := <-importer.calls:
		t.Fatalf("unexpected second import of %s", extra)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestInbox_ExistingFileImportedOnce(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "2024-topps-chrome-football.csv")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))

	importer := newFakeImporter()
	inbox, err := NewInbox(dir, importer, Options{SettleDelay: 50 * time.Millisecond}, testLogger())
	require.NoError(t, err)
	runInbox(t, inbox)

	assert.Equal(t, existing, waitCall(t, importer))

	select {
	case extra := <-importer.calls:
		t.Fatalf("unexpected second import of %s", extra)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestInbox_ImportErrorKeepsRunning(t *testing.T) {
	dir := t.TempDir()
	importer := newFakeImporter()
	importer.err = errors.New("bad checklist")

	inbox, err := NewInbox(dir, importer, Options{SettleDelay: 50 * time.Millisecond}, testLogger())
	require.NoError(t, err)
	runInbox(t, inbox)

	first := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(first, []byte("x"), 0o644))
	assert.Equal(t, first, waitCall(t, importer))

	second := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(second, []byte("y"), 0o644))
	assert.Equal(t, second, waitCall(t, importer))
}

func TestInbox_EndToEndImport(t *testing.T) {
	logger := testLogger()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "cards.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	imports := service.NewImportService(s, validation.New(), logger)

	dir := t.TempDir()
	inbox, err := NewInbox(dir, imports, Options{SettleDelay: 50 * time.Millisecond}, logger)
	require.NoError(t, err)
	runInbox(t, inbox)

	csv := "card_number,player_name,card_type\n1,Stephen Curry,Base\n2,LeBron James,Base\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2023-panini-prizm-basketball.csv"), []byte(csv), 0o644))

	var set *domain.Set
	require.Eventually(t, func() bool {
		set, err = s.GetSetBySourceFile(context.Background(), "2023-panini-prizm-basketball.csv")
		return err == nil
	}, 3*time.Second, 25*time.Millisecond)

	assert.Equal(t, "2023", set.Year)
	assert.Equal(t, domain.SportBasketball, set.Sport)

	cards, err := s.ListCardsBySet(context.Background(), set.ID)
	require.NoError(t, err)
	assert.Len(t, cards, 2)
}
