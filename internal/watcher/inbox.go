package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/birdwell/trading-cards/internal/domain"
)

// Importer imports a checklist file from disk.
type Importer interface {
	ImportFile(ctx context.Context, path, sport, sourceURL string) (*domain.ImportResult, error)
}

// Inbox imports checklist files dropped into a directory.
// Files are left in place; re-imports of the same file name are no-ops.
type Inbox struct {
	dir      string
	watcher  *Watcher
	importer Importer
	logger   *slog.Logger

	ready     chan struct{}
	readyOnce sync.Once
}

// NewInbox creates the inbox directory if needed and starts watching it.
func NewInbox(dir string, importer Importer, opts Options, logger *slog.Logger) (*Inbox, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create inbox directory: %w", err)
	}

	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".csv", ".json"}
	}

	w, err := New(logger, opts)
	if err != nil {
		return nil, err
	}
	if err := w.Watch(dir); err != nil {
		_ = w.Stop()
		return nil, fmt.Errorf("watch inbox: %w", err)
	}

	return &Inbox{
		dir:      dir,
		watcher:  w,
		importer: importer,
		logger:   logger.With("component", "inbox"),
		ready:    make(chan struct{}),
	}, nil
}

// Run imports files already present in the inbox, then imports each file
// that settles until ctx is cancelled. The watcher is stopped on return.
func (i *Inbox) Run(ctx context.Context) error {
	defer func() {
		if err := i.watcher.Stop(); err != nil {
			i.logger.Warn("failed to stop inbox watcher", "error", err)
		}
	}()

	i.logger.Info("watching checklist inbox", "path", i.dir)
	i.importExisting(ctx)
	i.readyOnce.Do(func() { close(i.ready) })

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = i.watcher.Start(ctx)
	}()
	defer func() { <-done }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-i.watcher.Events():
			if !ok {
				return nil
			}
			switch event.Type {
			case EventAdded, EventModified:
				i.importFile(ctx, event.Path)
			case EventRemoved:
				i.logger.Debug("checklist removed from inbox", "path", event.Path)
			}
		case err, ok := <-i.watcher.Errors():
			if !ok {
				return nil
			}
			i.logger.Warn("inbox watcher error", "error", err)
		}
	}
}

// Ready is closed once the files present at startup have been imported.
// Files dropped after that arrive through watcher events only.
func (i *Inbox) Ready() <-chan struct{} {
	return i.ready
}

func (i *Inbox) importExisting(ctx context.Context) {
	entries, err := os.ReadDir(i.dir)
	if err != nil {
		i.logger.Warn("failed to list inbox", "path", i.dir, "error", err)
		return
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		path := filepath.Join(i.dir, entry.Name())
		if entry.IsDir() || i.watcher.opts.shouldIgnore(path) || !i.watcher.opts.accepts(path) {
			continue
		}
		i.importFile(ctx, path)
	}
}

func (i *Inbox) importFile(ctx context.Context, path string) {
	result, err := i.importer.ImportFile(ctx, path, "", "")
	if err != nil {
		i.logger.Error("checklist import failed", "path", path, "error", err)
		return
	}

	if !result.Created {
		i.logger.Debug("checklist already imported", "path", path, "set_id", result.Set.ID)
		return
	}
	i.logger.Info("checklist imported",
		"path", path,
		"import_id", result.ImportID,
		"set_id", result.Set.ID,
		"cards", len(result.Cards),
	)
}
