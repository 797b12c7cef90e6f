package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/birdwell/trading-cards/internal/config"
	"github.com/birdwell/trading-cards/internal/logger"
	"github.com/birdwell/trading-cards/internal/store"
	"github.com/birdwell/trading-cards/internal/store/postgres"
	"github.com/birdwell/trading-cards/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the store selected by the database driver.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := OpenStore(context.Background(), cfg.Database, log)
	if err != nil {
		return nil, err
	}
	return &StoreHandle{Store: st}, nil
}

// OpenStore opens the sqlite or postgres store described by cfg.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		st, err := postgres.Open(ctx, postgres.Config{
			URL:      cfg.URL,
			MaxConns: int32(cfg.MaxConns), //nolint:gosec // validated >= 1 and small
		}, log.Logger)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		log.Info("Database initialized", "driver", cfg.Driver, "max_conns", cfg.MaxConns)
		return st, nil

	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
		st, err := sqlite.Open(cfg.Path, log.Logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		log.Info("Database initialized", "driver", cfg.Driver, "path", cfg.Path)
		return st, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
