package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/birdwell/trading-cards/internal/config"
	"github.com/birdwell/trading-cards/internal/logger"
	"github.com/birdwell/trading-cards/internal/ratelimit"
	"github.com/birdwell/trading-cards/internal/service"
	"github.com/birdwell/trading-cards/internal/watcher"
)

// ImportLimiterHandle wraps the per-client import rate limiter.
type ImportLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *ImportLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideImportLimiter provides the rate limiter guarding the import endpoint.
func ProvideImportLimiter(i do.Injector) (*ImportLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := ratelimit.PerMinute(cfg.Import.RatePerMinute, cfg.Import.Burst)
	return &ImportLimiterHandle{KeyedRateLimiter: limiter}, nil
}

// InboxHandle runs the checklist inbox watcher in the background.
// It is inert when no inbox path is configured.
type InboxHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *InboxHandle) Shutdown() error {
	if h.cancel == nil {
		return nil
	}
	h.cancel()
	<-h.done
	return nil
}

// ProvideInbox starts watching the configured inbox directory.
func ProvideInbox(i do.Injector) (*InboxHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Import.InboxPath == "" {
		log.Info("Checklist inbox disabled")
		return &InboxHandle{}, nil
	}

	imports := do.MustInvoke[*service.ImportService](i)

	inbox, err := watcher.NewInbox(cfg.Import.InboxPath, imports, watcher.Options{
		SettleDelay: cfg.Import.SettleDelay,
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := inbox.Run(ctx); err != nil {
			log.WithError(err).Error("Checklist inbox stopped")
		}
	}()

	log.Info("Checklist inbox started", "path", cfg.Import.InboxPath, "settle_delay", cfg.Import.SettleDelay)

	return &InboxHandle{cancel: cancel, done: done}, nil
}
