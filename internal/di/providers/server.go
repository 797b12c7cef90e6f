package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/birdwell/trading-cards/internal/api"
	"github.com/birdwell/trading-cards/internal/config"
	"github.com/birdwell/trading-cards/internal/logger"
	"github.com/birdwell/trading-cards/internal/service"
)

// Version is reported in the OpenAPI document. Overridden at build time.
var Version = "dev"

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideAPIServer provides the HTTP handler with all routes registered.
func ProvideAPIServer(i do.Injector) (*api.Server, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	limiter := do.MustInvoke[*ImportLimiterHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Stats:  do.MustInvoke[*service.StatsService](i),
		Brand:  do.MustInvoke[*service.BrandService](i),
		Set:    do.MustInvoke[*service.SetService](i),
		Card:   do.MustInvoke[*service.CardService](i),
		Import: do.MustInvoke[*service.ImportService](i),
		Search: do.MustInvoke[*service.SearchService](i),
	}

	return api.NewServer(storeHandle.Store, services, limiter.KeyedRateLimiter, api.Options{
		Version:     Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		Events:      do.MustInvoke[*SSEManagerHandle](i).Manager,
	}, log.Logger), nil
}

// ProvideHTTPServer provides the HTTP server and starts it in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	handler := do.MustInvoke[*api.Server](i)
	log := do.MustInvoke[*logger.Logger](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Open event streams would otherwise hold Shutdown until its timeout.
	events := do.MustInvoke[*SSEManagerHandle](i)
	srv.RegisterOnShutdown(func() {
		if err := events.Shutdown(); err != nil {
			log.Warn("Closing event streams failed", "error", err)
		}
	})

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server error")
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
