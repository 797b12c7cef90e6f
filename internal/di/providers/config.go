// Package providers contains dependency injection providers for the trading
// cards server.
package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/birdwell/trading-cards/internal/config"
	"github.com/birdwell/trading-cards/internal/logger"
)

// ProvideConfig provides the application configuration from the parsed flags
// registered in the container.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	flags, err := do.Invoke[*config.Flags](i)
	if err != nil {
		flags = nil
	}
	return config.Load(flags)
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting trading cards server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
		"db_driver", cfg.Database.Driver,
	)

	return log, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
