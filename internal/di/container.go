// Package di provides dependency injection configuration for the trading cards server.
package di

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/birdwell/trading-cards/internal/config"
	"github.com/birdwell/trading-cards/internal/di/providers"
	"github.com/birdwell/trading-cards/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
// flags may be nil, in which case configuration comes from the environment.
func NewContainer(flags *config.Flags) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	if flags != nil {
		do.ProvideValue(injector, flags)
	}
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSSEManager)

	// Classification and search
	do.Provide(injector, providers.ProvideClassifier)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Business services
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideStatsService)
	do.Provide(injector, providers.ProvideBrandService)
	do.Provide(injector, providers.ProvideSetService)
	do.Provide(injector, providers.ProvideCardService)
	do.Provide(injector, providers.ProvideImportService)

	// Workers
	do.Provide(injector, providers.ProvideImportLimiter)
	do.Provide(injector, providers.ProvideInbox)

	// Server
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap eagerly resolves every service so startup fails fast, then starts
// the background work.
func Bootstrap(injector do.Injector) error {
	steps := []struct {
		name   string
		invoke func(do.Injector) error
	}{
		{"store", invoke[*providers.StoreHandle]},
		{"search", invoke[*service.SearchService]},
		{"brand service", invoke[*service.BrandService]},
		{"set service", invoke[*service.SetService]},
		{"card service", invoke[*service.CardService]},
		{"import service", invoke[*service.ImportService]},
		{"inbox", invoke[*providers.InboxHandle]},
		{"http server", invoke[*providers.HTTPServerHandle]},
	}
	for _, step := range steps {
		if err := step.invoke(injector); err != nil {
			return fmt.Errorf("bootstrap %s: %w", step.name, err)
		}
	}

	// Trigger search reindex if needed
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}

func invoke[T any](i do.Injector) error {
	_, err := do.Invoke[T](i)
	return err
}
