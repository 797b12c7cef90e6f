package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/birdwell/trading-cards/internal/brand"
	"github.com/birdwell/trading-cards/internal/config"
	"github.com/birdwell/trading-cards/internal/logger"
	"github.com/birdwell/trading-cards/internal/service"
	"github.com/birdwell/trading-cards/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(_ do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideClassifier provides the brand classifier, loading override rules
// when a rules file is configured.
func ProvideClassifier(i do.Injector) (*brand.Classifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Brand.RulesPath == "" {
		return brand.Default(), nil
	}

	rules, err := brand.LoadRules(cfg.Brand.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("load brand rules: %w", err)
	}
	classifier, err := brand.NewClassifier(rules)
	if err != nil {
		return nil, fmt.Errorf("build brand classifier: %w", err)
	}

	log.Info("Brand rules loaded", "path", cfg.Brand.RulesPath)
	return classifier, nil
}

// ProvideStatsService provides the set statistics service.
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewStatsService(storeHandle.Store, log.Logger), nil
}

// ProvideBrandService provides the brand aggregation service.
func ProvideBrandService(i do.Injector) (*service.BrandService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	stats := do.MustInvoke[*service.StatsService](i)
	classifier := do.MustInvoke[*brand.Classifier](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBrandService(
		storeHandle.Store,
		stats,
		classifier,
		cfg.Aggregation.StatsConcurrency,
		log.Logger,
	), nil
}

// ProvideSetService provides the set service.
func ProvideSetService(i do.Injector) (*service.SetService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewSetService(storeHandle.Store, v, log.Logger)
	svc.SetEventEmitter(do.MustInvoke[*SSEManagerHandle](i).Manager)
	return svc, nil
}

// ProvideCardService provides the card service.
func ProvideCardService(i do.Injector) (*service.CardService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewCardService(storeHandle.Store, log.Logger)
	svc.SetEventEmitter(do.MustInvoke[*SSEManagerHandle](i).Manager)
	return svc, nil
}

// ProvideImportService provides the checklist import service.
func ProvideImportService(i do.Injector) (*service.ImportService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewImportService(storeHandle.Store, v, log.Logger)
	svc.SetEventEmitter(do.MustInvoke[*SSEManagerHandle](i).Manager)
	return svc, nil
}
