package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/riverhouse-belgrade/riverhouse/internal/store"
)

// checkSiteConfig makes sure the site configuration row exists
func (a *Application) checkSiteConfig() {
	cfg, err := store.NewSiteConfigStore(a.gormDB).Get(context.Background())
	if err != nil {
		zap.L().Error("failed to initialize site config", zap.Error(err))
		return
	}
	zap.L().Debug("site config ready",
		zap.Int("featured", len(cfg.FeaturedImages)),
		zap.Int("instagram", len(cfg.InstagramImages)))
}

// checkPrices upgrades price records still in the legacy included-items shape
func (a *Application) checkPrices() {
	n, err := a.MigratePrices(context.Background())
	if err != nil {
		zap.L().Error("price migration failed", zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Info("migrated legacy price records", zap.Int("count", n))
	}
}
