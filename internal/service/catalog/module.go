package catalog

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/kirana-labs/kirana/internal/cache"
	"github.com/kirana-labs/kirana/internal/config"
	productrepo "github.com/kirana-labs/kirana/internal/repository/product"
)

// Module provides the catalog service to Fx.
var Module = fx.Provide(func(catalog *productrepo.Repository, store cache.Store, cfg config.Config, logger *zap.Logger) *Service {
	return NewService(catalog, store, cfg.Cache.DefaultTTL, logger)
})
