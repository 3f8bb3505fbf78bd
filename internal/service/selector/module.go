package selector

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/kirana-labs/kirana/internal/config"
	providerrepo "github.com/kirana-labs/kirana/internal/repository/provider"
)

// Module provides the selector service to Fx.
var Module = fx.Provide(func(repo *providerrepo.Repository, cfg config.Config, logger *zap.Logger) *Service {
	return NewService(repo, cfg.Selector.DefaultRadiusKm, logger)
})
