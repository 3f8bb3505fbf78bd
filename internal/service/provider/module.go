package provider

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	providerrepo "github.com/kirana-labs/kirana/internal/repository/provider"
)

// Module provides the provider profile service to Fx.
var Module = fx.Provide(func(registry *providerrepo.Repository, logger *zap.Logger) *Service {
	return NewService(registry, logger)
})
