package order

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/kirana-labs/kirana/internal/broadcast"
	"github.com/kirana-labs/kirana/internal/cache"
	"github.com/kirana-labs/kirana/internal/config"
	"github.com/kirana-labs/kirana/internal/messaging"
	orderrepo "github.com/kirana-labs/kirana/internal/repository/order"
	selectorsvc "github.com/kirana-labs/kirana/internal/service/selector"
)

// Module provides the order service to Fx.
var Module = fx.Provide(func(
	bundles *orderrepo.Repository,
	sel *selectorsvc.Service,
	hub *broadcast.Hub,
	store cache.Store,
	publisher messaging.Client,
	cfg config.Config,
	logger *zap.Logger,
) *Service {
	return NewService(
		bundles,
		sel,
		hub,
		store,
		publisher,
		cfg.Cache.DefaultTTL,
		cfg.Messaging.Enabled,
		cfg.Observability.ServiceName,
		logger,
	)
})
