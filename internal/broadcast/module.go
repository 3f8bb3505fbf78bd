package broadcast

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/kirana-labs/kirana/internal/config"
)

// Module provides the broadcast hub with explicit lifecycle to Fx.
var Module = fx.Provide(New)

// New builds the hub from configuration and ties teardown to shutdown.
func New(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) *Hub {
	hub := NewHub(cfg.Broadcast.Buffer, logger)

	meter := otel.Meter("github.com/kirana-labs/kirana/broadcast")
	_, err := meter.Int64ObservableCounter(
		"broadcast_subscribers_dropped_total",
		metric.WithDescription("Subscribers evicted from the live-update hub for falling behind."),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(hub.Dropped())
			return nil
		}),
	)
	if err != nil && logger != nil {
		logger.Warn("register broadcast drop counter", zap.Error(err))
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			hub.Close()
			return nil
		},
	})

	return hub
}
