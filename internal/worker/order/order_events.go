package order

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/kirana-labs/kirana/internal/broadcast"
	"github.com/kirana-labs/kirana/internal/cache"
	"github.com/kirana-labs/kirana/internal/config"
	"github.com/kirana-labs/kirana/internal/messaging"
	ordersvc "github.com/kirana-labs/kirana/internal/service/order"
	"github.com/kirana-labs/kirana/internal/worker"
)

var workerTracer = otel.Tracer("github.com/kirana-labs/kirana/worker/order")

// Module registers order-event worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewOrderEventsHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewOrderEventsHandler consumes order event envelopes off the bus and keeps
// the per-line status cache warm, so status polls served by other instances
// stay fresh without a database read.
func NewOrderEventsHandler(logger *zap.Logger, cfg config.Config, store cache.Store) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var envelope ordersvc.Envelope
		if err := json.Unmarshal(msg.Value, &envelope); err != nil {
			logger.Error("failed to decode order event envelope", zap.Error(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}

		var event broadcast.Event
		if err := json.Unmarshal(envelope.Payload, &event); err != nil {
			logger.Error("failed to decode order event payload",
				zap.String("event_id", envelope.EventID),
				zap.Error(err),
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}

		span.SetAttributes(
			attribute.String("event.type", envelope.EventType),
			attribute.Int64("order.line_id", event.OrderLineID),
		)

		value, err := json.Marshal(map[string]string{
			"status":     event.Status,
			"updated_at": envelope.OccurredAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return err
		}
		if err := store.Set(ctx, ordersvc.StatusCacheKey(event.OrderLineID), value, cfg.Cache.DefaultTTL); err != nil {
			logger.Warn("order status cache refresh failed",
				zap.Int64("order_line_id", event.OrderLineID),
				zap.Error(err),
			)
			return nil
		}

		logger.Info("order event processed",
			zap.String("event_id", envelope.EventID),
			zap.String("event_type", envelope.EventType),
			zap.Int64("order_line_id", event.OrderLineID),
			zap.String("bundle_id", event.BundleID),
			zap.String("status", event.Status),
		)

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
