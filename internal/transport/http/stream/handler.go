package stream

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kirana-labs/kirana/internal/broadcast"
	"github.com/kirana-labs/kirana/internal/transport/http/middleware"
)

var httpTracer = otel.Tracer("github.com/kirana-labs/kirana/transport/http/stream")

// Handler exposes the live order-event stream over server-sent events.
type Handler struct {
	hub    *broadcast.Hub
	logger *zap.Logger
}

// NewHandler constructs a stream Handler.
func NewHandler(hub *broadcast.Hub, logger *zap.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/orders/stream", h.stream, middleware.Identity())
}

// Visible reports whether an event belongs on a caller's stream. Providers see
// events for orders assigned to them; everyone else sees their own orders.
func Visible(caller middleware.Caller, ev broadcast.Event) bool {
	if caller.IsProvider() {
		return ev.ProviderID == caller.ID
	}
	return ev.ConsumerID == caller.ID
}

func (h *Handler) stream(c echo.Context) error {
	caller, _ := middleware.CallerFrom(c)

	_, span := httpTracer.Start(c.Request().Context(), "orders.stream",
		trace.WithAttributes(attribute.Int64("caller.id", caller.ID)))
	defer span.End()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)

	flusher, ok := res.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "streaming unsupported")
	}

	sub := h.hub.Subscribe(caller.Role, caller.ID)
	defer h.hub.Unsubscribe(sub)

	// Confirm the stream is open before the first event arrives.
	fmt.Fprint(res, ": connected\n\n")
	flusher.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, open := <-sub.Events():
			if !open {
				// Evicted by the hub for falling behind; the client
				// reconnects and starts fresh.
				h.logger.Warn("stream subscriber evicted",
					zap.Int64("caller_id", caller.ID),
					zap.String("role", caller.Role),
				)
				return nil
			}
			if !Visible(caller, ev) {
				continue
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.logger.Error("marshal stream event", zap.Error(err))
				continue
			}
			fmt.Fprintf(res, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
