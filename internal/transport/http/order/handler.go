package order

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kirana-labs/kirana/internal/dto"
	"github.com/kirana-labs/kirana/internal/entity"
	"github.com/kirana-labs/kirana/internal/presentation/http/response"
	service "github.com/kirana-labs/kirana/internal/service/order"
	"github.com/kirana-labs/kirana/internal/transport/http/middleware"
	"github.com/kirana-labs/kirana/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/kirana-labs/kirana/transport/http/order")

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance. Every order route requires
// a caller identity.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/orders", middleware.Identity())
	g.POST("/bundle", h.placeBundle, middleware.RequireRole(entity.RoleConsumer))
	g.GET("", h.list)
	g.POST("/:ref/status", h.updateStatus, middleware.RequireRole(entity.RoleProvider))
}

func (h *Handler) placeBundle(c echo.Context) error {
	b := response.New(c)
	caller, _ := middleware.CallerFrom(c)

	var payload struct {
		Items    []service.ItemRequest `json:"items"`
		Location service.Location      `json:"location"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.placeBundle",
		trace.WithAttributes(
			attribute.Int64("consumer.id", caller.ID),
			attribute.Int("bundle.items", len(payload.Items)),
		))
	defer span.End()

	result, err := h.svc.PlaceBundle(ctx, caller.ID, payload.Items, payload.Location)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(result).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)
	caller, _ := middleware.CallerFrom(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list",
		trace.WithAttributes(
			attribute.Int64("caller.id", caller.ID),
			attribute.String("caller.role", caller.Role),
		))
	defer span.End()

	var (
		lines []entity.OrderLine
		err   error
	)
	if caller.IsProvider() {
		lines, err = h.svc.ListProviderOrders(ctx, caller.ID)
	} else {
		lines, err = h.svc.ListConsumerOrders(ctx, caller.ID)
	}
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.ToOrderLines(lines)).Build()
}

func (h *Handler) updateStatus(c echo.Context) error {
	b := response.New(c)
	caller, _ := middleware.CallerFrom(c)

	ref := c.Param("ref")
	var payload struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.updateStatus",
		trace.WithAttributes(
			attribute.String("order.ref", ref),
			attribute.String("order.status", payload.Status),
		))
	defer span.End()

	result, err := h.svc.UpdateStatus(ctx, ref, payload.Status, caller.ID)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(result).Build()
}
