package provider

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kirana-labs/kirana/internal/dto"
	"github.com/kirana-labs/kirana/internal/entity"
	"github.com/kirana-labs/kirana/internal/presentation/http/response"
	"github.com/kirana-labs/kirana/internal/service/selector"
	"github.com/kirana-labs/kirana/internal/transport/http/middleware"
	"github.com/kirana-labs/kirana/pkg/errorbank"

	service "github.com/kirana-labs/kirana/internal/service/provider"
)

var httpTracer = otel.Tracer("github.com/kirana-labs/kirana/transport/http/provider")

// Handler exposes provider selection and profile endpoints over HTTP.
type Handler struct {
	svc *service.Service
	sel *selector.Service
}

// NewHandler constructs a provider Handler.
func NewHandler(svc *service.Service, sel *selector.Service) *Handler {
	return &Handler{svc: svc, sel: sel}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/providers")
	g.GET("/select", h.selectProvider)
	g.GET("/:id", h.getByID)
	g.PUT("/me/location", h.updateLocation, middleware.Identity(), middleware.RequireRole(entity.RoleProvider))
}

// selectProvider answers "which shop would serve me" without placing an order.
func (h *Handler) selectProvider(c echo.Context) error {
	b := response.New(c)

	q := selector.Query{
		Pincode: strings.TrimSpace(c.QueryParam("pincode")),
		Lat:     optionalFloat(c.QueryParam("lat")),
		Lng:     optionalFloat(c.QueryParam("lng")),
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "providers.select",
		trace.WithAttributes(attribute.String("consumer.pincode", q.Pincode)))
	defer span.End()

	sel, err := h.sel.Select(ctx, q)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.SelectionResponse{
		Provider:   dto.ToProvider(&sel.Provider),
		DistanceKm: sel.DistanceKm,
	}).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid provider id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "providers.getByID",
		trace.WithAttributes(attribute.Int64("provider.id", id)))
	defer span.End()

	prov, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.ToProvider(prov)).Build()
}

func (h *Handler) updateLocation(c echo.Context) error {
	b := response.New(c)
	caller, _ := middleware.CallerFrom(c)

	var payload service.LocationInput
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "providers.updateLocation",
		trace.WithAttributes(attribute.Int64("provider.id", caller.ID)))
	defer span.End()

	prov, err := h.svc.UpdateLocation(ctx, caller.ID, payload)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.ToProvider(prov)).Build()
}

// optionalFloat parses a query value leniently: absent or malformed values are
// treated as not provided rather than rejected.
func optionalFloat(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
