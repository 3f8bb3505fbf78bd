package catalog

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kirana-labs/kirana/internal/dto"
	"github.com/kirana-labs/kirana/internal/presentation/http/response"
	service "github.com/kirana-labs/kirana/internal/service/catalog"
	"github.com/kirana-labs/kirana/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/kirana-labs/kirana/transport/http/catalog")

// Handler exposes product browsing endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a catalog Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/providers/:id/products", h.listByProvider)
	e.GET("/products/:pincode/:category", h.listByPincode)
}

func (h *Handler) listByProvider(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid provider id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.listByProvider",
		trace.WithAttributes(attribute.Int64("provider.id", id)))
	defer span.End()

	products, err := h.svc.ListByProvider(ctx, id, c.QueryParam("category"))
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.ToProducts(products)).Build()
}

func (h *Handler) listByPincode(c echo.Context) error {
	b := response.New(c)

	pincode := c.Param("pincode")
	if pincode == "" {
		return b.WithError(errorbank.BadRequest("pincode is required")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "catalog.listByPincode",
		trace.WithAttributes(attribute.String("catalog.pincode", pincode)))
	defer span.End()

	products, err := h.svc.ListByPincode(ctx, pincode, c.Param("category"))
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.ToProducts(products)).Build()
}
