package provider

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kirana-labs/kirana/internal/entity"
	providerrepo "github.com/kirana-labs/kirana/internal/repository/provider"
	"github.com/kirana-labs/kirana/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/kirana-labs/kirana/service/provider")

// Registry is the provider persistence surface the service consumes.
type Registry interface {
	GetByID(ctx context.Context, id int64) (*entity.Provider, error)
	UpdateLocation(ctx context.Context, id int64, upd providerrepo.LocationUpdate) (*entity.Provider, error)
}

// LocationInput carries a provider's partial profile update. Nil fields are
// left untouched.
type LocationInput struct {
	Lat             *float64 `json:"lat"`
	Lng             *float64 `json:"lng"`
	Pincode         *string  `json:"pincode"`
	ServiceRadiusKm *int     `json:"service_radius_km"`
}

// Service manages provider profiles. Selection never goes through here; it
// reads the registry directly.
type Service struct {
	registry Registry
	logger   *zap.Logger
}

// NewService wires the provider profile service.
func NewService(registry Registry, logger *zap.Logger) *Service {
	return &Service{registry: registry, logger: logger}
}

// Get returns one provider's profile.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Provider, error) {
	ctx, span := serviceTracer.Start(ctx, "ProviderService.Get", trace.WithAttributes(attribute.Int64("provider.id", id)))
	defer span.End()

	prov, err := s.registry.GetByID(ctx, id)
	if errors.Is(err, providerrepo.ErrNotFound) {
		span.SetStatus(codes.Error, "not found")
		return nil, errorbank.NotFound("provider not found")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "registry read failed")
		return nil, errorbank.Internal("failed to load provider", errorbank.WithCause(err))
	}
	return prov, nil
}

// UpdateLocation validates and applies a provider's own location, pincode, and
// service radius changes.
func (s *Service) UpdateLocation(ctx context.Context, providerID int64, input LocationInput) (*entity.Provider, error) {
	ctx, span := serviceTracer.Start(ctx, "ProviderService.UpdateLocation", trace.WithAttributes(attribute.Int64("provider.id", providerID)))
	defer span.End()

	if input.Lat != nil && (*input.Lat < -90 || *input.Lat > 90) {
		return nil, errorbank.BadRequest("latitude out of range")
	}
	if input.Lng != nil && (*input.Lng < -180 || *input.Lng > 180) {
		return nil, errorbank.BadRequest("longitude out of range")
	}
	if input.ServiceRadiusKm != nil && *input.ServiceRadiusKm < 0 {
		return nil, errorbank.BadRequest("service radius must be >= 0")
	}
	if input.Pincode != nil {
		trimmed := strings.TrimSpace(*input.Pincode)
		input.Pincode = &trimmed
	}

	prov, err := s.registry.UpdateLocation(ctx, providerID, providerrepo.LocationUpdate{
		Lat:             input.Lat,
		Lng:             input.Lng,
		Pincode:         input.Pincode,
		ServiceRadiusKm: input.ServiceRadiusKm,
	})
	if errors.Is(err, providerrepo.ErrNotFound) {
		span.SetStatus(codes.Error, "not found")
		return nil, errorbank.NotFound("provider not found")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, errorbank.Internal("failed to update provider location", errorbank.WithCause(err))
	}

	if s.logger != nil {
		s.logger.Info("provider location updated", zap.Int64("provider_id", providerID))
	}
	return prov, nil
}
