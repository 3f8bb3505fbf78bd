package provider

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kirana-labs/kirana/internal/database"
	"github.com/kirana-labs/kirana/internal/entity"
)

var repoTracer = otel.Tracer("github.com/kirana-labs/kirana/repository/provider")

// ErrNotFound is returned when a provider is missing.
var ErrNotFound = errors.New("provider not found")

// Repository is the registry view over provider rows. Selection only ever
// reads it; location updates come through UpdateLocation on behalf of the
// provider itself.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// ListProviders returns all rows carrying the provider role. An
// eventually-consistent snapshot is fine here: a radius changing mid-selection
// is not a correctness hazard.
func (r *Repository) ListProviders(ctx context.Context) ([]entity.Provider, error) {
	ctx, span := repoTracer.Start(ctx, "ProviderRepository.ListProviders")
	defer span.End()

	var providers []entity.Provider
	err := r.reader.NewSelect().Model(&providers).
		Where("role = ?", entity.RoleProvider).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return providers, nil
}

// GetByID fetches one provider row.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Provider, error) {
	ctx, span := repoTracer.Start(ctx, "ProviderRepository.GetByID", trace.WithAttributes(attribute.Int64("provider.id", id)))
	defer span.End()

	p := new(entity.Provider)
	err := r.reader.NewSelect().Model(p).
		Where("id = ?", id).
		Where("role = ?", entity.RoleProvider).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return p, nil
}

// LocationUpdate carries the fields a provider may change on its own profile.
// Nil pointers leave the stored value untouched.
type LocationUpdate struct {
	Lat             *float64
	Lng             *float64
	Pincode         *string
	ServiceRadiusKm *int
}

// UpdateLocation applies a partial location/radius update to the provider row.
func (r *Repository) UpdateLocation(ctx context.Context, id int64, upd LocationUpdate) (*entity.Provider, error) {
	ctx, span := repoTracer.Start(ctx, "ProviderRepository.UpdateLocation", trace.WithAttributes(attribute.Int64("provider.id", id)))
	defer span.End()

	q := r.writer.NewUpdate().Model((*entity.Provider)(nil)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("role = ?", entity.RoleProvider)

	if upd.Lat != nil {
		q = q.Set("lat = ?", *upd.Lat)
	}
	if upd.Lng != nil {
		q = q.Set("lng = ?", *upd.Lng)
	}
	if upd.Pincode != nil {
		q = q.Set("pincode = ?", *upd.Pincode)
	}
	if upd.ServiceRadiusKm != nil {
		q = q.Set("service_radius_km = ?", *upd.ServiceRadiusKm)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, id)
}
