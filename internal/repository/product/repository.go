package product

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kirana-labs/kirana/internal/database"
	"github.com/kirana-labs/kirana/internal/entity"
)

var repoTracer = otel.Tracer("github.com/kirana-labs/kirana/repository/product")

// ErrNotFound is returned when a product is missing.
var ErrNotFound = errors.New("product not found")

// Repository exposes read access to the catalog. Stock mutation lives in the
// inventory ledger; price and listing changes belong to the external catalog
// collaborator.
type Repository struct {
	reader *bun.DB
}

// NewRepository wires a read-only catalog repository.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{reader: conns.Reader}
}

// ListByProvider returns one provider's catalog, optionally filtered by
// category, ordered by category then name.
func (r *Repository) ListByProvider(ctx context.Context, providerID int64, category *entity.Category) ([]entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.ListByProvider", trace.WithAttributes(attribute.Int64("provider.id", providerID)))
	defer span.End()

	var products []entity.Product
	q := r.reader.NewSelect().Model(&products).
		Where("provider_id = ?", providerID)
	if category != nil {
		q = q.Where("category = ?", *category)
	}
	if err := q.Order("category ASC", "name ASC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return products, nil
}

// ListByPincode returns all products listed under a pincode, any owner,
// optionally filtered by category.
func (r *Repository) ListByPincode(ctx context.Context, pincode string, category *entity.Category) ([]entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.ListByPincode", trace.WithAttributes(attribute.String("pincode", pincode)))
	defer span.End()

	var products []entity.Product
	q := r.reader.NewSelect().Model(&products).
		Where("pincode = ?", pincode)
	if category != nil {
		q = q.Where("category = ?", *category)
	}
	if err := q.Order("category ASC", "name ASC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return products, nil
}

// GetByID fetches a single catalog row.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "ProductRepository.GetByID", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	p := new(entity.Product)
	err := r.reader.NewSelect().Model(p).Where("id = ?", id).Scan(ctx)
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
