package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kirana-labs/kirana/internal/cache"
	"github.com/kirana-labs/kirana/internal/entity"
	"github.com/kirana-labs/kirana/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/kirana-labs/kirana/service/catalog")

// CategoryAll requests an unfiltered listing.
const CategoryAll = "all"

// Catalog is the read surface the service consumes.
type Catalog interface {
	ListByProvider(ctx context.Context, providerID int64, category *entity.Category) ([]entity.Product, error)
	ListByPincode(ctx context.Context, pincode string, category *entity.Category) ([]entity.Product, error)
}

// Service serves catalog listings with a read-through cache. It never mutates
// the catalog: stock belongs to the inventory ledger, prices and listings to
// the external catalog collaborator.
type Service struct {
	catalog  Catalog
	cache    cache.Store
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewService wires the catalog read service.
func NewService(catalog Catalog, store cache.Store, cacheTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		catalog:  catalog,
		cache:    store,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// ListByProvider lists one provider's products. rawCategory may name a
// category, be empty, or be "all" for no filter.
func (s *Service) ListByProvider(ctx context.Context, providerID int64, rawCategory string) ([]entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.ListByProvider", trace.WithAttributes(attribute.Int64("provider.id", providerID)))
	defer span.End()

	category, err := parseFilter(rawCategory)
	if err != nil {
		span.SetStatus(codes.Error, "invalid category")
		return nil, err
	}

	key := fmt.Sprintf("catalog:provider:%d:%s", providerID, filterKey(category))
	if products, ok := s.fromCache(ctx, key); ok {
		return products, nil
	}

	products, err := s.catalog.ListByProvider(ctx, providerID, category)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog read failed")
		return nil, errorbank.Internal("failed to load catalog", errorbank.WithCause(err))
	}

	s.toCache(ctx, key, products)
	return products, nil
}

// ListByPincode lists every product under a pincode, any owner.
func (s *Service) ListByPincode(ctx context.Context, pincode, rawCategory string) ([]entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.ListByPincode", trace.WithAttributes(attribute.String("pincode", pincode)))
	defer span.End()

	pincode = strings.TrimSpace(pincode)
	if pincode == "" {
		span.SetStatus(codes.Error, "missing pincode")
		return nil, errorbank.BadRequest("pincode is required")
	}

	category, err := parseFilter(rawCategory)
	if err != nil {
		span.SetStatus(codes.Error, "invalid category")
		return nil, err
	}

	key := fmt.Sprintf("catalog:pincode:%s:%s", pincode, filterKey(category))
	if products, ok := s.fromCache(ctx, key); ok {
		return products, nil
	}

	products, err := s.catalog.ListByPincode(ctx, pincode, category)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog read failed")
		return nil, errorbank.Internal("failed to load catalog", errorbank.WithCause(err))
	}

	s.toCache(ctx, key, products)
	return products, nil
}

// parseFilter maps raw input to an optional category filter. Empty and "all"
// mean no filter; anything else must belong to the closed set.
func parseFilter(raw string) (*entity.Category, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" || trimmed == CategoryAll {
		return nil, nil
	}
	category, ok := entity.ParseCategory(trimmed)
	if !ok {
		return nil, errorbank.BadRequest("category not allowed", errorbank.WithDetail("category", raw))
	}
	return &category, nil
}

func filterKey(category *entity.Category) string {
	if category == nil {
		return CategoryAll
	}
	return string(*category)
}

func (s *Service) fromCache(ctx context.Context, key string) ([]entity.Product, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) && s.logger != nil {
			s.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var products []entity.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, false
	}
	return products, true
}

func (s *Service) toCache(ctx context.Context, key string, products []entity.Product) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil && s.logger != nil {
		s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
