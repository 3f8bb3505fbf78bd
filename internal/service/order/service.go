package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kirana-labs/kirana/internal/broadcast"
	"github.com/kirana-labs/kirana/internal/cache"
	"github.com/kirana-labs/kirana/internal/entity"
	"github.com/kirana-labs/kirana/internal/messaging"
	repo "github.com/kirana-labs/kirana/internal/repository/inventory"
	orderrepo "github.com/kirana-labs/kirana/internal/repository/order"
	"github.com/kirana-labs/kirana/internal/service/selector"
	"github.com/kirana-labs/kirana/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/kirana-labs/kirana/service/order")

// BundlePrefix marks a status-update reference that targets a whole bundle
// instead of a single line.
const BundlePrefix = "BUNDLE_"

// ProviderSelector picks the single provider a bundle is matched against.
type ProviderSelector interface {
	Select(ctx context.Context, q selector.Query) (*selector.Selection, error)
}

// BundleRepository is the persistence surface the orchestrator depends on.
type BundleRepository interface {
	PlaceBundle(ctx context.Context, consumerID int64, prov *entity.Provider, bundleID string, lines []repo.Line) ([]entity.OrderLine, []repo.Unavailable, error)
	UpdateLineStatus(ctx context.Context, lineID int64, status entity.Status, callerID int64) (*entity.OrderLine, error)
	UpdateBundleStatus(ctx context.Context, bundleID string, status entity.Status, callerID int64) ([]entity.OrderLine, error)
	ListByConsumer(ctx context.Context, consumerID int64) ([]entity.OrderLine, error)
	ListByProvider(ctx context.Context, providerID int64) ([]entity.OrderLine, error)
}

// Broadcaster is the in-process live-update hub.
type Broadcaster interface {
	Publish(event broadcast.Event)
}

// ItemRequest is one requested line, pre-normalization.
type ItemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

// Location carries the consumer's optional pincode and coordinates.
type Location struct {
	Pincode string   `json:"pincode"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

// PlacementResult reports a committed bundle.
type PlacementResult struct {
	BundleID     string   `json:"bundle_id"`
	OrderLineIDs []int64  `json:"order_line_ids"`
	ProviderID   int64    `json:"provider_id"`
	DistanceKm   *float64 `json:"distance_km,omitempty"`
}

// StatusUpdateResult reports which lines a status update touched.
type StatusUpdateResult struct {
	UpdatedLineIDs []int64 `json:"updated_line_ids"`
	Status         string  `json:"status"`
}

// messagingConfig contains the messaging knobs the service cares about.
type messagingConfig struct {
	enabled  bool
	producer string
}

// Service orchestrates bundle placement and status updates: it composes the
// selector and the ledger-backed repository, then notifies listeners. The
// committed order is the source of truth; notification is best-effort.
type Service struct {
	repo      BundleRepository
	selector  ProviderSelector
	hub       Broadcaster
	cache     cache.Store
	cacheTTL  time.Duration
	publisher messaging.Client
	messaging messagingConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a new order Service.
func NewService(bundles BundleRepository, sel ProviderSelector, hub Broadcaster, store cache.Store, publisher messaging.Client, cacheTTL time.Duration, msgEnabled bool, producer string, logger *zap.Logger) *Service {
	return &Service{
		repo:      bundles,
		selector:  sel,
		hub:       hub,
		cache:     store,
		cacheTTL:  cacheTTL,
		publisher: publisher,
		messaging: messagingConfig{enabled: msgEnabled, producer: producer},
		logger:    logger,
		now:       time.Now,
	}
}

// PlaceBundle matches the consumer's items to exactly one provider and
// atomically reserves stock for every line. Any invalid item aborts before
// selection; any unavailable item aborts before mutation and surfaces the
// complete unavailable list plus the provider that was attempted.
func (s *Service) PlaceBundle(ctx context.Context, consumerID int64, items []ItemRequest, loc Location) (*PlacementResult, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.PlaceBundle", trace.WithAttributes(
		attribute.Int64("consumer.id", consumerID),
		attribute.Int("items", len(items)),
	))
	defer span.End()

	lines, err := normalizeItems(items)
	if err != nil {
		span.SetStatus(codes.Error, "invalid items")
		return nil, err
	}

	sel, err := s.selector.Select(ctx, selector.Query{Pincode: loc.Pincode, Lat: loc.Lat, Lng: loc.Lng})
	if err != nil {
		return nil, err
	}
	prov := sel.Provider

	bundleID := fmt.Sprintf("%d-%d-A%d", s.now().UTC().UnixMilli(), consumerID, prov.ID)

	created, unavailable, err := s.repo.PlaceBundle(ctx, consumerID, &prov, bundleID, lines)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "placement failed")
		return nil, errorbank.Internal("failed to place bundle", errorbank.WithCause(err))
	}
	if len(unavailable) > 0 {
		span.SetStatus(codes.Error, "lines unavailable")
		opts := []errorbank.Option{
			errorbank.WithDetail("unavailable", unavailable),
			errorbank.WithDetail("provider_id", prov.ID),
			errorbank.WithDetail("provider_pincode", prov.Pincode),
		}
		if sel.DistanceKm != nil {
			opts = append(opts, errorbank.WithDetail("distance_km", *sel.DistanceKm))
		}
		return nil, errorbank.Conflict("some items are unavailable from the selected provider", opts...)
	}

	result := &PlacementResult{
		BundleID:   bundleID,
		ProviderID: prov.ID,
		DistanceKm: sel.DistanceKm,
	}
	for i := range created {
		result.OrderLineIDs = append(result.OrderLineIDs, created[i].ID)
		s.notify(ctx, broadcast.EventNewOrder, &created[i])
		s.cacheLineStatus(ctx, &created[i])
	}

	span.SetAttributes(attribute.String("bundle.id", bundleID), attribute.Int64("provider.id", prov.ID))
	return result, nil
}

// UpdateStatus transitions one line or, with a "BUNDLE_" reference, every line
// in the bundle the caller is authorized for. Unauthorized lines in a bundle
// are skipped without failing the call. The target must name a known status;
// progression order is deliberately not enforced.
func (s *Service) UpdateStatus(ctx context.Context, ref string, target string, callerID int64) (*StatusUpdateResult, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.UpdateStatus", trace.WithAttributes(
		attribute.String("order.ref", ref),
		attribute.String("status.target", target),
	))
	defer span.End()

	status, ok := entity.ParseStatus(target)
	if !ok {
		span.SetStatus(codes.Error, "unknown status")
		return nil, errorbank.BadRequest("unknown status", errorbank.WithDetail("status", target))
	}

	var updated []entity.OrderLine
	if bundleID, isBundle := strings.CutPrefix(ref, BundlePrefix); isBundle {
		lines, err := s.repo.UpdateBundleStatus(ctx, bundleID, status, callerID)
		if err != nil {
			return nil, s.mapRepoErr(span, err, "bundle not found")
		}
		updated = lines
	} else {
		lineID, err := strconv.ParseInt(strings.TrimSpace(ref), 10, 64)
		if err != nil {
			span.SetStatus(codes.Error, "invalid reference")
			return nil, errorbank.BadRequest("invalid order reference", errorbank.WithCause(err))
		}
		line, err := s.repo.UpdateLineStatus(ctx, lineID, status, callerID)
		if err != nil {
			return nil, s.mapRepoErr(span, err, "order line not found")
		}
		updated = []entity.OrderLine{*line}
	}

	result := &StatusUpdateResult{Status: string(status)}
	for i := range updated {
		result.UpdatedLineIDs = append(result.UpdatedLineIDs, updated[i].ID)
		s.notify(ctx, broadcast.EventStatusUpdate, &updated[i])
		s.cacheLineStatus(ctx, &updated[i])
	}
	return result, nil
}

// ListConsumerOrders returns the caller's own order lines.
func (s *Service) ListConsumerOrders(ctx context.Context, consumerID int64) ([]entity.OrderLine, error) {
	lines, err := s.repo.ListByConsumer(ctx, consumerID)
	if err != nil {
		return nil, errorbank.Internal("failed to load orders", errorbank.WithCause(err))
	}
	return lines, nil
}

// ListProviderOrders returns the lines assigned to or owned by the provider.
func (s *Service) ListProviderOrders(ctx context.Context, providerID int64) ([]entity.OrderLine, error) {
	lines, err := s.repo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, errorbank.Internal("failed to load orders", errorbank.WithCause(err))
	}
	return lines, nil
}

func (s *Service) mapRepoErr(span trace.Span, err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, orderrepo.ErrNotFound):
		span.SetStatus(codes.Error, "not found")
		return errorbank.NotFound(notFoundMsg)
	case errors.Is(err, orderrepo.ErrUnauthorized):
		span.SetStatus(codes.Error, "unauthorized")
		return errorbank.Unauthorized("caller may not update this order")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("status update failed", errorbank.WithCause(err))
	}
}

// normalizeItems validates and normalizes every requested item, collecting the
// complete problem set so the caller fixes everything in one round-trip.
func normalizeItems(items []ItemRequest) ([]repo.Line, error) {
	if len(items) == 0 {
		return nil, errorbank.BadRequest("cart is empty")
	}

	lines := make([]repo.Line, 0, len(items))
	var invalid []map[string]any
	for i, item := range items {
		name := strings.TrimSpace(item.Name)
		category, catOK := entity.ParseCategory(item.Category)

		var reasons []string
		if name == "" {
			reasons = append(reasons, "name is required")
		}
		if !catOK {
			reasons = append(reasons, "category not allowed")
		}
		if item.Quantity < 1 {
			reasons = append(reasons, "quantity must be >= 1")
		}
		if len(reasons) > 0 {
			invalid = append(invalid, map[string]any{
				"index":   i,
				"name":    item.Name,
				"reasons": reasons,
			})
			continue
		}

		lines = append(lines, repo.Line{Name: name, Category: category, Quantity: item.Quantity})
	}
	if len(invalid) > 0 {
		return nil, errorbank.BadRequest("invalid line items", errorbank.WithDetail("invalid", invalid))
	}
	return lines, nil
}

// notify fans a line event out to the in-process hub and the message bus.
// Failures are logged and swallowed: the committed order is authoritative and
// independent of notification delivery.
func (s *Service) notify(ctx context.Context, eventType string, line *entity.OrderLine) {
	event := broadcast.Event{
		Type:        eventType,
		OrderLineID: line.ID,
		BundleID:    line.BundleID,
		Status:      string(line.Status),
		ProviderID:  line.AssignedProviderID,
		ConsumerID:  line.ConsumerID,
	}

	if s.hub != nil {
		s.hub.Publish(event)
	}

	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal order event", zap.Error(err))
		}
		return
	}
	envelope, err := json.Marshal(NewEnvelope(eventType, s.messaging.producer, payload))
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal event envelope", zap.Error(err))
		}
		return
	}
	// Key by bundle id so one bundle's events stay ordered per partition.
	if err := s.publisher.Publish(ctx, []byte(line.BundleID), envelope); err != nil {
		if s.logger != nil {
			s.logger.Warn("publish order event", zap.Error(err), zap.Int64("order_line_id", line.ID))
		}
	}
}

func (s *Service) cacheLineStatus(ctx context.Context, line *entity.OrderLine) {
	if s.cache == nil {
		return
	}
	value, err := json.Marshal(map[string]string{
		"status":     string(line.Status),
		"updated_at": line.UpdatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, StatusCacheKey(line.ID), value, s.cacheTTL); err != nil {
		if s.logger != nil {
			s.logger.Warn("order status cache write failed", zap.Int64("order_line_id", line.ID), zap.Error(err))
		}
	}
}

// StatusCacheKey is the cache key for an order line's last known status.
func StatusCacheKey(lineID int64) string {
	return fmt.Sprintf("orders:status:%d", lineID)
}
