package selector

import (
	"context"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kirana-labs/kirana/internal/entity"
	"github.com/kirana-labs/kirana/internal/geo"
	"github.com/kirana-labs/kirana/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/kirana-labs/kirana/service/selector")

// ProviderLister is the registry view consumed by selection.
type ProviderLister interface {
	ListProviders(ctx context.Context) ([]entity.Provider, error)
}

// Query carries the consumer's location hints. All fields are optional.
type Query struct {
	Pincode string
	Lat     *float64
	Lng     *float64
}

// HasGPS reports whether both consumer coordinates are present.
func (q Query) HasGPS() bool {
	return q.Lat != nil && q.Lng != nil
}

// Selection is the chosen provider plus the computed distance when both sides
// had coordinates, rounded to 3 decimal places.
type Selection struct {
	Provider   entity.Provider
	DistanceKm *float64
}

// Service picks at most one provider per request: greedy, single-pass,
// deterministic. No consideration of provider load or inventory at selection
// time; determinism and O(providers) cost win over global optimality.
type Service struct {
	registry        ProviderLister
	defaultRadiusKm int
	logger          *zap.Logger
}

// NewService wires the selector.
func NewService(registry ProviderLister, defaultRadiusKm int, logger *zap.Logger) *Service {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = entity.DefaultServiceRadiusKm
	}
	return &Service{
		registry:        registry,
		defaultRadiusKm: defaultRadiusKm,
		logger:          logger,
	}
}

// rank is the per-candidate sort key. No sentinel distances: an absent
// distance is an explicit flag that sorts after any real one.
type rank struct {
	provider    entity.Provider
	outOfRadius bool
	distanceKm  float64
	hasDistance bool
}

func (a rank) less(b rank) bool {
	if a.outOfRadius != b.outOfRadius {
		return !a.outOfRadius
	}
	if a.hasDistance != b.hasDistance {
		return a.hasDistance
	}
	if a.hasDistance && a.distanceKm != b.distanceKm {
		return a.distanceKm < b.distanceKm
	}
	return a.provider.ID < b.provider.ID
}

// Select picks the provider for the query, or NotFound when no provider
// exists. Same-pincode providers are preferred; candidates are ranked by
// (out-of-radius, distance, id). When the preferred pick sits outside its own
// radius and the consumer supplied GPS, the whole pool is re-scanned for any
// provider within its radius, so an unreachable same-pincode shop never beats
// a reachable one elsewhere.
func (s *Service) Select(ctx context.Context, q Query) (*Selection, error) {
	ctx, span := serviceTracer.Start(ctx, "ProviderSelector.Select", trace.WithAttributes(
		attribute.String("pincode", q.Pincode),
		attribute.Bool("gps", q.HasGPS()),
	))
	defer span.End()

	pool, err := s.registry.ListProviders(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "registry read failed")
		return nil, errorbank.Internal("failed to load providers", errorbank.WithCause(err))
	}
	if len(pool) == 0 {
		span.SetStatus(codes.Error, "no providers")
		return nil, errorbank.NotFound("no provider available for this area")
	}

	ranks := make([]rank, 0, len(pool))
	for _, p := range pool {
		ranks = append(ranks, s.rankOf(q, p))
	}

	preferred := ranks
	if pin := strings.TrimSpace(q.Pincode); pin != "" {
		matched := make([]rank, 0, len(ranks))
		for _, r := range ranks {
			if strings.TrimSpace(r.provider.Pincode) == pin {
				matched = append(matched, r)
			}
		}
		if len(matched) > 0 {
			preferred = matched
		}
	}

	sort.Slice(preferred, func(i, j int) bool { return preferred[i].less(preferred[j]) })
	chosen := preferred[0]

	// Escape valve: an out-of-radius pick loses to any provider anywhere in
	// the pool that is within its own radius.
	if chosen.outOfRadius && q.HasGPS() {
		if alt, ok := nearestInRadius(ranks); ok {
			chosen = alt
		}
	}

	sel := &Selection{Provider: chosen.provider}
	if q.HasGPS() && chosen.hasDistance {
		d := geo.RoundKm(chosen.distanceKm)
		sel.DistanceKm = &d
	}

	if s.logger != nil {
		s.logger.Debug("provider selected",
			zap.Int64("provider_id", chosen.provider.ID),
			zap.Bool("out_of_radius", chosen.outOfRadius),
		)
	}
	span.SetAttributes(attribute.Int64("provider.id", chosen.provider.ID))
	return sel, nil
}

func (s *Service) rankOf(q Query, p entity.Provider) rank {
	r := rank{provider: p}
	r.distanceKm, r.hasDistance = geo.Between(q.Lat, q.Lng, p.Lat, p.Lng)

	// Radius is only enforceable when the consumer supplied GPS and the
	// provider has a location; without either, selection degrades to
	// same-pincode-first, then lowest id.
	if q.HasGPS() && r.hasDistance {
		r.outOfRadius = r.distanceKm > float64(s.radiusOf(p))
	}
	return r
}

func (s *Service) radiusOf(p entity.Provider) int {
	if p.ServiceRadiusKm > 0 {
		return p.ServiceRadiusKm
	}
	return s.defaultRadiusKm
}

// nearestInRadius scans the full pool for the closest provider within its own
// radius, ties broken by id.
func nearestInRadius(ranks []rank) (rank, bool) {
	var best rank
	found := false
	for _, r := range ranks {
		if r.outOfRadius || !r.hasDistance {
			continue
		}
		if !found || r.less(best) {
			best = r
			found = true
		}
	}
	return best, found
}
