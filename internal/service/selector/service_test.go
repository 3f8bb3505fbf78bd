package selector

import (
	"context"
	"errors"
	"testing"

	"github.com/kirana-labs/kirana/internal/entity"
	"github.com/kirana-labs/kirana/pkg/errorbank"
)

type staticRegistry struct {
	providers []entity.Provider
	err       error
}

func (r staticRegistry) ListProviders(context.Context) ([]entity.Provider, error) {
	return r.providers, r.err
}

func ptr(v float64) *float64 { return &v }

func shop(id int64, pincode string, lat, lng *float64, radiusKm int) entity.Provider {
	return entity.Provider{
		ID:              id,
		Role:            entity.RoleProvider,
		Pincode:         pincode,
		Lat:             lat,
		Lng:             lng,
		ServiceRadiusKm: radiusKm,
	}
}

func mustSelect(t *testing.T, svc *Service, q Query) *Selection {
	t.Helper()
	sel, err := svc.Select(context.Background(), q)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	return sel
}

func TestSelectEmptyPool(t *testing.T) {
	svc := NewService(staticRegistry{}, 5, nil)
	_, err := svc.Select(context.Background(), Query{Pincode: "600001"})
	var appErr *errorbank.AppError
	if !errors.As(err, &appErr) || appErr.Kind() != errorbank.KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestSelectPrefersSamePincode(t *testing.T) {
	// The far same-pincode shop wins over the near different-pincode shop
	// as long as it stays within its own radius.
	same := shop(2, "600001", ptr(13.00), ptr(80.20), 50)
	near := shop(1, "600042", ptr(13.081), ptr(80.271), 50)
	svc := NewService(staticRegistry{providers: []entity.Provider{near, same}}, 5, nil)

	sel := mustSelect(t, svc, Query{Pincode: "600001", Lat: ptr(13.0827), Lng: ptr(80.2707)})
	if sel.Provider.ID != 2 {
		t.Fatalf("selected provider %d, want same-pincode provider 2", sel.Provider.ID)
	}
	if sel.DistanceKm == nil {
		t.Fatalf("expected a computed distance")
	}
}

func TestSelectEscapeValveOutOfRadius(t *testing.T) {
	// Same-pincode shop is outside its own radius; a reachable shop under a
	// different pincode must win instead.
	samePinFar := shop(1, "600001", ptr(13.50), ptr(80.90), 5)
	otherPinNear := shop(2, "600042", ptr(13.085), ptr(80.272), 10)
	svc := NewService(staticRegistry{providers: []entity.Provider{samePinFar, otherPinNear}}, 5, nil)

	sel := mustSelect(t, svc, Query{Pincode: "600001", Lat: ptr(13.0827), Lng: ptr(80.2707)})
	if sel.Provider.ID != 2 {
		t.Fatalf("selected provider %d, want in-radius provider 2", sel.Provider.ID)
	}
}

func TestSelectNeverPicksOutOfRadiusWhenAnyInRadiusExists(t *testing.T) {
	pool := []entity.Provider{
		shop(1, "600001", ptr(14.0), ptr(81.0), 5),    // far, out of radius
		shop(2, "600002", ptr(13.09), ptr(80.28), 10), // in radius
		shop(3, "600003", ptr(13.20), ptr(80.40), 2),  // out of its small radius
	}
	svc := NewService(staticRegistry{providers: pool}, 5, nil)

	sel := mustSelect(t, svc, Query{Pincode: "600001", Lat: ptr(13.0827), Lng: ptr(80.2707)})
	if sel.Provider.ID != 2 {
		t.Fatalf("selected provider %d, want the only in-radius provider 2", sel.Provider.ID)
	}
}

func TestSelectWithoutGPSDegradesToPincodeThenID(t *testing.T) {
	pool := []entity.Provider{
		shop(3, "600042", ptr(13.0), ptr(80.2), 5),
		shop(2, "600001", nil, nil, 5),
		shop(1, "600001", ptr(13.5), ptr(80.9), 5),
	}
	svc := NewService(staticRegistry{providers: pool}, 5, nil)

	// No GPS: radius is unenforceable and no candidate has a distance, so
	// selection degrades to same-pincode-first, then lowest id.
	sel := mustSelect(t, svc, Query{Pincode: "600001"})
	if sel.Provider.ID != 1 {
		t.Fatalf("selected provider %d, want lowest-id same-pincode provider 1", sel.Provider.ID)
	}
	if sel.DistanceKm != nil {
		t.Fatalf("expected no distance without consumer GPS")
	}

	// No GPS, no matching pincode: lowest id from the whole pool.
	sel = mustSelect(t, svc, Query{Pincode: "999999"})
	if sel.Provider.ID != 1 {
		t.Fatalf("selected provider %d, want 1", sel.Provider.ID)
	}
}

func TestSelectProviderWithoutCoordinatesStillSelectableByPincode(t *testing.T) {
	pool := []entity.Provider{shop(7, "600001", nil, nil, 5)}
	svc := NewService(staticRegistry{providers: pool}, 5, nil)

	sel := mustSelect(t, svc, Query{Pincode: "600001", Lat: ptr(13.0827), Lng: ptr(80.2707)})
	if sel.Provider.ID != 7 {
		t.Fatalf("selected provider %d, want 7", sel.Provider.ID)
	}
	if sel.DistanceKm != nil {
		t.Fatalf("expected no distance for a provider without coordinates")
	}
}

func TestSelectDeterministicTieBreak(t *testing.T) {
	loc := func() (*float64, *float64) { return ptr(13.0827), ptr(80.2707) }
	lat1, lng1 := loc()
	lat2, lng2 := loc()
	pool := []entity.Provider{
		shop(9, "600001", lat2, lng2, 10),
		shop(4, "600001", lat1, lng1, 10),
	}
	svc := NewService(staticRegistry{providers: pool}, 5, nil)

	for i := 0; i < 5; i++ {
		sel := mustSelect(t, svc, Query{Pincode: "600001", Lat: ptr(13.0827), Lng: ptr(80.2707)})
		if sel.Provider.ID != 4 {
			t.Fatalf("tie must break on lowest id, got %d", sel.Provider.ID)
		}
	}
}

func TestSelectDefaultRadiusApplied(t *testing.T) {
	// Radius 0 falls back to the configured default; 8 km away with a 10 km
	// default keeps the provider reachable.
	p := shop(1, "600001", ptr(13.1547), ptr(80.2707), 0)
	svc := NewService(staticRegistry{providers: []entity.Provider{p}}, 10, nil)

	sel := mustSelect(t, svc, Query{Lat: ptr(13.0827), Lng: ptr(80.2707)})
	if sel.Provider.ID != 1 {
		t.Fatalf("selected provider %d, want 1", sel.Provider.ID)
	}
	if sel.DistanceKm == nil || *sel.DistanceKm < 7 || *sel.DistanceKm > 9 {
		t.Fatalf("distance = %v, want ~8 km", sel.DistanceKm)
	}
}

func TestSelectRegistryError(t *testing.T) {
	svc := NewService(staticRegistry{err: errors.New("connection refused")}, 5, nil)
	_, err := svc.Select(context.Background(), Query{})
	var appErr *errorbank.AppError
	if !errors.As(err, &appErr) || appErr.Kind() != errorbank.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}
