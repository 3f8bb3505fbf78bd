package geo

import (
	"math"
	"testing"
)

func TestDistanceKm(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64
		tolerance              float64
	}{
		{"same point", 13.0827, 80.2707, 13.0827, 80.2707, 0, 0.001},
		{"chennai to bangalore", 13.0827, 80.2707, 12.9716, 77.5946, 290.2, 2},
		{"equator degree of longitude", 0, 0, 0, 1, 111.19, 0.2},
		{"across the antimeridian", 0, 179.5, 0, -179.5, 111.19, 0.2},
	}

	for _, tc := range cases {
		got := DistanceKm(tc.lat1, tc.lng1, tc.lat2, tc.lng2)
		if math.Abs(got-tc.want) > tc.tolerance {
			t.Errorf("%s: got %.3f km, want %.3f km (+-%.3f)", tc.name, got, tc.want, tc.tolerance)
		}
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := DistanceKm(13.0827, 80.2707, 12.9716, 77.5946)
	b := DistanceKm(12.9716, 77.5946, 13.0827, 80.2707)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("distance is not symmetric: %v vs %v", a, b)
	}
}

func TestBetweenMissingCoordinates(t *testing.T) {
	lat := 13.0827
	lng := 80.2707

	if _, ok := Between(nil, &lng, &lat, &lng); ok {
		t.Fatalf("expected no distance when first latitude is absent")
	}
	if _, ok := Between(&lat, &lng, &lat, nil); ok {
		t.Fatalf("expected no distance when second longitude is absent")
	}
	if d, ok := Between(&lat, &lng, &lat, &lng); !ok || d != 0 {
		t.Fatalf("expected zero distance for identical points, got %v ok=%v", d, ok)
	}
}

func TestRoundKm(t *testing.T) {
	if got := RoundKm(12.34567); got != 12.346 {
		t.Fatalf("RoundKm(12.34567) = %v, want 12.346", got)
	}
	if got := RoundKm(0.0004); got != 0 {
		t.Fatalf("RoundKm(0.0004) = %v, want 0", got)
	}
}
