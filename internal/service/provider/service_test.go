package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/kirana-labs/kirana/internal/entity"
	providerrepo "github.com/kirana-labs/kirana/internal/repository/provider"
	"github.com/kirana-labs/kirana/pkg/errorbank"
)

type fakeRegistry struct {
	provider *entity.Provider
	err      error
	updated  *providerrepo.LocationUpdate
}

func (f *fakeRegistry) GetByID(ctx context.Context, id int64) (*entity.Provider, error) {
	return f.provider, f.err
}

func (f *fakeRegistry) UpdateLocation(ctx context.Context, id int64, upd providerrepo.LocationUpdate) (*entity.Provider, error) {
	f.updated = &upd
	if f.err != nil {
		return nil, f.err
	}
	return f.provider, nil
}

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }
func sptr(v string) *string   { return &v }

func kindOf(t *testing.T, err error) errorbank.Kind {
	t.Helper()
	var appErr *errorbank.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	return appErr.Kind()
}

func TestUpdateLocationValidation(t *testing.T) {
	svc := NewService(&fakeRegistry{}, nil)

	cases := []struct {
		name  string
		input LocationInput
	}{
		{"latitude too large", LocationInput{Lat: fptr(91)}},
		{"longitude too small", LocationInput{Lng: fptr(-181)}},
		{"negative radius", LocationInput{ServiceRadiusKm: iptr(-1)}},
	}
	for _, tc := range cases {
		if _, err := svc.UpdateLocation(context.Background(), 1, tc.input); kindOf(t, err) != errorbank.KindBadRequest {
			t.Errorf("%s: expected bad_request, got %v", tc.name, err)
		}
	}
}

func TestUpdateLocationTrimsPincode(t *testing.T) {
	registry := &fakeRegistry{provider: &entity.Provider{ID: 1, Role: entity.RoleProvider}}
	svc := NewService(registry, nil)

	if _, err := svc.UpdateLocation(context.Background(), 1, LocationInput{Pincode: sptr(" 600001 ")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if registry.updated == nil || registry.updated.Pincode == nil || *registry.updated.Pincode != "600001" {
		t.Fatalf("pincode not trimmed: %+v", registry.updated)
	}
}

func TestUpdateLocationNotFound(t *testing.T) {
	svc := NewService(&fakeRegistry{err: providerrepo.ErrNotFound}, nil)
	_, err := svc.UpdateLocation(context.Background(), 404, LocationInput{ServiceRadiusKm: iptr(8)})
	if kindOf(t, err) != errorbank.KindNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}
