package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirana-labs/kirana/internal/cache"
	"github.com/kirana-labs/kirana/internal/entity"
	"github.com/kirana-labs/kirana/pkg/errorbank"
)

type fakeCatalog struct {
	products []entity.Product
	err      error
	calls    int
}

func (f *fakeCatalog) ListByProvider(ctx context.Context, providerID int64, category *entity.Category) ([]entity.Product, error) {
	f.calls++
	return f.products, f.err
}

func (f *fakeCatalog) ListByPincode(ctx context.Context, pincode string, category *entity.Category) ([]entity.Product, error) {
	f.calls++
	return f.products, f.err
}

type mapStore struct {
	data map[string][]byte
}

func (m *mapStore) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, cache.ErrCacheMiss
}

func (m *mapStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = value
	return nil
}

func (m *mapStore) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func TestListByProviderCachesResult(t *testing.T) {
	source := &fakeCatalog{products: []entity.Product{{ID: 1, Name: "Rice", Category: entity.CategoryCereals, Stock: 5}}}
	svc := NewService(source, &mapStore{}, time.Minute, nil)

	for i := 0; i < 3; i++ {
		products, err := svc.ListByProvider(context.Background(), 42, "cereals")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(products) != 1 || products[0].Name != "Rice" {
			t.Fatalf("unexpected products %+v", products)
		}
	}
	if source.calls != 1 {
		t.Fatalf("expected a single repository read, got %d", source.calls)
	}
}

func TestListByProviderRejectsUnknownCategory(t *testing.T) {
	source := &fakeCatalog{}
	svc := NewService(source, &mapStore{}, time.Minute, nil)

	_, err := svc.ListByProvider(context.Background(), 42, "dairy")
	var appErr *errorbank.AppError
	if !errors.As(err, &appErr) || appErr.Kind() != errorbank.KindBadRequest {
		t.Fatalf("expected bad_request, got %v", err)
	}
	if source.calls != 0 {
		t.Fatalf("repository must not be read for an invalid category")
	}
}

func TestListByProviderAllBypassesFilter(t *testing.T) {
	source := &fakeCatalog{}
	svc := NewService(source, &mapStore{}, time.Minute, nil)

	if _, err := svc.ListByProvider(context.Background(), 42, "all"); err != nil {
		t.Fatalf("list all: %v", err)
	}
	if _, err := svc.ListByProvider(context.Background(), 42, ""); err != nil {
		t.Fatalf("list empty: %v", err)
	}
	// "" and "all" share a cache key.
	if source.calls != 1 {
		t.Fatalf("expected one repository read, got %d", source.calls)
	}
}

func TestListByPincodeRequiresPincode(t *testing.T) {
	svc := NewService(&fakeCatalog{}, &mapStore{}, time.Minute, nil)
	_, err := svc.ListByPincode(context.Background(), "  ", "all")
	var appErr *errorbank.AppError
	if !errors.As(err, &appErr) || appErr.Kind() != errorbank.KindBadRequest {
		t.Fatalf("expected bad_request, got %v", err)
	}
}

func TestListByPincodeRepositoryError(t *testing.T) {
	svc := NewService(&fakeCatalog{err: errors.New("down")}, &mapStore{}, time.Minute, nil)
	_, err := svc.ListByPincode(context.Background(), "600001", "fruits")
	var appErr *errorbank.AppError
	if !errors.As(err, &appErr) || appErr.Kind() != errorbank.KindInternal {
		t.Fatalf("expected internal, got %v", err)
	}
}
