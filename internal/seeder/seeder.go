package seeder

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/kirana-labs/kirana/internal/database"
	"github.com/kirana-labs/kirana/internal/entity"
)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{db: conns.Writer, logger: logger}
}

func ptr[T any](v T) *T { return &v }

// Providers seeds a handful of shops around Chennai pincodes if they are
// missing. One shop deliberately has no coordinates and one has a widened
// service radius, so selection edge cases are reproducible locally.
func (s *Seeder) Providers(ctx context.Context) error {
	now := time.Now().UTC()
	samples := []entity.Provider{
		{
			Name: "Annachi Stores T. Nagar", Email: "tnagar@kirana.local", Role: entity.RoleProvider,
			Pincode: "600017", Lat: ptr(13.0418), Lng: ptr(80.2341), ServiceRadiusKm: entity.DefaultServiceRadiusKm,
			CreatedAt: now, UpdatedAt: now,
		},
		{
			Name: "Mylapore Provision Mart", Email: "mylapore@kirana.local", Role: entity.RoleProvider,
			Pincode: "600004", Lat: ptr(13.0339), Lng: ptr(80.2676), ServiceRadiusKm: entity.DefaultServiceRadiusKm,
			CreatedAt: now, UpdatedAt: now,
		},
		{
			Name: "Velachery Daily Needs", Email: "velachery@kirana.local", Role: entity.RoleProvider,
			Pincode: "600042", Lat: ptr(12.9815), Lng: ptr(80.2180), ServiceRadiusKm: 12,
			CreatedAt: now, UpdatedAt: now,
		},
		{
			Name: "Adyar Corner Shop", Email: "adyar@kirana.local", Role: entity.RoleProvider,
			Pincode: "600020", ServiceRadiusKm: entity.DefaultServiceRadiusKm,
			CreatedAt: now, UpdatedAt: now,
		},
	}

	for _, sample := range samples {
		prov := sample
		_, err := s.db.NewInsert().Model(&prov).
			On("CONFLICT (email) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded providers", zap.Int("count", len(samples)))
	}
	return nil
}

// Products stocks every seeded provider with a starter catalog covering all
// three categories.
func (s *Seeder) Products(ctx context.Context) error {
	now := time.Now().UTC()

	var providers []entity.Provider
	err := s.db.NewSelect().Model(&providers).
		Where("role = ?", entity.RoleProvider).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return err
	}

	catalog := []struct {
		name     string
		category entity.Category
		mrp      int64
		price    int64
		stock    int
	}{
		{"Rice", entity.CategoryCereals, 8000, 7200, 50},
		{"Wheat Flour", entity.CategoryCereals, 6000, 5500, 40},
		{"Banana", entity.CategoryFruits, 6000, 5000, 60},
		{"Mango", entity.CategoryFruits, 12000, 11000, 25},
		{"Tomato", entity.CategoryVegetables, 4000, 3200, 80},
		{"Onion", entity.CategoryVegetables, 4500, 3800, 70},
	}

	count := 0
	for _, prov := range providers {
		for _, item := range catalog {
			product := entity.Product{
				ProviderID: prov.ID,
				Name:       item.name,
				Category:   item.category,
				MRPCents:   item.mrp,
				PriceCents: item.price,
				Stock:      item.stock,
				Pincode:    prov.Pincode,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			_, err := s.db.NewInsert().Model(&product).
				On("CONFLICT (provider_id, name, category) DO NOTHING").
				Exec(ctx)
			if err != nil {
				return err
			}
			count++
		}
	}

	if s.logger != nil {
		s.logger.Info("seeded products", zap.Int("count", count))
	}
	return nil
}

// All runs every seeder in dependency order.
func (s *Seeder) All(ctx context.Context) error {
	if err := s.Providers(ctx); err != nil {
		return err
	}
	return s.Products(ctx)
}
