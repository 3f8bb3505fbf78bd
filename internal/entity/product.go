package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Product is a catalog row owned by exactly one provider. Identity within a
// provider's catalog is (name, category, pincode); stock is mutated only by the
// inventory ledger, price and listing by the external catalog collaborator.
type Product struct {
	bun.BaseModel `bun:"table:products"`

	ID         int64     `bun:",pk,autoincrement"`
	ProviderID int64     `bun:"provider_id"`
	Name       string    `bun:"name"`
	Category   Category  `bun:"category"`
	MRPCents   int64     `bun:"mrp_cents"`
	PriceCents int64     `bun:"price_cents"`
	Stock      int       `bun:"stock"`
	Pincode    string    `bun:"pincode,nullzero"`
	ImageURL   string    `bun:"image_url,nullzero"`
	TotalSold  int64     `bun:"total_sold"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero"`
}
