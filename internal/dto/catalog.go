package dto

import "github.com/kirana-labs/kirana/internal/entity"

// ProductResponse is a catalog row as exposed via transport layers.
type ProductResponse struct {
	ID         int64  `json:"id"`
	ProviderID int64  `json:"provider_id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	MRPCents   int64  `json:"mrp_cents"`
	PriceCents int64  `json:"price_cents"`
	Stock      int    `json:"stock"`
	Pincode    string `json:"pincode,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	TotalSold  int64  `json:"total_sold"`
}

// ToProduct maps a product entity onto its transport shape.
func ToProduct(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID,
		ProviderID: p.ProviderID,
		Name:       p.Name,
		Category:   string(p.Category),
		MRPCents:   p.MRPCents,
		PriceCents: p.PriceCents,
		Stock:      p.Stock,
		Pincode:    p.Pincode,
		ImageURL:   p.ImageURL,
		TotalSold:  p.TotalSold,
	}
}

// ToProducts maps a product slice onto transport shapes.
func ToProducts(products []entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, ToProduct(&products[i]))
	}
	return out
}
