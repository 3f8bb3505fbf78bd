package dto

import (
	"time"

	"github.com/kirana-labs/kirana/internal/entity"
)

// OrderLineResponse is one order line as exposed via transport layers.
type OrderLineResponse struct {
	ID                 int64            `json:"id"`
	ConsumerID         int64            `json:"consumer_id"`
	Quantity           int              `json:"quantity"`
	Status             string           `json:"status"`
	AssignedProviderID int64            `json:"assigned_provider_id"`
	BundleID           string           `json:"bundle_id"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at,omitempty"`
	Product            *ProductResponse `json:"product,omitempty"`
}

// ToOrderLine maps an order line entity onto its transport shape.
func ToOrderLine(line *entity.OrderLine) OrderLineResponse {
	resp := OrderLineResponse{
		ID:                 line.ID,
		ConsumerID:         line.ConsumerID,
		Quantity:           line.Quantity,
		Status:             string(line.Status),
		AssignedProviderID: line.AssignedProviderID,
		BundleID:           line.BundleID,
		CreatedAt:          line.CreatedAt,
		UpdatedAt:          line.UpdatedAt,
	}
	if line.Product != nil {
		product := ToProduct(line.Product)
		resp.Product = &product
	}
	return resp
}

// ToOrderLines maps an order line slice onto transport shapes.
func ToOrderLines(lines []entity.OrderLine) []OrderLineResponse {
	out := make([]OrderLineResponse, 0, len(lines))
	for i := range lines {
		out = append(out, ToOrderLine(&lines[i]))
	}
	return out
}
