package entity

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Status is an order line's lifecycle state. The nominal progression is
// Pending -> Packed -> Delivered; progression order is not enforced, only
// membership in the closed set.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusPacked    Status = "Packed"
	StatusDelivered Status = "Delivered"
)

var statuses = map[Status]struct{}{
	StatusPending:   {},
	StatusPacked:    {},
	StatusDelivered: {},
}

// ParseStatus normalizes raw input and reports whether it names a known status.
func ParseStatus(raw string) (Status, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	s := Status(strings.ToUpper(trimmed[:1]) + strings.ToLower(trimmed[1:]))
	_, ok := statuses[s]
	return s, ok
}

// OrderLine is one product/quantity commitment within a bundle. The assigned
// provider is set at creation and immutable afterwards; lines are never
// deleted, only transitioned by status updates.
type OrderLine struct {
	bun.BaseModel `bun:"table:order_lines,alias:order_line"`

	ID                 int64     `bun:",pk,autoincrement"`
	ConsumerID         int64     `bun:"consumer_id"`
	ProductID          int64     `bun:"product_id"`
	Quantity           int       `bun:"quantity"`
	Status             Status    `bun:"status"`
	AssignedProviderID int64     `bun:"assigned_provider_id"`
	BundleID           string    `bun:"bundle_id"`
	CreatedAt          time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time `bun:"updated_at,nullzero"`

	Product *Product `bun:"rel:belongs-to,join:product_id=id"`
}
