package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// RoleProvider marks rows that participate in provider selection. Consumers
// share the table but are never selectable.
const (
	RoleProvider = "provider"
	RoleConsumer = "consumer"
)

// DefaultServiceRadiusKm applies when a provider row carries no explicit radius.
const DefaultServiceRadiusKm = 5

// Provider is a local fulfilment shop with an optional location and a service
// radius. A provider without coordinates is unreachable by distance but remains
// selectable through an exact pincode match.
type Provider struct {
	bun.BaseModel `bun:"table:providers"`

	ID              int64     `bun:",pk,autoincrement"`
	Name            string    `bun:"name"`
	Email           string    `bun:"email"`
	Role            string    `bun:"role"`
	Pincode         string    `bun:"pincode,nullzero"`
	Lat             *float64  `bun:"lat"`
	Lng             *float64  `bun:"lng"`
	ServiceRadiusKm int       `bun:"service_radius_km"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero"`
}

// HasCoordinates reports whether the provider has a usable location.
func (p *Provider) HasCoordinates() bool {
	return p != nil && p.Lat != nil && p.Lng != nil
}
