package dto

import "github.com/kirana-labs/kirana/internal/entity"

// ProviderResponse is a provider profile as exposed via transport layers.
type ProviderResponse struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Pincode         string   `json:"pincode,omitempty"`
	Lat             *float64 `json:"lat,omitempty"`
	Lng             *float64 `json:"lng,omitempty"`
	ServiceRadiusKm int      `json:"service_radius_km"`
}

// SelectionResponse reports the provider chosen for a consumer location.
type SelectionResponse struct {
	Provider   ProviderResponse `json:"provider"`
	DistanceKm *float64         `json:"distance_km,omitempty"`
}

// ToProvider maps a provider entity onto its transport shape.
func ToProvider(p *entity.Provider) ProviderResponse {
	return ProviderResponse{
		ID:              p.ID,
		Name:            p.Name,
		Pincode:         p.Pincode,
		Lat:             p.Lat,
		Lng:             p.Lng,
		ServiceRadiusKm: p.ServiceRadiusKm,
	}
}
