package ports

import (
	"context"
	"donation-route-service/internal/domain"
)

// Contract for resolving a street address into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}

// Optional extension of Geocoder that supports batched lookups.
type BatchGeocoder interface {
	Geocoder
	// Resolve many addresses at once. Addresses that cannot be resolved are
	// absent from the result; keys are the addresses exactly as given.
	GeocodeMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
}

// Persistent address -> coordinates cache used by geocoders.
// Keys are expected to be normalized by the caller.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
