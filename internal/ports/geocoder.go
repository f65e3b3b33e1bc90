package ports

import (
	"context"
	"market-distance-service/internal/domain"
)

// Contract for turning a free-text address into coordinates.
type Geocoder interface {
	// Return coordinates for the address, or domain.ErrGeocodeNotFound when there is no match.
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}

// Persistent address -> coordinates cache consulted before geocoding.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
