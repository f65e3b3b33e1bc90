package ports

import (
	"context"
	"market-distance-service/internal/domain"
)

// Free-text place search, optionally biased toward a location.
type PlaceSearcher interface {
	SearchPlaces(ctx context.Context, query string, bias *domain.Coordinates) ([]domain.Place, error)
}
