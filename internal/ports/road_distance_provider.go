package ports

import (
	"context"
	"market-distance-service/internal/domain"
)

// Contract for retrieving the driving distance between two coordinates.
type RoadDistanceProvider interface {
	RoadDistance(ctx context.Context, origin, destination domain.Coordinates) (domain.RoadDistance, error)
}
