package services

import (
	"context"
	"errors"
	"log"
	"market-distance-service/internal/domain"
	"market-distance-service/internal/platform/obs"
	"market-distance-service/internal/ports"
)

// RoadDistanceResolver wraps a distance-matrix provider so that callers only see
// a result or ok=false.
type RoadDistanceResolver struct {
	provider ports.RoadDistanceProvider
}

func NewRoadDistanceResolver(provider ports.RoadDistanceProvider) *RoadDistanceResolver {
	return &RoadDistanceResolver{provider: provider}
}

func (r *RoadDistanceResolver) Resolve(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (rd domain.RoadDistance, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("req_id=%s op=resolve_road_distance panic=%v", obs.RequestID(ctx), p)
			rd, ok = domain.RoadDistance{}, false
		}
	}()

	if r == nil || r.provider == nil {
		return domain.RoadDistance{}, false
	}

	rd, err := r.provider.RoadDistance(ctx, origin, destination)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("req_id=%s op=resolve_road_distance from=%s to=%s err=%v",
				obs.RequestID(ctx), origin, destination, err)
		}
		return domain.RoadDistance{}, false
	}
	if rd.Text == "" || rd.Miles < 0 {
		log.Printf("req_id=%s op=resolve_road_distance malformed=%+v", obs.RequestID(ctx), rd)
		return domain.RoadDistance{}, false
	}

	return rd, true
}
