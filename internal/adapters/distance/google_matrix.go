package distance

import (
	"context"
	"fmt"
	"market-distance-service/internal/domain"
	"market-distance-service/internal/platform/obs"

	"googlemaps.github.io/maps"
)

// RoadDistance asks the Distance Matrix API for a single driving leg in imperial units.
// The label is the service's own text ("3.2 mi").
func (g *GoogleMapsProvider) RoadDistance(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (_ domain.RoadDistance, err error) {
	defer obs.Time(ctx, "google.RoadDistance")(&err)

	resp, err := g.client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      []string{origin.String()},
		Destinations: []string{destination.String()},
		Mode:         maps.TravelModeDriving,
		Units:        maps.UnitsImperial,
	})
	if err != nil {
		return domain.RoadDistance{}, fmt.Errorf("distance matrix: %w", err)
	}

	if len(resp.Rows) != 1 || len(resp.Rows[0].Elements) != 1 {
		return domain.RoadDistance{}, fmt.Errorf("distance matrix: expected 1x1 response, got %d rows", len(resp.Rows))
	}

	el := resp.Rows[0].Elements[0]
	if el == nil {
		return domain.RoadDistance{}, fmt.Errorf("distance matrix: empty element: %w", domain.ErrRoadDistanceUnavailable)
	}
	if el.Status != "OK" {
		return domain.RoadDistance{}, fmt.Errorf("distance matrix: element status %s: %w", el.Status, domain.ErrRoadDistanceUnavailable)
	}

	miles := float64(el.Distance.Meters) / domain.MetersPerMile
	text := el.Distance.HumanReadable
	if text == "" {
		text = domain.FormatMiles(miles)
	}

	return domain.RoadDistance{
		Text:     text,
		Miles:    miles,
		Duration: el.Duration,
	}, nil
}
