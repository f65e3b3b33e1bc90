package distance

import (
	"context"
	"errors"
	"fmt"
	"market-distance-service/internal/domain"
	"market-distance-service/internal/platform/obs"
	"strings"

	"googlemaps.github.io/maps"
)

// searchBiasRadiusMeters is how far a location bias reaches (about 31 miles).
const searchBiasRadiusMeters = 50000

// SearchPlaces runs a Places Text Search, optionally biased toward a location.
func (g *GoogleMapsProvider) SearchPlaces(
	ctx context.Context,
	query string,
	bias *domain.Coordinates,
) (_ []domain.Place, err error) {
	defer obs.Time(ctx, "google.SearchPlaces")(&err)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search places: query must not be empty")
	}

	req := &maps.TextSearchRequest{Query: query}
	if bias != nil {
		req.Location = &maps.LatLng{Lat: bias.Lat, Lng: bias.Lng}
		req.Radius = searchBiasRadiusMeters
	}

	resp, err := g.client.TextSearch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search places %q: %w", query, err)
	}

	places := make([]domain.Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		p := domain.Place{
			PlaceID:     r.PlaceID,
			Name:        r.Name,
			Address:     r.FormattedAddress,
			Rating:      float64(r.Rating),
			RatingCount: r.UserRatingsTotal,
			Location: domain.Coordinates{
				Lat: r.Geometry.Location.Lat,
				Lng: r.Geometry.Location.Lng,
			},
		}
		if r.OpeningHours != nil {
			p.OpenNow = r.OpeningHours.OpenNow
		}
		places = append(places, p)
	}

	return places, nil
}
