package distance

import (
	"context"
	"fmt"
	"market-distance-service/internal/domain"
	"market-distance-service/internal/platform/obs"

	"googlemaps.github.io/maps"
)

// Geocode resolves an address with the Google Geocoding API, taking the first match.
func (g *GoogleMapsProvider) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "google.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, domain.ErrAddressMissing
	}

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{
		Address: norm,
		Region:  g.region,
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("google geocode %q: %w", norm, err)
	}

	if len(results) == 0 {
		return domain.Coordinates{}, fmt.Errorf("google geocode %q: %w", norm, domain.ErrGeocodeNotFound)
	}

	loc := results[0].Geometry.Location
	return domain.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}
