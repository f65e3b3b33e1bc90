package distance

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"googlemaps.github.io/maps"
)

// GoogleOptions configures the Google Maps client.
type GoogleOptions struct {
	APIKey            string
	BaseURL           string // overrides https://maps.googleapis.com, used by tests
	RequestsPerSecond int
	Region            string // geocoding region bias, e.g. "us"
	HTTPClient        *http.Client
}

// GoogleMapsProvider implements Geocoder, RoadDistanceProvider and PlaceSearcher
// on top of the Google Maps web services.
type GoogleMapsProvider struct {
	client *maps.Client
	region string
}

func NewGoogleMapsProvider(opts GoogleOptions) (*GoogleMapsProvider, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("google maps api key is empty")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(opts.APIKey),
		maps.WithHTTPClient(httpClient),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, maps.WithBaseURL(strings.TrimRight(opts.BaseURL, "/")))
	}
	if opts.RequestsPerSecond > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(opts.RequestsPerSecond))
	}

	c, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}

	return &GoogleMapsProvider{client: c, region: opts.Region}, nil
}
