package distance

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

const orsDefaultBaseURL = "https://api.openrouteservice.org"

// ORSProvider implements Geocoder and RoadDistanceProvider using OpenRouteService.
// Caching is left to the callers; every call reaches the API.
//
// The provider is safe for concurrent use.
type ORSProvider struct {
	session     *http.Client
	apiKey      string
	baseURL     string
	profile     string
	country     string
	maxAttempts int
	backoff     time.Duration
}

// NewORSProvider builds a provider for the driving-car profile.
// An empty baseURL selects the public ORS endpoint.
func NewORSProvider(apiKey, baseURL string) (*ORSProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}

	if baseURL == "" {
		baseURL = orsDefaultBaseURL
	}

	return &ORSProvider{
		session:     &http.Client{Timeout: 10 * time.Second},
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		profile:     "driving-car",
		country:     "US",
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
	}, nil
}

// normalize collapses whitespace so equivalent addresses geocode identically.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
