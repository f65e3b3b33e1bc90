package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"market-distance-service/internal/domain"
	"market-distance-service/internal/platform/obs"
	"net/http"
	"time"
)

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
	Sources      []int       `json:"sources"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// RoadDistance retrieves driving distance and duration for one origin/destination
// pair using the OpenRouteService matrix endpoint.
func (o *ORSProvider) RoadDistance(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (_ domain.RoadDistance, err error) {
	defer obs.Time(ctx, "ors.RoadDistance")(&err)

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	payload, err := json.Marshal(matrixRequest{
		Locations:    [][]float64{origin.CoordsToList(), destination.CoordsToList()},
		Destinations: []int{1},
		Metrics:      []string{"distance", "duration"},
		Sources:      []int{0},
	})
	if err != nil {
		return domain.RoadDistance{}, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return domain.RoadDistance{}, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return domain.RoadDistance{}, fmt.Errorf("decode matrix response: %w", err)
	}

	if len(mr.Distances) != 1 || len(mr.Durations) != 1 ||
		len(mr.Distances[0]) != 1 || len(mr.Durations[0]) != 1 {
		return domain.RoadDistance{}, fmt.Errorf(
			"expected a 1x1 matrix; got distances=%d durations=%d rows",
			len(mr.Distances), len(mr.Durations),
		)
	}

	metersPtr := mr.Distances[0][0]
	secondsPtr := mr.Durations[0][0]
	// ORS reports unroutable pairs as null.
	if metersPtr == nil || secondsPtr == nil {
		return domain.RoadDistance{}, fmt.Errorf("matrix: %w", domain.ErrRoadDistanceUnavailable)
	}

	miles := *metersPtr / domain.MetersPerMile

	return domain.RoadDistance{
		Text:     domain.FormatMiles(miles),
		Miles:    miles,
		Duration: time.Duration(*secondsPtr * float64(time.Second)),
	}, nil
}
