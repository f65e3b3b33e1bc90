package distance

import (
	"context"
	"errors"
	"fmt"
	"market-distance-service/internal/domain"
	"sync"
	"time"
)

// callTracker counts calls and the peak number running at once.
type callTracker struct {
	mu          sync.Mutex
	calls       int
	inFlight    int
	maxInFlight int
}

func (t *callTracker) enter() {
	t.mu.Lock()
	t.calls++
	t.inFlight++
	if t.inFlight > t.maxInFlight {
		t.maxInFlight = t.inFlight
	}
	t.mu.Unlock()
}

func (t *callTracker) leave() {
	t.mu.Lock()
	t.inFlight--
	t.mu.Unlock()
}

// Calls returns how many lookups reached the fake.
func (t *callTracker) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// MaxInFlight returns the highest number of concurrent lookups observed.
func (t *callTracker) MaxInFlight() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.maxInFlight
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// MockGeocoder resolves addresses from a fixed table.
type MockGeocoder struct {
	callTracker

	Delay time.Duration

	coords map[string]domain.Coordinates
	panics map[string]bool
}

func NewMockGeocoder(table map[string]domain.Coordinates) *MockGeocoder {
	coords := make(map[string]domain.Coordinates, len(table))
	for addr, c := range table {
		coords[normalize(addr)] = c
	}
	return &MockGeocoder{coords: coords, panics: map[string]bool{}}
}

// PanicOn makes lookups for address panic instead of returning.
func (m *MockGeocoder) PanicOn(address string) {
	m.mu.Lock()
	m.panics[normalize(address)] = true
	m.mu.Unlock()
}

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	m.enter()
	defer m.leave()

	norm := normalize(address)

	m.mu.Lock()
	boom := m.panics[norm]
	c, ok := m.coords[norm]
	m.mu.Unlock()

	if boom {
		panic("mock geocoder: " + norm)
	}
	if err := sleepCtx(ctx, m.Delay); err != nil {
		return domain.Coordinates{}, err
	}
	if norm == "" {
		return domain.Coordinates{}, domain.ErrAddressMissing
	}
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("mock geocode %q: %w", norm, domain.ErrGeocodeNotFound)
	}
	return c, nil
}

type MockPair struct {
	From, To domain.Coordinates
	Miles    float64
	Minutes  int
}

// MockRoadDistanceProvider answers driving distances for known pairs.
// With Fail set every call errors, simulating an unreachable service.
type MockRoadDistanceProvider struct {
	callTracker

	Fail  bool
	Delay time.Duration

	m map[string]domain.RoadDistance
}

func NewMockRoadDistanceProvider(pairs []MockPair) *MockRoadDistanceProvider {
	m := make(map[string]domain.RoadDistance, len(pairs))
	for _, p := range pairs {
		m[p.From.String()+"|"+p.To.String()] = domain.RoadDistance{
			Text:     domain.FormatMiles(p.Miles),
			Miles:    p.Miles,
			Duration: time.Duration(p.Minutes) * time.Minute,
		}
	}
	return &MockRoadDistanceProvider{m: m}
}

func (p *MockRoadDistanceProvider) RoadDistance(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (domain.RoadDistance, error) {
	p.enter()
	defer p.leave()

	if err := sleepCtx(ctx, p.Delay); err != nil {
		return domain.RoadDistance{}, err
	}
	if p.Fail {
		return domain.RoadDistance{}, errors.New("mock road distance: service unavailable")
	}

	r, ok := p.m[origin.String()+"|"+destination.String()]
	if !ok {
		return domain.RoadDistance{}, fmt.Errorf("missing pair %s -> %s: %w", origin, destination, domain.ErrRoadDistanceUnavailable)
	}
	return r, nil
}
