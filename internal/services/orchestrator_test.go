package services

import (
	"context"
	"errors"
	"fmt"
	"market-distance-service/internal/adapters/distance"
	"market-distance-service/internal/adapters/kv"
	"market-distance-service/internal/domain"
	"strings"
	"sync"
	"testing"
	"time"
)

var downtown = domain.Coordinates{Lat: 29.4241, Lng: -98.4936}

type harness struct {
	geo   *distance.MockGeocoder
	roads *distance.MockRoadDistanceProvider
	store *kv.MemoryKV
	cache *DistanceCacheStore
	orch  *DistanceOrchestrator
}

// testMarkets builds n markets; market i is (i+1) miles from downtown by road.
func testMarkets(n int) ([]domain.Entity, map[string]domain.Coordinates, []distance.MockPair) {
	entities := make([]domain.Entity, 0, n)
	table := make(map[string]domain.Coordinates, n)
	pairs := make([]distance.MockPair, 0, n)
	for i := 0; i < n; i++ {
		e := domain.Entity{
			ID:      fmt.Sprintf("m%d", i+1),
			Name:    fmt.Sprintf("Market %d", i+1),
			Address: fmt.Sprintf("%d00 Main St, San Antonio, TX", i+1),
			Kind:    domain.KindMarket,
		}
		c := domain.Coordinates{Lat: 29.43 + 0.01*float64(i), Lng: -98.49}
		entities = append(entities, e)
		table[e.Address] = c
		pairs = append(pairs, distance.MockPair{From: downtown, To: c, Miles: float64(i + 1), Minutes: 5})
	}
	return entities, table, pairs
}

func newHarness(t *testing.T, n int, opts OrchestratorOptions) (*harness, []domain.Entity, map[string]domain.Coordinates) {
	t.Helper()
	entities, table, pairs := testMarkets(n)

	h := &harness{
		geo:   distance.NewMockGeocoder(table),
		roads: distance.NewMockRoadDistanceProvider(pairs),
		store: kv.NewMemoryKV(),
	}
	h.cache = NewDistanceCacheStore(h.store, 0)

	if opts.BatchDelay == 0 {
		opts.BatchDelay = time.Millisecond
	}
	h.orch = NewDistanceOrchestrator(
		NewCoordinateResolver(h.geo, nil),
		NewRoadDistanceResolver(h.roads),
		h.cache,
		opts,
	)
	return h, entities, table
}

func TestComputeDistancesBatchesAndIsolatesFailures(t *testing.T) {
	h, entities, _ := newHarness(t, 7, OrchestratorOptions{})
	h.geo.PanicOn(entities[3].Address)

	var states []RunState
	var sizes []int
	got, err := h.orch.ComputeDistances(context.Background(), entities, &downtown, func(p Progress) {
		states = append(states, p.State)
		if p.State == StateBatching {
			sizes = append(sizes, len(p.Labels))
			if p.BatchesTotal != 3 {
				t.Errorf("BatchesTotal = %d, want 3", p.BatchesTotal)
			}
		}
	})
	if err != nil {
		t.Fatalf("ComputeDistances: %v", err)
	}

	wantStates := []RunState{StateLoading, StateBatching, StateBatching, StateBatching, StateDone}
	if fmt.Sprint(states) != fmt.Sprint(wantStates) {
		t.Fatalf("states = %v, want %v", states, wantStates)
	}
	if fmt.Sprint(sizes) != "[3 6 7]" {
		t.Fatalf("labels after each batch = %v, want [3 6 7]", sizes)
	}

	for i, e := range entities {
		want := fmt.Sprintf("%d.0 mi", i+1)
		if i == 3 {
			want = domain.LabelUnknown
		}
		if got[e.CacheKey()] != want {
			t.Errorf("%s = %q, want %q", e.ID, got[e.CacheKey()], want)
		}
	}

	if h.roads.Calls() != 6 {
		t.Fatalf("road calls = %d, want 6", h.roads.Calls())
	}
}

func TestComputeDistancesBoundsConcurrency(t *testing.T) {
	h, entities, _ := newHarness(t, 7, OrchestratorOptions{})
	h.geo.Delay = 20 * time.Millisecond

	if _, err := h.orch.ComputeDistances(context.Background(), entities, &downtown, nil); err != nil {
		t.Fatalf("ComputeDistances: %v", err)
	}

	if m := h.geo.MaxInFlight(); m > 3 || m < 2 {
		t.Fatalf("max concurrent geocodes = %d, want 2..3", m)
	}
}

func TestComputeDistancesServesCacheWithoutCalls(t *testing.T) {
	ctx := context.Background()
	h, entities, _ := newHarness(t, 4, OrchestratorOptions{})

	seeded := map[string]string{}
	for _, e := range entities {
		seeded[e.CacheKey()] = "9.9 mi"
	}
	if err := h.cache.Save(ctx, seeded); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	got, err := h.orch.ComputeDistances(ctx, entities, &downtown, nil)
	if err != nil {
		t.Fatalf("ComputeDistances: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	for k, v := range got {
		if v != "9.9 mi" {
			t.Errorf("%s = %q, want cached 9.9 mi", k, v)
		}
	}
	if h.geo.Calls() != 0 || h.roads.Calls() != 0 {
		t.Fatalf("calls geo=%d roads=%d, want 0", h.geo.Calls(), h.roads.Calls())
	}
}

func TestComputeDistancesFallsBackToStraightLine(t *testing.T) {
	h, entities, table := newHarness(t, 1, OrchestratorOptions{})
	h.roads.Fail = true

	got, err := h.orch.ComputeDistances(context.Background(), entities, &downtown, nil)
	if err != nil {
		t.Fatalf("ComputeDistances: %v", err)
	}

	dest := table[entities[0].Address]
	want := domain.FormatMiles(HaversineMiles(downtown.Lat, downtown.Lng, dest.Lat, dest.Lng))
	label := got[entities[0].CacheKey()]
	if label != want {
		t.Fatalf("label = %q, want %q", label, want)
	}
	if label == domain.LabelUnknown || label == domain.LabelUnavailable {
		t.Fatalf("fallback produced sentinel %q", label)
	}
}

func TestComputeDistancesMissingAddressMakesNoCalls(t *testing.T) {
	h, _, _ := newHarness(t, 0, OrchestratorOptions{})
	e := domain.Entity{ID: "v1", Name: "Honey Stand", Address: "", Kind: domain.KindVendor}

	got, err := h.orch.ComputeDistances(context.Background(), []domain.Entity{e}, &downtown, nil)
	if err != nil {
		t.Fatalf("ComputeDistances: %v", err)
	}
	if got[e.CacheKey()] != domain.LabelUnknown {
		t.Fatalf("label = %q, want %q", got[e.CacheKey()], domain.LabelUnknown)
	}
	if h.geo.Calls() != 0 || h.roads.Calls() != 0 {
		t.Fatalf("calls geo=%d roads=%d, want 0", h.geo.Calls(), h.roads.Calls())
	}
}

func TestComputeDistancesWithoutUserLocation(t *testing.T) {
	ctx := context.Background()
	h, entities, _ := newHarness(t, 3, OrchestratorOptions{})

	got, err := h.orch.ComputeDistances(ctx, entities, nil, nil)
	if err != nil {
		t.Fatalf("ComputeDistances: %v", err)
	}
	for _, e := range entities {
		if got[e.CacheKey()] != domain.LabelUnavailable {
			t.Errorf("%s = %q, want %q", e.ID, got[e.CacheKey()], domain.LabelUnavailable)
		}
	}
	if h.geo.Calls() != 0 || h.roads.Calls() != 0 {
		t.Fatalf("calls geo=%d roads=%d, want 0", h.geo.Calls(), h.roads.Calls())
	}
	if _, ok, _ := h.store.Get(ctx, DistanceCacheKey); ok {
		t.Fatal("unavailable labels were persisted")
	}
}

func TestComputeDistancesSwallowsCacheWriteFailure(t *testing.T) {
	h, entities, _ := newHarness(t, 4, OrchestratorOptions{})
	h.store.FailWrites = true

	got, err := h.orch.ComputeDistances(context.Background(), entities, &downtown, nil)
	if err != nil {
		t.Fatalf("ComputeDistances: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
}

func TestComputeDistancesCancelBetweenBatches(t *testing.T) {
	h, entities, _ := newHarness(t, 7, OrchestratorOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got, err := h.orch.ComputeDistances(ctx, entities, &downtown, func(p Progress) {
		if p.State == StateBatching && p.BatchesDone == 1 {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(got) != 3 {
		t.Fatalf("partial result len = %d, want 3", len(got))
	}
	if cached := h.cache.Load(context.Background()); len(cached) != 3 {
		t.Fatalf("cached len = %d, want 3", len(cached))
	}
	if h.geo.Calls() != 3 {
		t.Fatalf("geocodes = %d, want 3", h.geo.Calls())
	}
}

func TestComputeDistancesCancelDiscardsInFlightBatch(t *testing.T) {
	h, entities, _ := newHarness(t, 3, OrchestratorOptions{})
	h.geo.Delay = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got, err := h.orch.ComputeDistances(ctx, entities, &downtown, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want context.DeadlineExceeded", err)
	}
	if len(got) != 0 {
		t.Fatalf("result = %v, want empty", got)
	}
	if cached := h.cache.Load(context.Background()); len(cached) != 0 {
		t.Fatalf("in-flight batch was cached: %v", cached)
	}
}

func TestComputeDistancesKeysByEntityOnlyByDefault(t *testing.T) {
	ctx := context.Background()
	h, entities, _ := newHarness(t, 2, OrchestratorOptions{})

	if _, err := h.orch.ComputeDistances(ctx, entities, &downtown, nil); err != nil {
		t.Fatalf("first run: %v", err)
	}
	moved := domain.Coordinates{Lat: 30.2672, Lng: -97.7431}
	got, err := h.orch.ComputeDistances(ctx, entities, &moved, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if h.roads.Calls() != 2 {
		t.Fatalf("road calls = %d, want 2 (moved user served from cache)", h.roads.Calls())
	}
	if got[entities[0].CacheKey()] != "1.0 mi" {
		t.Fatalf("label = %q, want cached 1.0 mi", got[entities[0].CacheKey()])
	}
}

func TestComputeDistancesGeohashKeysRecomputeForMovedUser(t *testing.T) {
	ctx := context.Background()
	h, entities, _ := newHarness(t, 2, OrchestratorOptions{OriginGeohashPrecision: 5})

	first, err := h.orch.ComputeDistances(ctx, entities, &downtown, nil)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	for k := range first {
		if !strings.Contains(k, "@") {
			t.Fatalf("key %q has no origin suffix", k)
		}
	}

	moved := domain.Coordinates{Lat: 30.2672, Lng: -97.7431}
	if _, err := h.orch.ComputeDistances(ctx, entities, &moved, nil); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if h.roads.Calls() != 4 {
		t.Fatalf("road calls = %d, want 4", h.roads.Calls())
	}

	if _, err := h.orch.ComputeDistances(ctx, entities, &downtown, nil); err != nil {
		t.Fatalf("third run: %v", err)
	}
	if h.roads.Calls() != 4 {
		t.Fatalf("road calls = %d, want 4 (original origin still cached)", h.roads.Calls())
	}
}

func TestComputeDistancesDeduplicatesEntities(t *testing.T) {
	h, entities, _ := newHarness(t, 1, OrchestratorOptions{})
	dup := []domain.Entity{entities[0], entities[0], entities[0]}

	got, err := h.orch.ComputeDistances(context.Background(), dup, &downtown, nil)
	if err != nil {
		t.Fatalf("ComputeDistances: %v", err)
	}
	if len(got) != 1 || h.roads.Calls() != 1 {
		t.Fatalf("len=%d road calls=%d, want 1 and 1", len(got), h.roads.Calls())
	}
}

func TestInProgress(t *testing.T) {
	h, entities, _ := newHarness(t, 2, OrchestratorOptions{})

	var mu sync.Mutex
	var during []bool
	_, err := h.orch.Refresh(context.Background(), entities, &downtown, func(p Progress) {
		mu.Lock()
		during = append(during, h.orch.InProgress())
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	for i, v := range during {
		if !v {
			t.Fatalf("InProgress false during callback %d", i)
		}
	}
	if h.orch.InProgress() {
		t.Fatal("InProgress true after run finished")
	}
}
