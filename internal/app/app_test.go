package app

import (
	"context"
	"market-distance-service/internal/adapters/distance"
	"market-distance-service/internal/config"
	"market-distance-service/internal/domain"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

const seed = `[
  {"id": "m1", "kind": "market", "name": "Pearl Farmers Market", "address": "312 Pearl Pkwy, San Antonio, TX"}
]`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "seed.json")
	if err := os.WriteFile(seedPath, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	cfg := config.NewDefaultConfig()
	cfg.Storage.DBPath = filepath.Join(dir, "db", "app.db")
	cfg.Storage.SeedPath = seedPath
	cfg.Storage.CacheDir = filepath.Join(dir, "cache")
	cfg.Distance.BatchDelay = 0
	return cfg
}

func testProviders() Providers {
	pearl := domain.Coordinates{Lat: 29.4425, Lng: -98.48}
	return Providers{
		Geocoder: distance.NewMockGeocoder(map[string]domain.Coordinates{"312 Pearl Pkwy, San Antonio, TX": pearl}),
		Roads: distance.NewMockRoadDistanceProvider([]distance.MockPair{
			{From: domain.Coordinates{Lat: 29.4241, Lng: -98.4936}, To: pearl, Miles: 2.1},
		}),
	}
}

func TestBuildWithBackends(t *testing.T) {
	for _, backend := range []string{"sqlite", "file", "memory", "redis"} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Storage.CacheBackend = backend
			if backend == "redis" {
				cfg.Storage.RedisAddr = miniredis.RunT(t).Addr()
			}

			ctx := context.Background()
			a, err := BuildWith(ctx, cfg, testProviders())
			if err != nil {
				t.Fatalf("BuildWith: %v", err)
			}
			defer a.Close()

			markets, err := a.Entities.ListEntities(ctx, domain.KindMarket)
			if err != nil || len(markets) != 1 {
				t.Fatalf("ListEntities = %v, %v", markets, err)
			}

			user := domain.Coordinates{Lat: 29.4241, Lng: -98.4936}
			labels, err := a.Orchestrator.ComputeDistances(ctx, markets, &user, nil)
			if err != nil {
				t.Fatalf("ComputeDistances: %v", err)
			}
			if got := labels[markets[0].CacheKey()]; got != "2.1 mi" {
				t.Fatalf("label = %q, want 2.1 mi", got)
			}

			if cached := a.Cache.Load(ctx); cached[markets[0].CacheKey()] != "2.1 mi" {
				t.Fatalf("cache = %v", cached)
			}
		})
	}
}

func TestBuildWithUnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.CacheBackend = "etcd"

	if _, err := BuildWith(context.Background(), cfg, testProviders()); err == nil {
		t.Fatal("expected error for unknown cache backend")
	}
}

func TestBuildWithMissingSeedFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.SeedPath = filepath.Join(t.TempDir(), "absent.json")

	a, err := BuildWith(context.Background(), cfg, testProviders())
	if err != nil {
		t.Fatalf("BuildWith: %v", err)
	}
	a.Close()
}

func TestNewProviders(t *testing.T) {
	if _, err := NewProviders(config.ProviderConfig{Name: "google"}); err == nil {
		t.Error("google without key should fail")
	}
	if _, err := NewProviders(config.ProviderConfig{Name: "ors"}); err == nil {
		t.Error("ors without key should fail")
	}
	if _, err := NewProviders(config.ProviderConfig{Name: "bing", GoogleAPIKey: "k"}); err == nil {
		t.Error("unknown provider should fail")
	}

	p, err := NewProviders(config.ProviderConfig{Name: "google", GoogleAPIKey: "AIza-test", GoogleQPS: 5})
	if err != nil {
		t.Fatalf("google: %v", err)
	}
	if p.Geocoder == nil || p.Roads == nil || p.Places == nil {
		t.Fatalf("google providers incomplete: %+v", p)
	}

	p, err = NewProviders(config.ProviderConfig{Name: "ors", ORSAPIKey: "k"})
	if err != nil {
		t.Fatalf("ors: %v", err)
	}
	if p.Places != nil {
		t.Fatal("ors should not offer place search")
	}
}
