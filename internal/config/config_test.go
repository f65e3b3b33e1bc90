package config

import (
	"testing"
	"time"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("BATCH_SIZE", "5")
	t.Setenv("BATCH_DELAY", "250ms")
	t.Setenv("CACHE_TTL", "1h")
	t.Setenv("LOCAL_RADIUS_MILES", "25.5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg := Load()

	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Storage.CacheBackend != "redis" {
		t.Errorf("cache backend = %q, want redis", cfg.Storage.CacheBackend)
	}
	if cfg.Distance.BatchSize != 5 {
		t.Errorf("batch size = %d, want 5", cfg.Distance.BatchSize)
	}
	if cfg.Distance.BatchDelay != 250*time.Millisecond {
		t.Errorf("batch delay = %s, want 250ms", cfg.Distance.BatchDelay)
	}
	if cfg.Distance.CacheTTL != time.Hour {
		t.Errorf("cache ttl = %s, want 1h", cfg.Distance.CacheTTL)
	}
	if cfg.Distance.LocalRadiusMiles != 25.5 {
		t.Errorf("radius = %g, want 25.5", cfg.Distance.LocalRadiusMiles)
	}
	if len(cfg.Server.CORSAllowedOrigins) != 2 {
		t.Errorf("origins = %v, want 2 entries", cfg.Server.CORSAllowedOrigins)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("BATCH_SIZE", "three")
	t.Setenv("BATCH_DELAY", "soon")

	cfg := Load()
	def := NewDefaultConfig()

	if cfg.Distance.BatchSize != def.Distance.BatchSize {
		t.Errorf("batch size = %d, want default %d", cfg.Distance.BatchSize, def.Distance.BatchSize)
	}
	if cfg.Distance.BatchDelay != def.Distance.BatchDelay {
		t.Errorf("batch delay = %s, want default %s", cfg.Distance.BatchDelay, def.Distance.BatchDelay)
	}
}

func TestCORSOriginsAreTrimmed(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example, http://b.example ,, ")

	cfg := Load()

	want := []string{"http://a.example", "http://b.example"}
	if len(cfg.Server.CORSAllowedOrigins) != len(want) {
		t.Fatalf("origins = %q, want %q", cfg.Server.CORSAllowedOrigins, want)
	}
	for i, o := range want {
		if cfg.Server.CORSAllowedOrigins[i] != o {
			t.Errorf("origins[%d] = %q, want %q", i, cfg.Server.CORSAllowedOrigins[i], o)
		}
	}
}
