package cache

import (
	"context"
	"market-distance-service/internal/adapters/repositories"
	"market-distance-service/internal/domain"
	"market-distance-service/internal/platform/db"
	"market-distance-service/internal/ports"
	"testing"
)

func exerciseGeocodeCache(t *testing.T, c ports.GeocodeCache) {
	t.Helper()
	ctx := context.Background()

	empty, err := c.GetMany(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("GetMany(nil) = %v, %v", empty, err)
	}

	err = c.PutMany(ctx, map[string]domain.Coordinates{
		"312 Pearl Pkwy, San Antonio, TX": {Lat: 29.4428, Lng: -98.4810},
		"Legacy Park, San Antonio, TX":    {Lat: 29.4241, Lng: -98.4936},
	})
	if err != nil {
		t.Fatalf("PutMany: %v", err)
	}

	got, err := c.GetMany(ctx, []string{
		"312 Pearl Pkwy, San Antonio, TX",
		" 312 Pearl Pkwy, San Antonio, TX ",
		"unknown",
		"",
	})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d hits, want 1: %v", len(got), got)
	}
	if coords := got["312 Pearl Pkwy, San Antonio, TX"]; coords.Lat != 29.4428 || coords.Lng != -98.4810 {
		t.Fatalf("coords = %+v", coords)
	}

	// Overwrites replace the stored coordinates.
	if err := c.PutMany(ctx, map[string]domain.Coordinates{"Legacy Park, San Antonio, TX": {Lat: 1, Lng: 2}}); err != nil {
		t.Fatalf("PutMany overwrite: %v", err)
	}
	got, _ = c.GetMany(ctx, []string{"Legacy Park, San Antonio, TX"})
	if got["Legacy Park, San Antonio, TX"] != (domain.Coordinates{Lat: 1, Lng: 2}) {
		t.Fatalf("overwrite not applied: %+v", got)
	}
}

func TestMemoryGeocodeCache(t *testing.T) {
	exerciseGeocodeCache(t, NewMemoryGeocodeCache())
}

func TestSqliteGeocodeCache(t *testing.T) {
	conn, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := repositories.InitSchema(conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	exerciseGeocodeCache(t, NewSqliteGeocodeCache(conn))
}

func TestSqliteGeocodeCacheRejectsBadEntries(t *testing.T) {
	conn, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := repositories.InitSchema(conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	c := NewSqliteGeocodeCache(conn)
	if err := c.PutMany(context.Background(), map[string]domain.Coordinates{" ": {}}); err == nil {
		t.Fatal("expected error for blank address key")
	}
	if err := c.PutMany(context.Background(), map[string]domain.Coordinates{"x": {Lat: 200}}); err == nil {
		t.Fatal("expected error for out-of-range coordinates")
	}
}

func TestPostgresPlaceholders(t *testing.T) {
	if got := NewPostgresGeocodeCache(nil).placeholders(1, 3); got != "$1, $2, $3" {
		t.Fatalf("postgres placeholders = %q", got)
	}
	if got := NewSqliteGeocodeCache(nil).placeholders(1, 2); got != "?, ?" {
		t.Fatalf("sqlite placeholders = %q", got)
	}
}
