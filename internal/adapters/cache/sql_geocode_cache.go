package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"market-distance-service/internal/domain"
	"market-distance-service/internal/platform/obs"
	"strings"
)

// SQLGeocodeCache persists address -> coordinates in the geocode_cache table.
// Address keys are expected to be normalized by the caller.
type SQLGeocodeCache struct {
	DB       *sql.DB
	postgres bool
	op       string
}

func NewSqliteGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db, op: "geocode.cache.sqlite"}
}

func NewPostgresGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db, postgres: true, op: "geocode.cache.postgres"}
}

func (s *SQLGeocodeCache) placeholders(from, n int) string {
	ph := make([]string, n)
	for i := range ph {
		if s.postgres {
			ph[i] = fmt.Sprintf("$%d", from+i)
		} else {
			ph[i] = "?"
		}
	}
	return strings.Join(ph, ", ")
}

// GetMany returns the cached coordinates among addresses; misses are absent from the map.
func (s *SQLGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, s.op+".GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	keys := uniqueKeys(addresses)
	if len(keys) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	// Only placeholder markers are interpolated; values stay parameterized.
	q := fmt.Sprintf(
		`SELECT address, lat, lng FROM geocode_cache WHERE address IN (%s)`,
		s.placeholders(1, len(keys)),
	)

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: %w", err)
	}
	defer rows.Close()

	return scanCoordinates(rows, len(keys))
}

// PutMany upserts every mapping in one transaction.
func (s *SQLGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, s.op+".PutMany")(&err)

	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}
	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put geocode cache: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// ON CONFLICT ... DO UPDATE is understood by both SQLite (3.24+) and Postgres.
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
	INSERT INTO geocode_cache (address, lat, lng)
	VALUES (%s)
	ON CONFLICT (address) DO UPDATE
	SET lat = excluded.lat, lng = excluded.lng`, s.placeholders(1, 3)))
	if err != nil {
		return fmt.Errorf("put geocode cache: prepare: %w", err)
	}
	defer stmt.Close()

	for addr, c := range results {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			return errors.New("put geocode cache: empty address key")
		}
		if !c.Valid() {
			return fmt.Errorf("put geocode cache %q: coordinates out of range: %s", addr, c)
		}
		if _, err := stmt.ExecContext(ctx, addr, c.Lat, c.Lng); err != nil {
			return fmt.Errorf("put geocode cache %q: %w", addr, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put geocode cache: commit: %w", err)
	}
	return nil
}
