// Package app is the composition root shared by the binaries: it turns a
// Config into concrete adapters behind ports and the distance services.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"market-distance-service/internal/adapters/cache"
	"market-distance-service/internal/adapters/distance"
	"market-distance-service/internal/adapters/kv"
	"market-distance-service/internal/adapters/repositories"
	"market-distance-service/internal/config"
	"market-distance-service/internal/platform/db"
	"market-distance-service/internal/ports"
	"market-distance-service/internal/services"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "market-distance:"

type App struct {
	Config *config.Config

	DB      *sql.DB
	Dialect repositories.Dialect

	Entities     ports.EntityRepository
	Coords       *services.CoordinateResolver
	Cache        *services.DistanceCacheStore
	Orchestrator *services.DistanceOrchestrator
	Places       ports.PlaceSearcher // nil when the provider has no place search

	closers []func() error
}

// Providers bundles the outbound services. Build picks them from config;
// BuildWith lets callers supply their own.
type Providers struct {
	Geocoder ports.Geocoder
	Roads    ports.RoadDistanceProvider
	Places   ports.PlaceSearcher
}

func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	p, err := NewProviders(cfg.Provider)
	if err != nil {
		return nil, err
	}
	return BuildWith(ctx, cfg, p)
}

func BuildWith(ctx context.Context, cfg *config.Config, p Providers) (*App, error) {
	a := &App{Config: cfg, Places: p.Places}

	if err := a.openDB(cfg.Storage); err != nil {
		return nil, err
	}

	if err := initAndSeed(a.DB, cfg.Storage.SeedPath, a.Dialect); err != nil {
		a.Close()
		return nil, err
	}

	var geocodes ports.GeocodeCache
	if a.Dialect == repositories.Postgres {
		a.Entities = repositories.NewPostgresEntityRepository(a.DB)
		geocodes = cache.NewPostgresGeocodeCache(a.DB)
	} else {
		a.Entities = repositories.NewSqliteEntityRepository(a.DB)
		geocodes = cache.NewSqliteGeocodeCache(a.DB)
	}

	store, err := a.openKV(ctx, cfg.Storage)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Coords = services.NewCoordinateResolver(p.Geocoder, geocodes)
	a.Cache = services.NewDistanceCacheStore(store, cfg.Distance.CacheTTL)
	a.Orchestrator = services.NewDistanceOrchestrator(
		a.Coords,
		services.NewRoadDistanceResolver(p.Roads),
		a.Cache,
		services.OrchestratorOptions{
			BatchSize:              cfg.Distance.BatchSize,
			BatchDelay:             cfg.Distance.BatchDelay,
			StraightLine:           services.StraightLine(cfg.Distance.StraightLineMethod),
			OriginGeohashPrecision: cfg.Distance.OriginGeohashPrecision,
		},
	)

	return a, nil
}

// NewProviders builds the geocoder and distance-matrix client named by cfg.Name.
func NewProviders(cfg config.ProviderConfig) (Providers, error) {
	switch strings.ToLower(cfg.Name) {
	case "google", "":
		if strings.TrimSpace(cfg.GoogleAPIKey) == "" {
			return Providers{}, errors.New("GOOGLE_MAPS_API_KEY is required for DISTANCE_PROVIDER=google")
		}
		g, err := distance.NewGoogleMapsProvider(distance.GoogleOptions{
			APIKey:            cfg.GoogleAPIKey,
			RequestsPerSecond: cfg.GoogleQPS,
			Region:            cfg.Region,
		})
		if err != nil {
			return Providers{}, err
		}
		return Providers{Geocoder: g, Roads: g, Places: g}, nil

	case "ors":
		if strings.TrimSpace(cfg.ORSAPIKey) == "" {
			return Providers{}, errors.New("ORS_API_KEY is required for DISTANCE_PROVIDER=ors")
		}
		o, err := distance.NewORSProvider(cfg.ORSAPIKey, "")
		if err != nil {
			return Providers{}, err
		}
		return Providers{Geocoder: o, Roads: o}, nil
	}

	return Providers{}, fmt.Errorf("unknown DISTANCE_PROVIDER %q (want google or ors)", cfg.Name)
}

func (a *App) openDB(cfg config.StorageConfig) error {
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		a.DB, a.Dialect = conn, repositories.Postgres
	} else {
		if cfg.DBPath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
				return fmt.Errorf("open db: create dir for %q: %w", cfg.DBPath, err)
			}
		}
		conn, err := db.OpenSQLite(cfg.DBPath)
		if err != nil {
			return err
		}
		a.DB, a.Dialect = conn, repositories.SQLite
	}

	a.closers = append(a.closers, a.DB.Close)
	return nil
}

func (a *App) openKV(ctx context.Context, cfg config.StorageConfig) (ports.KVStore, error) {
	switch strings.ToLower(cfg.CacheBackend) {
	case "sqlite", "postgres", "sql", "":
		if a.Dialect == repositories.Postgres {
			return kv.NewSQLKV(a.DB), nil
		}
		return kv.NewSqliteKV(a.DB), nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("open kv: redis %s: %w", cfg.RedisAddr, err)
		}
		a.closers = append(a.closers, client.Close)
		return kv.NewRedisKV(client, redisKeyPrefix), nil

	case "file":
		return kv.NewFileKV(cfg.CacheDir)

	case "memory":
		return kv.NewMemoryKV(), nil
	}

	return nil, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.CacheBackend)
}

func initAndSeed(conn *sql.DB, seedPath string, dialect repositories.Dialect) error {
	if err := repositories.InitSchema(conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if seedPath == "" {
		return nil
	}
	if _, err := os.Stat(seedPath); errors.Is(err, os.ErrNotExist) {
		log.Printf("seed file %s not found, skipping seed", seedPath)
		return nil
	}

	if err := repositories.SeedFromJSON(conn, seedPath, dialect); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	return nil
}

// Close releases the database and any cache client, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
