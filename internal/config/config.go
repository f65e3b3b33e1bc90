// Package config loads service settings from the environment (and an optional
// .env file) into a typed Config.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Provider ProviderConfig
	Distance DistanceConfig
}

type ServerConfig struct {
	Port               string
	CORSAllowedOrigins []string
}

// StorageConfig selects where entities, geocodes and the distance cache live.
type StorageConfig struct {
	DBPath       string
	DatabaseURL  string // Postgres; takes precedence over DBPath when set
	SeedPath     string
	CacheBackend string // sqlite | postgres | redis | file | memory
	CacheDir     string
	RedisAddr    string
}

type ProviderConfig struct {
	Name         string // google | ors
	GoogleAPIKey string
	GoogleQPS    int
	ORSAPIKey    string
	Region       string
}

type DistanceConfig struct {
	CacheTTL               time.Duration
	BatchSize              int
	BatchDelay             time.Duration
	StraightLineMethod     string // haversine | vincenty
	OriginGeohashPrecision int    // 0 keys the cache by entity only
	LocalRadiusMiles       float64
}

// Load reads .env when present, then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := NewDefaultConfig()

	cfg.Server.Port = Get("PORT", cfg.Server.Port)
	if origins := SplitList(Get("CORS_ALLOWED_ORIGINS", "")); len(origins) > 0 {
		cfg.Server.CORSAllowedOrigins = origins
	}

	cfg.Storage.DBPath = Get("DB_PATH", cfg.Storage.DBPath)
	cfg.Storage.DatabaseURL = Get("DATABASE_URL", "")
	cfg.Storage.SeedPath = Get("SEED_PATH", cfg.Storage.SeedPath)
	cfg.Storage.CacheBackend = Get("CACHE_BACKEND", cfg.Storage.CacheBackend)
	cfg.Storage.CacheDir = Get("CACHE_DIR", cfg.Storage.CacheDir)
	cfg.Storage.RedisAddr = Get("REDIS_ADDR", cfg.Storage.RedisAddr)

	cfg.Provider.Name = Get("DISTANCE_PROVIDER", cfg.Provider.Name)
	cfg.Provider.GoogleAPIKey = Get("GOOGLE_MAPS_API_KEY", "")
	cfg.Provider.GoogleQPS = GetInt("GOOGLE_QPS", cfg.Provider.GoogleQPS)
	cfg.Provider.ORSAPIKey = Get("ORS_API_KEY", "")
	cfg.Provider.Region = Get("GEOCODE_REGION", cfg.Provider.Region)

	cfg.Distance.CacheTTL = GetDuration("CACHE_TTL", cfg.Distance.CacheTTL)
	cfg.Distance.BatchSize = GetInt("BATCH_SIZE", cfg.Distance.BatchSize)
	cfg.Distance.BatchDelay = GetDuration("BATCH_DELAY", cfg.Distance.BatchDelay)
	cfg.Distance.StraightLineMethod = Get("STRAIGHT_LINE_METHOD", cfg.Distance.StraightLineMethod)
	cfg.Distance.OriginGeohashPrecision = GetInt("ORIGIN_GEOHASH_PRECISION", cfg.Distance.OriginGeohashPrecision)
	cfg.Distance.LocalRadiusMiles = GetFloat("LOCAL_RADIUS_MILES", cfg.Distance.LocalRadiusMiles)

	return cfg
}

func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
		},
		Storage: StorageConfig{
			DBPath:       "data/app.db",
			SeedPath:     "data/seeds/markets.json",
			CacheBackend: "sqlite",
			CacheDir:     "data/cache",
			RedisAddr:    "localhost:6379",
		},
		Provider: ProviderConfig{
			Name:      "google",
			GoogleQPS: 10,
			Region:    "us",
		},
		Distance: DistanceConfig{
			CacheTTL:           24 * time.Hour,
			BatchSize:          3,
			BatchDelay:         100 * time.Millisecond,
			StraightLineMethod: "haversine",
			LocalRadiusMiles:   50,
		},
	}
}

func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) int {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: invalid int %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func GetFloat(key string, fallback float64) float64 {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("config: invalid float %s=%q, using %g", key, v, fallback)
		return fallback
	}
	return f
}

func GetDuration(key string, fallback time.Duration) time.Duration {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: invalid duration %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

// SplitList splits a comma-separated value, trimming entries and dropping blanks.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
