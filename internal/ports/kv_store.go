package ports

import "context"

// Durable string key-value store backing the distance cache.
// Values survive process restarts; implementations must be safe for concurrent use.
type KVStore interface {
	// Get returns ok=false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
