package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"market-distance-service/internal/domain"
	"market-distance-service/internal/platform/obs"
	"market-distance-service/internal/ports"
	"sync"
	"time"
)

// DistanceCacheKey is the KV key holding the whole distance blob.
const DistanceCacheKey = "market_distance_cache"

const DefaultCacheTTL = 24 * time.Hour

type cacheBlob struct {
	Data      map[string]string `json:"data"`
	Timestamp int64             `json:"timestamp"` // epoch milliseconds of the last save
}

// DistanceCacheStore persists distance labels as one JSON blob with a single
// timestamp. Any save refreshes the age of every entry; the blob expires as a whole.
//
// Create one per process and share it; load-merge-save runs under a mutex.
type DistanceCacheStore struct {
	kv  ports.KVStore
	ttl time.Duration
	now func() time.Time

	mu sync.Mutex
}

func NewDistanceCacheStore(kv ports.KVStore, ttl time.Duration) *DistanceCacheStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &DistanceCacheStore{kv: kv, ttl: ttl, now: time.Now}
}

// Load returns the cached labels. A missing, expired or unreadable blob yields an empty map.
func (s *DistanceCacheStore) Load(ctx context.Context) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *DistanceCacheStore) load(ctx context.Context) map[string]string {
	out := make(map[string]string)

	raw, ok, err := s.kv.Get(ctx, DistanceCacheKey)
	if err != nil {
		log.Printf("req_id=%s op=distance_cache.load err=%v", obs.RequestID(ctx), err)
		return out
	}
	if !ok {
		return out
	}

	var blob cacheBlob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		log.Printf("req_id=%s op=distance_cache.load err=%v", obs.RequestID(ctx),
			fmt.Errorf("%w: %v", domain.ErrCacheCorrupt, err))
		return out
	}

	age := s.now().Sub(time.UnixMilli(blob.Timestamp))
	if age > s.ttl {
		return out
	}

	for k, v := range blob.Data {
		out[k] = v
	}
	return out
}

// Save merges entries into the stored labels and stamps the blob with the current time.
func (s *DistanceCacheStore) Save(ctx context.Context, entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.load(ctx)
	for k, v := range entries {
		merged[k] = v
	}

	b, err := json.Marshal(cacheBlob{Data: merged, Timestamp: s.now().UnixMilli()})
	if err != nil {
		return fmt.Errorf("save distance cache: marshal: %w", err)
	}

	if err := s.kv.Set(ctx, DistanceCacheKey, string(b)); err != nil {
		return fmt.Errorf("save distance cache: %w", err)
	}
	return nil
}

// Clear drops the blob so the next run recomputes everything.
func (s *DistanceCacheStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Remove(ctx, DistanceCacheKey); err != nil {
		return fmt.Errorf("clear distance cache: %w", err)
	}
	return nil
}
