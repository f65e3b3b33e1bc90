package cache

import (
	"context"
	"market-distance-service/internal/domain"
	"strings"
	"sync"
)

// MemoryGeocodeCache keeps geocodes for the life of the process.
type MemoryGeocodeCache struct {
	mu sync.RWMutex
	m  map[string]domain.Coordinates
}

func NewMemoryGeocodeCache() *MemoryGeocodeCache {
	return &MemoryGeocodeCache{m: make(map[string]domain.Coordinates)}
}

func (c *MemoryGeocodeCache) GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]domain.Coordinates, len(addresses))
	for _, a := range uniqueKeys(addresses) {
		if coords, ok := c.m[a]; ok {
			out[a] = coords
		}
	}
	return out, nil
}

func (c *MemoryGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for addr, coords := range results {
		if addr = strings.TrimSpace(addr); addr != "" {
			c.m[addr] = coords
		}
	}
	return nil
}
