package services

import (
	"context"
	"errors"
	"log"
	"market-distance-service/internal/domain"
	"market-distance-service/internal/platform/obs"
	"market-distance-service/internal/ports"
	"strings"
	"sync"
)

// CoordinateResolver turns addresses into coordinates. Lookups go through a
// per-entity session map, then the persistent geocode cache, then the geocoder.
// Every failure is logged and reported as ok=false.
type CoordinateResolver struct {
	geocoder ports.Geocoder
	cache    ports.GeocodeCache // optional

	mu      sync.RWMutex
	session map[string]sessionEntry
}

// maxSessionEntries bounds the session map; it is reset when full.
const maxSessionEntries = 10000

type sessionEntry struct {
	address string
	coords  domain.Coordinates
}

func normalizeAddress(address string) string {
	return strings.Join(strings.Fields(address), " ")
}

func NewCoordinateResolver(geocoder ports.Geocoder, cache ports.GeocodeCache) *CoordinateResolver {
	return &CoordinateResolver{
		geocoder: geocoder,
		cache:    cache,
		session:  make(map[string]sessionEntry),
	}
}

// Resolve geocodes one address. Blank addresses never reach the cache or geocoder.
func (r *CoordinateResolver) Resolve(ctx context.Context, address string) (coords domain.Coordinates, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("req_id=%s op=resolve_coordinates panic=%v", obs.RequestID(ctx), p)
			coords, ok = domain.Coordinates{}, false
		}
	}()

	norm := normalizeAddress(address)
	if norm == "" {
		return domain.Coordinates{}, false
	}

	if r.cache != nil {
		hits, err := r.cache.GetMany(ctx, []string{norm})
		if err != nil {
			log.Printf("req_id=%s op=resolve_coordinates cache_read err=%v", obs.RequestID(ctx), err)
		} else if c, found := hits[norm]; found {
			return c, true
		}
	}

	if r.geocoder == nil {
		return domain.Coordinates{}, false
	}

	c, err := r.geocoder.Geocode(ctx, norm)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("req_id=%s op=resolve_coordinates address=%q err=%v", obs.RequestID(ctx), norm, err)
		}
		return domain.Coordinates{}, false
	}
	if !c.Valid() {
		log.Printf("req_id=%s op=resolve_coordinates address=%q malformed=%v", obs.RequestID(ctx), norm, c)
		return domain.Coordinates{}, false
	}

	if r.cache != nil {
		if err := r.cache.PutMany(ctx, map[string]domain.Coordinates{norm: c}); err != nil {
			log.Printf("req_id=%s op=resolve_coordinates cache_write err=%v", obs.RequestID(ctx), err)
		}
	}

	return c, true
}

// ResolveEntity resolves an entity's address, remembering the answer for the
// life of the resolver. A remembered answer only counts while the entity's
// address is unchanged.
func (r *CoordinateResolver) ResolveEntity(ctx context.Context, e domain.Entity) (domain.Coordinates, bool) {
	norm := normalizeAddress(e.Address)
	if norm == "" {
		return domain.Coordinates{}, false
	}

	id := e.ID
	if id == "" {
		id = e.CacheKey()
	}

	r.mu.RLock()
	entry, found := r.session[id]
	r.mu.RUnlock()
	if found && entry.address == norm {
		return entry.coords, true
	}

	c, ok := r.Resolve(ctx, norm)
	if !ok {
		return domain.Coordinates{}, false
	}

	r.mu.Lock()
	if len(r.session) >= maxSessionEntries {
		r.session = make(map[string]sessionEntry)
	}
	r.session[id] = sessionEntry{address: norm, coords: c}
	r.mu.Unlock()

	return c, true
}
