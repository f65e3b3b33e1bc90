package services

import (
	"context"
	"log"
	"market-distance-service/internal/domain"
	"market-distance-service/internal/platform/obs"
	"sync/atomic"
	"time"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type RunState string

const (
	StateIdle     RunState = "IDLE"
	StateLoading  RunState = "LOADING"
	StateBatching RunState = "BATCHING"
	StateDone     RunState = "DONE"
)

// Progress is a snapshot handed to a ProgressFunc. Labels is a copy and may be kept.
type Progress struct {
	State        RunState
	Labels       map[string]string
	BatchesDone  int
	BatchesTotal int
}

type ProgressFunc func(Progress)

type OrchestratorOptions struct {
	BatchSize  int
	BatchDelay time.Duration
	// StraightLine is the fallback when no road distance is available.
	StraightLine StraightLineFunc
	// OriginGeohashPrecision > 0 appends "@<geohash>" of the user location to
	// cache keys, so a user who moves gets fresh distances.
	OriginGeohashPrecision int
}

const (
	DefaultBatchSize  = 3
	DefaultBatchDelay = 100 * time.Millisecond
)

// DistanceOrchestrator produces a distance label per entity: cached labels first,
// then the misses in sequential batches whose members run concurrently.
type DistanceOrchestrator struct {
	coords *CoordinateResolver
	roads  *RoadDistanceResolver
	cache  *DistanceCacheStore
	opts   OrchestratorOptions

	running atomic.Int32
}

func NewDistanceOrchestrator(
	coords *CoordinateResolver,
	roads *RoadDistanceResolver,
	cache *DistanceCacheStore,
	opts OrchestratorOptions,
) *DistanceOrchestrator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.BatchDelay < 0 {
		opts.BatchDelay = 0
	}
	if opts.StraightLine == nil {
		opts.StraightLine = haversineBetween
	}
	return &DistanceOrchestrator{coords: coords, roads: roads, cache: cache, opts: opts}
}

// InProgress reports whether any run is currently active.
func (o *DistanceOrchestrator) InProgress() bool {
	return o.running.Load() > 0
}

// KeyFor returns the cache key an entity's label is stored under for this user.
func (o *DistanceOrchestrator) KeyFor(e domain.Entity, user *domain.Coordinates) string {
	key := e.CacheKey()
	if o.opts.OriginGeohashPrecision > 0 && user != nil {
		key += "@" + geohash.EncodeWithPrecision(user.Lat, user.Lng, o.opts.OriginGeohashPrecision)
	}
	return key
}

// Refresh recomputes whatever the cache does not hold. Callers decide when to run it.
func (o *DistanceOrchestrator) Refresh(
	ctx context.Context,
	entities []domain.Entity,
	user *domain.Coordinates,
	progress ProgressFunc,
) (map[string]string, error) {
	return o.ComputeDistances(ctx, entities, user, progress)
}

// ComputeDistances returns labels keyed by KeyFor. Per-entity failures become
// "-- mi" and never abort the run. When ctx is cancelled the batch in flight is
// dropped and the labels gathered so far are returned with ctx.Err().
func (o *DistanceOrchestrator) ComputeDistances(
	ctx context.Context,
	entities []domain.Entity,
	user *domain.Coordinates,
	progress ProgressFunc,
) (map[string]string, error) {
	o.running.Add(1)
	defer o.running.Add(-1)

	runID := uuid.NewString()
	start := time.Now()

	result := make(map[string]string, len(entities))
	report := func(state RunState, done, total int) {
		if progress == nil {
			return
		}
		snapshot := make(map[string]string, len(result))
		for k, v := range result {
			snapshot[k] = v
		}
		progress(Progress{State: state, Labels: snapshot, BatchesDone: done, BatchesTotal: total})
	}

	cached := o.cache.Load(ctx)

	seen := make(map[string]struct{}, len(entities))
	pending := make([]domain.Entity, 0, len(entities))
	for _, e := range entities {
		key := o.KeyFor(e, user)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if label, ok := cached[key]; ok {
			result[key] = label
			continue
		}
		pending = append(pending, e)
	}

	batches := chunkEntities(pending, o.opts.BatchSize)
	report(StateLoading, 0, len(batches))

	if len(pending) > 0 && user == nil {
		for _, e := range pending {
			result[o.KeyFor(e, nil)] = domain.LabelUnavailable
		}
		report(StateDone, 0, 0)
		return result, nil
	}

	for i, batch := range batches {
		if i > 0 {
			if err := sleepContext(ctx, o.opts.BatchDelay); err != nil {
				return result, err
			}
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		labels := o.runBatch(ctx, batch, *user)
		if err := ctx.Err(); err != nil {
			return result, err
		}

		for k, v := range labels {
			result[k] = v
		}

		if err := o.cache.Save(ctx, result); err != nil {
			log.Printf("req_id=%s run_id=%s op=distances.cache_save err=%v", obs.RequestID(ctx), runID, err)
		}

		report(StateBatching, i+1, len(batches))
	}

	report(StateDone, len(batches), len(batches))

	log.Printf("req_id=%s run_id=%s op=distances entities=%d cached=%d computed=%d batches=%d dur=%dms",
		obs.RequestID(ctx), runID, len(seen), len(seen)-len(pending), len(pending), len(batches),
		time.Since(start).Milliseconds())

	return result, nil
}

func (o *DistanceOrchestrator) runBatch(ctx context.Context, batch []domain.Entity, user domain.Coordinates) map[string]string {
	labels := make([]string, len(batch))

	// A plain Group: one entity's failure must not cancel its siblings.
	var g errgroup.Group
	for i, e := range batch {
		i, e := i, e
		g.Go(func() error {
			labels[i] = o.labelFor(ctx, e, user)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]string, len(batch))
	for i, e := range batch {
		out[o.KeyFor(e, &user)] = labels[i]
	}
	return out
}

func (o *DistanceOrchestrator) labelFor(ctx context.Context, e domain.Entity, user domain.Coordinates) (label string) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("req_id=%s op=distances.entity id=%s panic=%v", obs.RequestID(ctx), e.ID, p)
			label = domain.LabelUnknown
		}
	}()

	dest, ok := o.coords.ResolveEntity(ctx, e)
	if !ok {
		return domain.LabelUnknown
	}

	if rd, ok := o.roads.Resolve(ctx, user, dest); ok {
		return rd.Text
	}

	return domain.FormatMiles(o.opts.StraightLine(user, dest))
}

func chunkEntities(entities []domain.Entity, size int) [][]domain.Entity {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][]domain.Entity
	for start := 0; start < len(entities); start += size {
		end := min(start+size, len(entities))
		out = append(out, entities[start:end])
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
