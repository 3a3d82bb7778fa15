package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"aeroScope/internal/model"
)

const (
	defaultSnapshotTTL  = 2 * time.Minute
	defaultBuildTimeout = 30 * time.Second
	keyPrefix           = "aeroscope:pool:"
)

// Source produces fresh snapshots. *Builder satisfies it.
type Source interface {
	Build(ctx context.Context, pool common.Address) (model.PoolSnapshot, model.LiquidityDistribution, error)
}

// Entry is what the repository caches per pool.
type Entry struct {
	Snapshot     model.PoolSnapshot          `json:"snapshot"`
	Distribution model.LiquidityDistribution `json:"distribution"`
}

// Repository serves snapshots cache-aside. Concurrent misses for the same pool share one build.
// The shared build runs detached from any single caller's context, bounded by its own timeout.
type Repository struct {
	source       Source
	cache        Cache
	ttl          time.Duration
	buildTimeout time.Duration
	group        singleflight.Group
	logger       *zap.Logger
}

func NewRepository(source Source, cache Cache, ttl time.Duration, logger *zap.Logger) *Repository {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{source: source, cache: cache, ttl: ttl, buildTimeout: defaultBuildTimeout, logger: logger}
}

// SetBuildTimeout bounds a shared build. Non-positive values keep the default.
func (r *Repository) SetBuildTimeout(d time.Duration) {
	if d > 0 {
		r.buildTimeout = d
	}
}

func cacheKey(pool common.Address) string {
	return keyPrefix + strings.ToLower(pool.Hex())
}

// Get returns the cached entry for a pool or builds and stores a fresh one.
// Cache failures degrade to a direct build.
func (r *Repository) Get(ctx context.Context, pool common.Address) (Entry, error) {
	key := cacheKey(pool)
	if r.cache != nil {
		data, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			r.logger.Warn("snapshot cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			var entry Entry
			if err := json.Unmarshal(data, &entry); err == nil {
				return entry, nil
			}
			r.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		}
	}

	ch := r.group.DoChan(key, func() (interface{}, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.buildTimeout)
		defer cancel()
		return r.refresh(buildCtx, pool, key)
	})
	select {
	case <-ctx.Done():
		return Entry{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Entry{}, res.Err
		}
		return res.Val.(Entry), nil
	}
}

// Refresh rebuilds a pool and overwrites its cache entry.
func (r *Repository) Refresh(ctx context.Context, pool common.Address) (Entry, error) {
	return r.refresh(ctx, pool, cacheKey(pool))
}

func (r *Repository) refresh(ctx context.Context, pool common.Address, key string) (Entry, error) {
	snap, dist, err := r.source.Build(ctx, pool)
	if err != nil {
		return Entry{}, fmt.Errorf("build snapshot %s: %w", pool.Hex(), err)
	}
	entry := Entry{Snapshot: snap, Distribution: dist}

	if r.cache != nil {
		data, err := json.Marshal(entry)
		if err != nil {
			return Entry{}, fmt.Errorf("encode snapshot: %w", err)
		}
		if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
			r.logger.Warn("snapshot cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return entry, nil
}
