package catalog

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// FetchFunc retrieves the full catalog from the upstream API.
type FetchFunc func(ctx context.Context) ([]Product, error)

// CacheConfig holds the catalog cache configuration.
type CacheConfig struct {
	// TTL is how long a snapshot is considered fresh. Once exceeded, the
	// snapshot is still served but a background refresh is started.
	TTL time.Duration

	// RefreshTimeout bounds a single background refresh cycle.
	RefreshTimeout time.Duration
}

// DefaultCacheConfig returns the default catalog cache configuration.
// The catalog TTL is independent from the image cache TTL.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:            30 * time.Minute,
		RefreshTimeout: 5 * time.Minute,
	}
}

// Cache holds the last-known-good catalog snapshot and refreshes it with
// stale-while-revalidate semantics: stale data is served immediately while
// at most one background refresh runs. The snapshot is replaced by atomic
// swap; readers never observe a partially written catalog.
type Cache struct {
	fetch  FetchFunc
	config CacheConfig
	logger zerolog.Logger

	snapshot atomic.Pointer[Snapshot]

	// refreshing is the single-flight guard for background refreshes:
	// starting one is a CAS from false to true.
	refreshing atomic.Bool

	// initial coalesces concurrent blocking fetches while the cache is
	// still empty, so the first wave of callers shares one upstream fetch.
	initial singleflight.Group
}

// NewCache creates a catalog cache backed by fetch.
func NewCache(fetch FetchFunc, cfg CacheConfig) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheConfig().TTL
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = DefaultCacheConfig().RefreshTimeout
	}
	return &Cache{
		fetch:  fetch,
		config: cfg,
		logger: log.With().Str("component", "catalog-cache").Logger(),
	}
}

// Snapshot returns the best available catalog snapshot.
//
// Empty cache: the caller blocks on a full upstream fetch; concurrent
// callers share that single fetch and its outcome. Fresh snapshot: served
// directly. Stale snapshot: served directly while a background refresh is
// started unless one is already in flight.
func (c *Cache) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := c.snapshot.Load()
	if snap == nil {
		return c.initialFetch()
	}

	age := snap.Age()
	SnapshotAge.Set(age.Seconds())

	if age < c.config.TTL {
		SnapshotServed.WithLabelValues("fresh").Inc()
		return snap, nil
	}

	SnapshotServed.WithLabelValues("stale").Inc()
	c.logger.Debug().
		Dur("age", age).
		Dur("ttl", c.config.TTL).
		Msg("Serving stale snapshot")

	if c.refreshing.CompareAndSwap(false, true) {
		go c.backgroundRefresh()
	} else {
		RefreshesTotal.WithLabelValues("skipped").Inc()
	}

	return snap, nil
}

// initialFetch performs the blocking first-ever fetch. All callers arriving
// while the cache is empty share a single upstream fetch via singleflight.
// The fetch runs on its own context: it is shared by every coalesced caller,
// so no single caller's cancellation may abort it.
func (c *Cache) initialFetch() (*Snapshot, error) {
	v, err, _ := c.initial.Do("catalog", func() (any, error) {
		// Another caller may have populated the cache while we queued.
		if snap := c.snapshot.Load(); snap != nil {
			return snap, nil
		}

		c.logger.Info().Msg("Cache empty, performing blocking catalog fetch")

		ctx, cancel := context.WithTimeout(context.Background(), c.config.RefreshTimeout)
		defer cancel()

		products, err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}

		snap := NewSnapshot(products)
		c.store(snap)
		SnapshotServed.WithLabelValues("initial").Inc()
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// backgroundRefresh runs one refresh cycle and clears the in-flight flag
// when done. Failures are logged and swallowed: the old snapshot stays in
// place (availability over freshness).
func (c *Cache) backgroundRefresh() {
	defer c.refreshing.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), c.config.RefreshTimeout)
	defer cancel()

	start := time.Now()
	if err := c.Refresh(ctx); err != nil {
		RefreshesTotal.WithLabelValues("failure").Inc()
		c.logger.Error().
			Err(err).
			Dur("duration", time.Since(start)).
			Msg("Background refresh failed, keeping previous snapshot")
		return
	}

	RefreshesTotal.WithLabelValues("success").Inc()
	c.logger.Info().
		Dur("duration", time.Since(start)).
		Int("products", c.snapshot.Load().Len()).
		Msg("Catalog refreshed")
}

// Refresh fetches the catalog and atomically swaps in the new snapshot.
// On failure the existing snapshot is left untouched.
func (c *Cache) Refresh(ctx context.Context) error {
	products, err := c.fetch(ctx)
	if err != nil {
		return err
	}
	c.store(NewSnapshot(products))
	return nil
}

// store installs snap unless it would move FetchedAt backwards.
func (c *Cache) store(snap *Snapshot) {
	for {
		current := c.snapshot.Load()
		if current != nil && !snap.FetchedAt.After(current.FetchedAt) {
			return
		}
		if c.snapshot.CompareAndSwap(current, snap) {
			SnapshotProducts.Set(float64(snap.Len()))
			SnapshotAge.Set(0)
			return
		}
	}
}

// Loaded reports whether the cache holds a snapshot.
func (c *Cache) Loaded() bool {
	return c.snapshot.Load() != nil
}
