// Package querycache keeps client-visible query results consistent with
// newly confirmed on-chain transactions. Entries move Fresh -> Stale when a
// write lands, and Stale -> Fresh once the grace period has passed and a
// refetch succeeds; Fresh -> Evicted on explicit eviction.
package querycache

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

var (
	cacheHits          = prometheus.NewCounter(prometheus.CounterOpts{Name: "querycache_hits_total"})
	cacheMiss          = prometheus.NewCounter(prometheus.CounterOpts{Name: "querycache_miss_total"})
	cacheStaleServed   = prometheus.NewCounter(prometheus.CounterOpts{Name: "querycache_stale_served_total"})
	cacheInvalidations = prometheus.NewCounter(prometheus.CounterOpts{Name: "querycache_invalidations_total"})
)

type State int

const (
	Fresh State = iota
	Stale
)

type entry struct {
	key      Key
	val      any
	state    State
	storedAt time.Time
	// eligibleAt gates refetches of a Stale entry: before it, the external
	// indexer may legitimately still serve pre-write data, so the stale
	// value is handed out instead of reloading.
	eligibleAt time.Time
}

type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry

	ttl   time.Duration
	grace time.Duration

	group singleflight.Group
	now   func() time.Time

	// publish, when set, fans invalidated scopes out to peer replicas.
	publish func(scopes []string)
}

func New(ttl, grace time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		ttl:     ttl,
		grace:   grace,
		now:     time.Now,
	}
}

// Get returns the cached value and whether it is Fresh. Expired or missing
// entries report ok=false.
func (c *Cache) Get(key Key) (any, State, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key.canonical()]
	if !ok {
		return nil, Fresh, false
	}
	if c.ttl > 0 && c.now().Sub(e.storedAt) > c.ttl {
		return nil, Fresh, false
	}
	return e.val, e.state, true
}

func (c *Cache) Set(key Key, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key.canonical()] = &entry{
		key:      key,
		val:      val,
		state:    Fresh,
		storedAt: c.now(),
	}
}

func (c *Cache) Evict(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key.canonical())
}

// MarkStale transitions every entry scoped to any of the given scopes to
// Stale in a single lock acquisition, so concurrent readers observe either
// the fully Fresh or the fully Stale state of each entry. Refetch becomes
// eligible only after the grace period.
func (c *Cache) MarkStale(scopes ...string) {
	c.markStale(scopes)

	c.mu.RLock()
	publish := c.publish
	c.mu.RUnlock()
	if publish != nil {
		publish(scopes)
	}
}

// setPublisher installs the replica fanout hook. Guarded by mu: a fanout may
// be wired while other goroutines are already invalidating.
func (c *Cache) setPublisher(fn func(scopes []string)) {
	c.mu.Lock()
	c.publish = fn
	c.mu.Unlock()
}

func (c *Cache) markStale(scopes []string) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.state == Stale || !e.key.hasAnyScope(scopes) {
			continue
		}
		e.state = Stale
		e.eligibleAt = now.Add(c.grace)
		cacheInvalidations.Inc()
	}
}

// GetOrLoad returns the cached value for key, loading it through loader on a
// miss. Concurrent loads of the same key are collapsed. A Stale entry inside
// its grace period serves the stale value without reloading; after the grace
// period the loader runs, and its result replaces the entry unless the
// mirror handed back an older row version than the one already cached, in
// which case the entry stays Stale and the cached value is returned.
func (c *Cache) GetOrLoad(ctx context.Context, key Key, loader func(ctx context.Context) (any, error)) (any, error) {
	canonical := key.canonical()

	c.mu.RLock()
	e, ok := c.entries[canonical]
	if ok && (c.ttl <= 0 || c.now().Sub(e.storedAt) <= c.ttl) {
		switch {
		case e.state == Fresh:
			val := e.val
			c.mu.RUnlock()
			cacheHits.Inc()
			return val, nil
		case c.now().Before(e.eligibleAt):
			val := e.val
			c.mu.RUnlock()
			cacheStaleServed.Inc()
			return val, nil
		}
	}
	c.mu.RUnlock()

	cacheMiss.Inc()
	val, err, _ := c.group.Do(canonical, func() (any, error) {
		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}

		if kept, ok := c.keepNewer(key, loaded); ok {
			return kept, nil
		}

		c.Set(key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return val, nil
}

// keepNewer applies the monotonic guard: when both the cached and the loaded
// value carry mirror versions and the cached one is newer, the cached value
// wins and the entry stays Stale until the mirror catches up.
func (c *Cache) keepNewer(key Key, loaded any) (any, bool) {
	loadedVer, ok := loaded.(Versioned)
	if !ok {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.canonical()]
	if !ok {
		return nil, false
	}
	cachedVer, ok := e.val.(Versioned)
	if !ok || !cachedVer.MirrorVersion().Newer(loadedVer.MirrorVersion()) {
		return nil, false
	}

	e.eligibleAt = c.now().Add(c.grace)
	return e.val, true
}
