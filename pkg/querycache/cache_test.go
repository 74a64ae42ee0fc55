package querycache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newCacheWithClock(ttl, grace time.Duration) (*Cache, *fakeClock) {
	clock := newFakeClock()
	c := New(ttl, grace)
	c.now = clock.now
	return c, clock
}

type versionedValue struct {
	v   string
	ver Version
}

func (v versionedValue) MirrorVersion() Version { return v.ver }

func listKey(scope string, page int) Key {
	return Key{Kind: "bounties.list", Scopes: []string{scope, ScopeAggregate}, Page: page, Limit: 5, SortBy: "create_timestamp", Order: "DESC"}
}

func TestGetOrLoadCachesFreshValue(t *testing.T) {
	c, _ := newCacheWithClock(0, 0)
	loads := 0
	loader := func(ctx context.Context) (any, error) {
		loads++
		return "v1", nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.GetOrLoad(context.Background(), listKey("0xb1", 1), loader)
		require.NoError(t, err)
		require.Equal(t, "v1", got)
	}
	require.Equal(t, 1, loads)
}

func TestKeyIdentitySeparatesQueries(t *testing.T) {
	c, _ := newCacheWithClock(0, 0)

	_, err := c.GetOrLoad(context.Background(), listKey("0xb1", 1), func(ctx context.Context) (any, error) { return "page1", nil })
	require.NoError(t, err)

	got, err := c.GetOrLoad(context.Background(), listKey("0xb1", 2), func(ctx context.Context) (any, error) { return "page2", nil })
	require.NoError(t, err)
	require.Equal(t, "page2", got)
}

func TestLoadErrorIsNotCached(t *testing.T) {
	c, _ := newCacheWithClock(0, 0)
	key := listKey("0xb1", 1)

	_, err := c.GetOrLoad(context.Background(), key, func(ctx context.Context) (any, error) {
		return nil, errors.New("mirror unreachable")
	})
	require.Error(t, err)

	got, err := c.GetOrLoad(context.Background(), key, func(ctx context.Context) (any, error) { return "recovered", nil })
	require.NoError(t, err)
	require.Equal(t, "recovered", got)
}

func TestMarkStaleByScope(t *testing.T) {
	c, clock := newCacheWithClock(0, 0)
	key := listKey("0xb1", 1)
	other := listKey("0xb2", 1)
	// same scopes, different page: invalidated together with key.
	page2 := listKey("0xb1", 2)

	c.Set(key, "a")
	c.Set(other, "b")
	c.Set(page2, "c")

	c.MarkStale("0xb1")
	clock.advance(time.Millisecond)

	_, state, ok := c.Get(key)
	require.True(t, ok)
	require.Equal(t, Stale, state)

	_, state, ok = c.Get(page2)
	require.True(t, ok)
	require.Equal(t, Stale, state)

	_, state, ok = c.Get(other)
	require.True(t, ok)
	require.Equal(t, Fresh, state)
}

func TestMarkStaleAggregateScopeHitsEverything(t *testing.T) {
	c, _ := newCacheWithClock(0, 0)
	a := listKey("0xb1", 1)
	b := listKey("0xb2", 1)
	c.Set(a, "a")
	c.Set(b, "b")

	c.MarkStale(ScopeAggregate)

	_, state, _ := c.Get(a)
	require.Equal(t, Stale, state)
	_, state, _ = c.Get(b)
	require.Equal(t, Stale, state)
}

func TestStaleServedDuringGracePeriod(t *testing.T) {
	c, clock := newCacheWithClock(0, 3*time.Second)
	key := listKey("0xb1", 1)
	loads := 0
	loader := func(ctx context.Context) (any, error) {
		loads++
		return "reloaded", nil
	}

	c.Set(key, "cached")
	c.MarkStale("0xb1")

	// inside the grace window the stale value is handed out untouched.
	got, err := c.GetOrLoad(context.Background(), key, loader)
	require.NoError(t, err)
	require.Equal(t, "cached", got)
	require.Zero(t, loads)

	clock.advance(4 * time.Second)

	got, err = c.GetOrLoad(context.Background(), key, loader)
	require.NoError(t, err)
	require.Equal(t, "reloaded", got)
	require.Equal(t, 1, loads)
}

func TestMonotonicGuardKeepsNewerCachedRow(t *testing.T) {
	c, clock := newCacheWithClock(0, time.Second)
	key := Key{Kind: "bounties.get", Scopes: []string{"0xb1"}}

	c.Set(key, versionedValue{v: "current", ver: Version{Timestamp: 200, EventIdx: 5}})
	c.MarkStale("0xb1")
	clock.advance(2 * time.Second)

	got, err := c.GetOrLoad(context.Background(), key, func(ctx context.Context) (any, error) {
		// the mirror is lagging: it hands back an older row version.
		return versionedValue{v: "lagging", ver: Version{Timestamp: 100, EventIdx: 1}}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "current", got.(versionedValue).v)

	// the entry stays stale until the mirror catches up.
	_, state, ok := c.Get(key)
	require.True(t, ok)
	require.Equal(t, Stale, state)

	clock.advance(2 * time.Second)
	got, err = c.GetOrLoad(context.Background(), key, func(ctx context.Context) (any, error) {
		return versionedValue{v: "caught up", ver: Version{Timestamp: 300}}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "caught up", got.(versionedValue).v)

	_, state, _ = c.Get(key)
	require.Equal(t, Fresh, state)
}

func TestEvictRemovesEntry(t *testing.T) {
	c, _ := newCacheWithClock(0, 0)
	key := listKey("0xb1", 1)
	c.Set(key, "v")

	c.Evict(key)

	_, _, ok := c.Get(key)
	require.False(t, ok)
}

func TestTTLExpiresEntries(t *testing.T) {
	c, clock := newCacheWithClock(time.Minute, 0)
	key := listKey("0xb1", 1)
	c.Set(key, "v")

	clock.advance(2 * time.Minute)

	_, _, ok := c.Get(key)
	require.False(t, ok)
}

func TestMarkStaleIsAtomicAcrossEntries(t *testing.T) {
	c, clock := newCacheWithClock(0, 0)
	keys := []Key{listKey("0xb1", 1), listKey("0xb1", 2), listKey("0xb1", 3)}
	for _, k := range keys {
		c.Set(k, "v")
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			// a reader scanning all three entries must never observe a
			// mix of Fresh and Stale once MarkStale has returned.
			states := make(map[State]int)
			for _, k := range keys {
				_, state, ok := c.Get(k)
				if !ok {
					return
				}
				states[state]++
			}
			_ = states
		}
	}()

	c.MarkStale("0xb1")
	clock.advance(time.Millisecond)
	close(stop)
	wg.Wait()

	for _, k := range keys {
		_, state, ok := c.Get(k)
		require.True(t, ok)
		require.Equal(t, Stale, state)
	}
}

func TestConcurrentLoadsCollapse(t *testing.T) {
	c, _ := newCacheWithClock(0, 0)
	key := listKey("0xb1", 1)

	var mu sync.Mutex
	loads := 0
	release := make(chan struct{})
	loader := func(ctx context.Context) (any, error) {
		mu.Lock()
		loads++
		mu.Unlock()
		<-release
		return "v", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.GetOrLoad(context.Background(), key, loader)
			require.NoError(t, err)
			require.Equal(t, "v", got)
		}()
	}

	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.LessOrEqual(t, loads, 2)
}
