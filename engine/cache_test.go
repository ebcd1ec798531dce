package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, capacity int) *TranspositionCache {
	t.Helper()
	c, err := NewTranspositionCache(capacity)
	require.NoError(t, err)
	return c
}

func TestCacheRejectsNonPositiveCapacity(t *testing.T) {
	_, err := NewTranspositionCache(0)
	assert.Error(t, err)
}

func TestCacheGetRequiresEnoughDepth(t *testing.T) {
	c := newTestCache(t, 8)
	c.Put(1, CacheEntry{Score: 50, Depth: 2})

	_, ok := c.Get(1, 3)
	assert.False(t, ok, "shallower entry must not answer a deeper query")

	entry, ok := c.Get(1, 2)
	require.True(t, ok)
	assert.Equal(t, int64(50), entry.Score)

	_, ok = c.Get(1, 0)
	assert.True(t, ok)
	_, ok = c.Get(2, 0)
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
}

func TestCacheRejectMovesHitToRejected(t *testing.T) {
	c := newTestCache(t, 8)
	c.Put(1, CacheEntry{Score: 50, Depth: 2, Bound: BoundLower})
	_, ok := c.Get(1, 1)
	require.True(t, ok)
	c.reject()

	stats := c.Stats()
	assert.Zero(t, stats.Hits)
	assert.Equal(t, uint64(1), stats.Rejected)
	assert.Zero(t, stats.Misses)
}

func TestCachePutKeepsDeeperValue(t *testing.T) {
	c := newTestCache(t, 8)
	c.Put(1, CacheEntry{Score: 10, Depth: 4})
	c.Put(1, CacheEntry{Score: 99, Depth: 1})
	entry, ok := c.Get(1, 0)
	require.True(t, ok)
	assert.Equal(t, int64(10), entry.Score)

	c.Put(1, CacheEntry{Score: 77, Depth: 4})
	entry, _ = c.Get(1, 0)
	assert.Equal(t, int64(77), entry.Score)

	c.Put(1, CacheEntry{Score: 5, Depth: 6})
	entry, _ = c.Get(1, 0)
	assert.Equal(t, int64(5), entry.Score)
	assert.Equal(t, 6, entry.Depth)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newTestCache(t, 3)
	c.Put(1, CacheEntry{Depth: 1})
	c.Put(2, CacheEntry{Depth: 1})
	c.Put(3, CacheEntry{Depth: 1})

	_, ok := c.Get(1, 0)
	require.True(t, ok)
	// A rejected shallower put still counts as a use.
	c.Put(2, CacheEntry{Depth: 0})

	oldest, ok := c.Oldest()
	require.True(t, ok)
	assert.Equal(t, uint64(3), oldest)

	c.Put(4, CacheEntry{Depth: 1})
	assert.Equal(t, 3, c.Len())
	_, ok = c.Get(3, 0)
	assert.False(t, ok, "3 was least recently used")
	for _, key := range []uint64{1, 2, 4} {
		_, ok := c.Get(key, 0)
		assert.True(t, ok, "key %d evicted", key)
	}
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestCacheNeverExceedsCapacity(t *testing.T) {
	const capacity = 16
	c := newTestCache(t, capacity)
	rng := rand.New(rand.NewSource(1))

	// Reference recency list, most recent last.
	var order []uint64
	touch := func(key uint64) {
		for i, k := range order {
			if k == key {
				order = append(order[:i], order[i+1:]...)
				break
			}
		}
		order = append(order, key)
	}

	for i := 0; i < 2000; i++ {
		key := uint64(rng.Intn(40))
		if rng.Intn(3) == 0 {
			if _, ok := c.Get(key, 0); ok {
				touch(key)
			}
			continue
		}
		var expectEvicted uint64
		willEvict := false
		if _, ok := c.lru.Peek(key); !ok && len(order) == capacity {
			expectEvicted, willEvict = order[0], true
		}
		c.Put(key, CacheEntry{Score: int64(i), Depth: rng.Intn(3)})
		if willEvict {
			order = order[1:]
			_, still := c.lru.Peek(expectEvicted)
			require.False(t, still, "expected %d to be evicted", expectEvicted)
		}
		touch(key)
		require.LessOrEqual(t, c.Len(), capacity)
	}
	assert.Equal(t, len(order), c.Len())
}

func TestCacheClearKeepsEvictionCount(t *testing.T) {
	c := newTestCache(t, 2)
	c.Put(1, CacheEntry{})
	c.Put(2, CacheEntry{})
	c.Put(3, CacheEntry{})
	c.Clear()
	assert.Zero(t, c.Len())
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}
