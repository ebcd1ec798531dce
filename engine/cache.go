package engine

import (
	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/pkg/errors"
)

type Bound uint8

const (
	BoundExact Bound = iota
	// BoundLower: the search failed high, the true value is at least Score.
	BoundLower
	// BoundUpper: the search failed low, the true value is at most Score.
	BoundUpper
)

func (b Bound) String() string {
	switch b {
	case BoundExact:
		return "EXACT"
	case BoundLower:
		return "LOWER"
	case BoundUpper:
		return "UPPER"
	default:
		return "UNKNOWN"
	}
}

type CacheEntry struct {
	Score int64
	Depth int
	Bound Bound
}

type CacheStats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	// Rejected counts entries deep enough but with a bound outside the
	// caller's window. They are not counted as hits.
	Rejected  uint64 `json:"rejected"`
	Evictions uint64 `json:"evictions"`
	Size      int    `json:"size"`
	Capacity  int    `json:"capacity"`
}

// TranspositionCache is a fixed-capacity LRU from fingerprint to search
// result. It is owned by one Engine and is not safe for concurrent use.
type TranspositionCache struct {
	lru      *simplelru.LRU[uint64, CacheEntry]
	capacity int
	stats    CacheStats
}

func NewTranspositionCache(capacity int) (*TranspositionCache, error) {
	c := &TranspositionCache{capacity: capacity}
	lru, err := simplelru.NewLRU[uint64, CacheEntry](capacity, func(uint64, CacheEntry) {
		c.stats.Evictions++
	})
	if err != nil {
		return nil, errors.Wrapf(err, "transposition cache capacity %d", capacity)
	}
	c.lru = lru
	return c, nil
}

// Get hits only for entries computed with at least requiredDepth plies
// remaining. A hit refreshes the entry's recency.
func (c *TranspositionCache) Get(fingerprint uint64, requiredDepth int) (CacheEntry, bool) {
	entry, ok := c.lru.Peek(fingerprint)
	if !ok || entry.Depth < requiredDepth {
		c.stats.Misses++
		return CacheEntry{}, false
	}
	c.lru.Get(fingerprint)
	c.stats.Hits++
	return entry, true
}

// reject turns the last hit into a rejection.
func (c *TranspositionCache) reject() {
	c.stats.Hits--
	c.stats.Rejected++
}

// Put stores entry unless a more deeply computed one is already cached; in
// both cases the fingerprint becomes the most recently used.
func (c *TranspositionCache) Put(fingerprint uint64, entry CacheEntry) {
	if existing, ok := c.lru.Get(fingerprint); ok && existing.Depth > entry.Depth {
		return
	}
	c.lru.Add(fingerprint, entry)
}

func (c *TranspositionCache) Len() int {
	return c.lru.Len()
}

func (c *TranspositionCache) Capacity() int {
	return c.capacity
}

// Oldest returns the fingerprint that the next insertion would evict.
func (c *TranspositionCache) Oldest() (uint64, bool) {
	key, _, ok := c.lru.GetOldest()
	return key, ok
}

// Clear drops every entry. Purge runs the eviction callback, which must not
// count as capacity evictions.
func (c *TranspositionCache) Clear() {
	evictions := c.stats.Evictions
	c.lru.Purge()
	c.stats.Evictions = evictions
}

func (c *TranspositionCache) Stats() CacheStats {
	stats := c.stats
	stats.Size = c.lru.Len()
	stats.Capacity = c.capacity
	return stats
}
