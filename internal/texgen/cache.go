package texgen

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"

	"avatar-morph/internal/logging"
	"avatar-morph/internal/skintone"
)

// DefaultCapacity is the number of tones kept when none is configured.
const DefaultCapacity = 50

// Cache is an LRU of generated maps keyed by exact tone RGB. One cache is
// meant to be shared by every avatar in the process; it is safe for
// concurrent use. All entries are generated with the cache's Options.
type Cache struct {
	mu       sync.Mutex
	entries  map[uint32]*cacheEntry
	lru      *list.List // front = most recent
	capacity int
	opts     Options

	generate func(skintone.Tone, Options) *Maps
	now      func() time.Time

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type cacheEntry struct {
	key        uint32
	maps       *Maps
	element    *list.Element
	accesses   int
	created    time.Time
	lastAccess time.Time
}

// EntryInfo describes one cached tone.
type EntryInfo struct {
	Key         uint32
	AccessCount int
	Created     time.Time
	LastAccess  time.Time
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries   int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	HitRate   float64
}

// NewCache creates a cache holding at most capacity tones.
func NewCache(capacity int, opts Options) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		entries:  make(map[uint32]*cacheEntry),
		lru:      list.New(),
		capacity: capacity,
		opts:     opts,
		generate: Generate,
		now:      time.Now,
	}
}

// Options returns the generation options of every entry.
func (c *Cache) Options() Options { return c.opts }

// Get returns the maps for tone, generating them on a miss. Two calls with
// the same RGB return the same *Maps until it is evicted.
func (c *Cache) Get(tone skintone.Tone) *Maps {
	key := tone.Key()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.touch(e)
		c.mu.Unlock()
		c.hits.Add(1)
		return e.maps
	}
	c.mu.Unlock()

	c.misses.Add(1)
	maps := c.generate(tone, c.opts)

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another caller may have generated the same tone meanwhile.
	if e, ok := c.entries[key]; ok {
		maps.Dispose()
		c.touch(e)
		return e.maps
	}
	now := c.now()
	e := &cacheEntry{key: key, maps: maps, accesses: 1, created: now, lastAccess: now}
	e.element = c.lru.PushFront(e)
	c.entries[key] = e
	for c.lru.Len() > c.capacity {
		c.evictOldest()
	}
	logging.Logger().Debug("skin maps generated", "key", key, "size", maps.Size, "entries", c.lru.Len())
	return maps
}

// Peek returns cached maps without generating or touching LRU order.
func (c *Cache) Peek(tone skintone.Tone) (*Maps, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[tone.Key()]
	if !ok {
		return nil, false
	}
	return e.maps, true
}

// Entry reports access metadata for tone.
func (c *Cache) Entry(tone skintone.Tone) (EntryInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[tone.Key()]
	if !ok {
		return EntryInfo{}, false
	}
	return EntryInfo{Key: e.key, AccessCount: e.accesses, Created: e.created, LastAccess: e.lastAccess}, true
}

// Len returns the number of cached tones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns current counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	n := c.lru.Len()
	c.mu.Unlock()

	hits, misses := c.hits.Load(), c.misses.Load()
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{
		Entries:   n,
		Capacity:  c.capacity,
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
		HitRate:   rate,
	}
}

// Dispose releases every cached map. Counters are kept.
func (c *Cache) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.lru.Len() > 0 {
		c.evictOldest()
	}
}

// Reset disposes every entry and zeroes the counters.
func (c *Cache) Reset() {
	c.Dispose()
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}

func (c *Cache) touch(e *cacheEntry) {
	e.accesses++
	e.lastAccess = c.now()
	c.lru.MoveToFront(e.element)
}

// evictOldest disposes the pixel buffers of the least recent entry, then
// drops it. Callers hold mu.
func (c *Cache) evictOldest() {
	back := c.lru.Back()
	if back == nil {
		return
	}
	e := back.Value.(*cacheEntry)
	e.maps.Dispose()
	c.lru.Remove(back)
	delete(c.entries, e.key)
	c.evictions.Add(1)
}
