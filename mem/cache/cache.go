// Package cache provides a bounded, fully associative cache with
// least-recently-used replacement. The cache sits in front of a backing store
// that is consulted on every miss.
package cache

import (
	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
	"github.com/sarchlab/cachesim/sim"
)

// HookPosHit marks a Get that finds the key resident.
var HookPosHit = &sim.HookPos{Name: "CacheHit"}

// HookPosMiss marks a Get that does not find the key. The hook is invoked
// after the value is fetched from the backing store and inserted.
var HookPosMiss = &sim.HookPos{Name: "CacheMiss"}

// HookPosEvict marks the eviction of an entry. The Detail of the context is
// the key whose insertion caused the eviction.
var HookPosEvict = &sim.HookPos{Name: "CacheEvict"}

// HookPosStore marks an insertion or an overwrite.
var HookPosStore = &sim.HookPos{Name: "CacheStore"}

// Backing is where the cache fetches the values that it does not hold.
type Backing interface {
	Get(key string) int
}

// A Block is a key-value pair resident in the cache.
type Block struct {
	Key   string
	Value int
}

// Cache is a bounded cache with LRU eviction. A Cache is not safe for
// concurrent use.
type Cache struct {
	*sim.ComponentBase

	capacity     int
	backing      Backing
	tags         tagging.Tags
	victimFinder tagging.VictimFinder

	hits          uint64
	misses        uint64
	totalAccesses uint64
	evictions     uint64
}

// NewCache creates a cache with the given capacity in front of the backing
// store. It returns ErrInvalidCapacity if the capacity is not positive.
func NewCache(name string, capacity int, backing Backing) (*Cache, error) {
	return MakeBuilder().
		WithCapacity(capacity).
		WithBacking(backing).
		Build(name)
}

// Get returns the value of the key. A resident key is a hit and becomes the
// most recently used. Otherwise the value is fetched from the backing store
// and inserted, evicting the least recently used entry if the cache is full.
func (c *Cache) Get(key string) int {
	c.totalAccesses++

	block, found := c.tags.Lookup(key)
	if found {
		c.hits++
		c.tags.Visit(key)
		c.invokeHook(HookPosHit, Block(block), nil)

		return block.Value
	}

	c.misses++
	value := c.backing.Get(key)
	c.Put(key, value)
	c.invokeHook(HookPosMiss, Block{Key: key, Value: value}, nil)

	return value
}

// Put inserts or overwrites the value of the key and marks it as the most
// recently used. An entry is evicted only if the cache is full and the key is
// not resident.
func (c *Cache) Put(key string, value int) {
	_, found := c.tags.Lookup(key)
	if !found && c.tags.Len() >= c.capacity {
		c.evict(key)
	}

	c.tags.Update(tagging.Block{Key: key, Value: value})
	c.invokeHook(HookPosStore, Block{Key: key, Value: value}, nil)
}

func (c *Cache) evict(incomingKey string) {
	victim, ok := c.victimFinder.FindVictim(c.tags)
	if !ok {
		return
	}

	c.tags.Remove(victim.Key)
	c.evictions++
	c.invokeHook(HookPosEvict, Block(victim), incomingKey)
}

func (c *Cache) invokeHook(pos *sim.HookPos, entry Block, detail any) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   entry,
		Detail: detail,
	})
}

// Contains tells if the key is resident. It does not count as an access and
// does not change the recency order.
func (c *Cache) Contains(key string) bool {
	_, found := c.tags.Lookup(key)
	return found
}

// Entries lists the resident entries from the least recently used to the most
// recently used.
func (c *Cache) Entries() []Block {
	blocks := c.tags.Blocks()

	entries := make([]Block, len(blocks))
	for i, b := range blocks {
		entries[i] = Block(b)
	}

	return entries
}

// Size returns the number of resident entries.
func (c *Cache) Size() int {
	return c.tags.Len()
}

// Capacity returns the maximum number of resident entries.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Hits returns the number of Get calls that found the key resident.
func (c *Cache) Hits() uint64 {
	return c.hits
}

// Misses returns the number of Get calls that went to the backing store.
func (c *Cache) Misses() uint64 {
	return c.misses
}

// TotalAccesses returns the number of Get calls.
func (c *Cache) TotalAccesses() uint64 {
	return c.totalAccesses
}

// Evictions returns the number of entries evicted so far.
func (c *Cache) Evictions() uint64 {
	return c.evictions
}

// HitRate returns the percentage of accesses that hit, or 0 before the first
// access.
func (c *Cache) HitRate() float64 {
	return percent(c.hits, c.totalAccesses)
}

// MissRate returns the percentage of accesses that missed, or 0 before the
// first access.
func (c *Cache) MissRate() float64 {
	return percent(c.misses, c.totalAccesses)
}

// Stats takes a snapshot of the counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Capacity:      c.capacity,
		Size:          c.Size(),
		Hits:          c.hits,
		Misses:        c.misses,
		TotalAccesses: c.totalAccesses,
		Evictions:     c.evictions,
		HitRate:       c.HitRate(),
		MissRate:      c.MissRate(),
	}
}

func percent(part, total uint64) float64 {
	if total == 0 {
		return 0
	}

	return float64(part) / float64(total) * 100
}
