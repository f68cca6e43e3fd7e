package cache

import (
	"fmt"

	"github.com/sarchlab/cachesim/mem/cache/internal/tagging"
	"github.com/sarchlab/cachesim/sim"
)

// DefaultCapacity is the number of entries a cache holds unless configured
// otherwise.
const DefaultCapacity = 5

// A Builder can build caches.
type Builder struct {
	capacity     int
	backing      Backing
	victimFinder tagging.VictimFinder
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		capacity:     DefaultCapacity,
		victimFinder: tagging.NewLRUVictimFinder(),
	}
}

// WithCapacity sets the number of entries the cache can hold.
func (b Builder) WithCapacity(capacity int) Builder {
	b.capacity = capacity
	return b
}

// WithBacking sets the store that serves the misses.
func (b Builder) WithBacking(backing Backing) Builder {
	b.backing = backing
	return b
}

// WithVictimFinder sets the replacement policy.
func (b Builder) WithVictimFinder(victimFinder tagging.VictimFinder) Builder {
	b.victimFinder = victimFinder
	return b
}

// Build creates a new, empty cache.
func (b Builder) Build(name string) (*Cache, error) {
	if b.capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, b.capacity)
	}

	if b.backing == nil {
		panic("backing store is not set")
	}

	c := &Cache{
		ComponentBase: sim.NewComponentBase(name),
		capacity:      b.capacity,
		backing:       b.backing,
		tags:          tagging.NewTags(),
		victimFinder:  b.victimFinder,
	}

	return c, nil
}
