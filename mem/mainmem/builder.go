package mainmem

import (
	"github.com/sarchlab/cachesim/sim"
)

// DefaultSeedKeys are the keys that are loaded into the memory before the
// simulation starts.
var DefaultSeedKeys = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

// Builder can build main memories.
type Builder struct {
	seed        int64
	seedKeys    []string
	valueSource ValueSource
}

// MakeBuilder returns a new Builder
func MakeBuilder() Builder {
	return Builder{
		seedKeys:    DefaultSeedKeys,
		valueSource: HashValueSource,
	}
}

// WithSeed sets the seed given to the value source.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithSeedKeys sets the keys that are pre-loaded at construction.
func (b Builder) WithSeedKeys(keys ...string) Builder {
	b.seedKeys = keys
	return b
}

// WithValueSource sets how values are generated for unseen keys.
func (b Builder) WithValueSource(valueSource ValueSource) Builder {
	b.valueSource = valueSource
	return b
}

// Build builds a new Storage with the seed keys already loaded.
func (b Builder) Build(name string) *Storage {
	s := &Storage{
		ComponentBase: sim.NewComponentBase(name),
		seed:          b.seed,
		valueSource:   b.valueSource,
		data:          make(map[string]int),
	}

	if s.valueSource == nil {
		s.valueSource = HashValueSource
	}

	for _, key := range b.seedKeys {
		s.data[key] = s.valueSource(s.seed, key)
	}

	return s
}
