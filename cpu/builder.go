package cpu

import (
	"github.com/rs/zerolog"

	"github.com/sarchlab/cachesim/sim"
)

// Builder can build cores.
type Builder struct {
	cache  Cache
	memory Memory
	ops    OperationSource
	idGen  sim.IDGenerator
	logger zerolog.Logger
}

// MakeBuilder returns a Builder with a silent logger.
func MakeBuilder() Builder {
	return Builder{
		logger: zerolog.Nop(),
	}
}

// WithCache sets the cache that the core loads from and stores to.
func (b Builder) WithCache(cache Cache) Builder {
	b.cache = cache
	return b
}

// WithMemory sets the main memory that the core reports on.
func (b Builder) WithMemory(memory Memory) Builder {
	b.memory = memory
	return b
}

// WithOperationSource sets how operations are picked.
func (b Builder) WithOperationSource(ops OperationSource) Builder {
	b.ops = ops
	return b
}

// WithIDGenerator sets the generator of result keys.
func (b Builder) WithIDGenerator(idGen sim.IDGenerator) Builder {
	b.idGen = idGen
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(logger zerolog.Logger) Builder {
	b.logger = logger
	return b
}

// Build creates a core with zeroed registers.
func (b Builder) Build(name string) *Core {
	if b.cache == nil {
		panic("cache is not set")
	}

	if b.memory == nil {
		panic("memory is not set")
	}

	c := &Core{
		ComponentBase: sim.NewComponentBase(name),
		cache:         b.cache,
		memory:        b.memory,
		ops:           b.ops,
		idGen:         b.idGen,
		log:           b.logger.With().Str("component", name).Logger(),
	}

	if c.ops == nil {
		c.ops = NewRandomOperationSource(0)
	}

	if c.idGen == nil {
		c.idGen = sim.NewSequentialIDGenerator()
	}

	return c
}
