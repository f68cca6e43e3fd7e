// Package cpu provides a toy processor core that exercises a cache. Each step
// loads two registers through the cache, executes an arithmetic operation and
// writes the result back into the cache.
package cpu

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/sim"
)

// HookPosStep marks the completion of a step. The item is the StepResult.
var HookPosStep = &sim.HookPos{Name: "CoreStep"}

// ResultKeyPrefix prefixes the keys under which results are written.
const ResultKeyPrefix = "RESULT_"

// Cache is the part of a cache that the core uses.
type Cache interface {
	Get(key string) int
	Put(key string, value int)
	Stats() cache.Stats
}

// Memory is the part of the main memory that the core reports on.
type Memory interface {
	Size() int
}

// StepResult describes what happened in one step.
type StepResult struct {
	Index     uint64    `json:"index"`
	RegisterA int       `json:"register_a"`
	RegisterB int       `json:"register_b"`
	Operation Operation `json:"operation"`
	Result    int       `json:"result"`
	DivByZero bool      `json:"div_by_zero"`
	ResultKey string    `json:"result_key"`
}

func (r StepResult) String() string {
	if r.DivByZero {
		return fmt.Sprintf("%s: %d %s %d prevented (division by zero)",
			r.Operation, r.RegisterA, r.Operation.Symbol(), r.RegisterB)
	}

	return fmt.Sprintf("%s: %d %s %d = %d",
		r.Operation, r.RegisterA, r.Operation.Symbol(), r.RegisterB, r.Result)
}

// Core is a processor with two operand registers and a result register. The
// embedded mutex serializes steps with reports requested from other
// goroutines.
type Core struct {
	*sim.ComponentBase
	sync.Mutex

	cache  Cache
	memory Memory
	ops    OperationSource
	idGen  sim.IDGenerator
	log    zerolog.Logger

	RegisterA int
	RegisterB int
	Result    int

	numSteps uint64
}

// Step executes one load-compute-store cycle.
func (c *Core) Step() StepResult {
	c.Lock()
	defer c.Unlock()

	c.RegisterA = c.load("A")
	c.RegisterB = c.load("B")

	op := c.ops.Next()
	result, divByZero := op.Apply(c.RegisterA, c.RegisterB)
	c.Result = result

	if divByZero {
		c.log.Warn().
			Int("a", c.RegisterA).
			Int("b", c.RegisterB).
			Msg("division by zero prevented")
	}

	key := ResultKeyPrefix + c.idGen.Generate()
	c.cache.Put(key, result)

	c.numSteps++
	res := StepResult{
		Index:     c.numSteps,
		RegisterA: c.RegisterA,
		RegisterB: c.RegisterB,
		Operation: op,
		Result:    result,
		DivByZero: divByZero,
		ResultKey: key,
	}

	c.log.Debug().
		Uint64("step", res.Index).
		Stringer("op", op).
		Int("result", result).
		Str("stored_as", key).
		Msg("operation executed")

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{
			Domain: c,
			Pos:    HookPosStep,
			Item:   res,
		})
	}

	return res
}

func (c *Core) load(register string) int {
	value := c.cache.Get(register)

	c.log.Debug().
		Str("register", register).
		Int("value", value).
		Msg("register loaded")

	return value
}

// NumSteps returns the number of steps executed.
func (c *Core) NumSteps() uint64 {
	c.Lock()
	defer c.Unlock()

	return c.numSteps
}

// Report takes a snapshot of the statistics of the simulation.
func (c *Core) Report() Summary {
	c.Lock()
	defer c.Unlock()

	stats := c.cache.Stats()

	return Summary{
		Operations:    c.numSteps,
		HitRate:       stats.HitRate,
		MissRate:      stats.MissRate,
		TotalAccesses: stats.TotalAccesses,
		Hits:          stats.Hits,
		Misses:        stats.Misses,
		Evictions:     stats.Evictions,
		CacheSize:     stats.Size,
		CacheCapacity: stats.Capacity,
		MemorySize:    c.memory.Size(),
	}
}
