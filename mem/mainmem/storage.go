// Package mainmem models the main memory that sits behind the cache. The
// memory is unbounded and never fails: reading a key that has never been
// written produces a fresh value that stays stable afterwards.
package mainmem

import (
	"github.com/sarchlab/cachesim/sim"
)

// HookPosRead marks every read served by the storage.
var HookPosRead = &sim.HookPos{Name: "MainMemRead"}

// HookPosSynthesize marks the generation of a value for a key that the storage
// has never held before.
var HookPosSynthesize = &sim.HookPos{Name: "MainMemSynthesize"}

// Access is the item carried by the hooks of the storage.
type Access struct {
	Key   string
	Value int
}

// Storage is a key-value memory with unbounded capacity.
type Storage struct {
	*sim.ComponentBase

	seed        int64
	valueSource ValueSource
	data        map[string]int
}

// Get returns the value stored under key. If the key has never been accessed,
// a new value is generated by the value source and stored before returning.
func (s *Storage) Get(key string) int {
	value, found := s.data[key]
	if !found {
		value = s.synthesize(key)
	}

	if s.NumHooks() > 0 {
		s.InvokeHook(sim.HookCtx{
			Domain: s,
			Pos:    HookPosRead,
			Item:   Access{Key: key, Value: value},
		})
	}

	return value
}

func (s *Storage) synthesize(key string) int {
	value := s.valueSource(s.seed, key)
	s.data[key] = value

	if s.NumHooks() > 0 {
		s.InvokeHook(sim.HookCtx{
			Domain: s,
			Pos:    HookPosSynthesize,
			Item:   Access{Key: key, Value: value},
		})
	}

	return value
}

// Write overwrites the value stored under key.
func (s *Storage) Write(key string, value int) {
	s.data[key] = value
}

// Contains tells if the key has been stored. It does not generate a value.
func (s *Storage) Contains(key string) bool {
	_, found := s.data[key]
	return found
}

// Size returns the number of distinct keys stored.
func (s *Storage) Size() int {
	return len(s.data)
}

// Seed returns the seed passed to the value source.
func (s *Storage) Seed() int64 {
	return s.seed
}
