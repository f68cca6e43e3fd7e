// Package tracing provides hooks that observe the components of a simulation
// and report what they do.
package tracing

import (
	"github.com/sarchlab/cachesim/cpu"
	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/sarchlab/cachesim/mem/mainmem"
	"github.com/sarchlab/cachesim/sim"
)

// Event names used in records and logs.
const (
	EventHit        = "hit"
	EventMiss       = "miss"
	EventEvict      = "evict"
	EventStore      = "store"
	EventRead       = "read"
	EventSynthesize = "synthesize"
)

// Event is the decoded form of a hook invocation on a cache or a main memory.
type Event struct {
	Component string
	Kind      string
	Key       string
	Value     int

	// Cause is the key whose insertion triggered an eviction.
	Cause string
}

// DecodeEvent translates a hook context into an Event. It returns false for
// hook positions that do not concern cache or memory accesses.
func DecodeEvent(ctx sim.HookCtx) (Event, bool) {
	evt := Event{}

	if named, ok := ctx.Domain.(sim.Named); ok {
		evt.Component = named.Name()
	}

	switch ctx.Pos {
	case cache.HookPosHit, cache.HookPosMiss,
		cache.HookPosEvict, cache.HookPosStore:
		entry := ctx.Item.(cache.Block)
		evt.Key = entry.Key
		evt.Value = entry.Value
		evt.Kind = cacheEventKind(ctx.Pos)

		if cause, ok := ctx.Detail.(string); ok {
			evt.Cause = cause
		}
	case mainmem.HookPosRead, mainmem.HookPosSynthesize:
		access := ctx.Item.(mainmem.Access)
		evt.Key = access.Key
		evt.Value = access.Value
		evt.Kind = EventRead

		if ctx.Pos == mainmem.HookPosSynthesize {
			evt.Kind = EventSynthesize
		}
	default:
		return Event{}, false
	}

	return evt, true
}

func cacheEventKind(pos *sim.HookPos) string {
	switch pos {
	case cache.HookPosHit:
		return EventHit
	case cache.HookPosMiss:
		return EventMiss
	case cache.HookPosEvict:
		return EventEvict
	default:
		return EventStore
	}
}

// isStep tells if the hook context reports a completed core step.
func isStep(ctx sim.HookCtx) (cpu.StepResult, bool) {
	if ctx.Pos != cpu.HookPosStep {
		return cpu.StepResult{}, false
	}

	res, ok := ctx.Item.(cpu.StepResult)

	return res, ok
}
