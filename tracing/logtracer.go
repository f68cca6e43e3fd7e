package tracing

import (
	"github.com/rs/zerolog"

	"github.com/sarchlab/cachesim/sim"
)

// LogTracer narrates what the components do through a zerolog logger. Hits,
// misses and evictions are logged at info level; stores and memory traffic
// at debug level.
type LogTracer struct {
	sim.LogHookBase
}

// NewLogTracer creates a LogTracer.
func NewLogTracer(logger zerolog.Logger) *LogTracer {
	return &LogTracer{
		LogHookBase: sim.NewLogHookBase(logger),
	}
}

// Func logs the event described by the hook context.
func (t *LogTracer) Func(ctx sim.HookCtx) {
	if res, ok := isStep(ctx); ok {
		t.Logger.Info().
			Uint64("step", res.Index).
			Str("result_key", res.ResultKey).
			Msg(res.String())

		return
	}

	evt, ok := DecodeEvent(ctx)
	if !ok {
		return
	}

	var e *zerolog.Event

	switch evt.Kind {
	case EventHit, EventMiss:
		e = t.Logger.Info()
	case EventEvict:
		e = t.Logger.Info().Str("cause", evt.Cause)
	default:
		e = t.Logger.Debug()
	}

	e.Str("component", evt.Component).
		Str("key", evt.Key).
		Int("value", evt.Value).
		Msg(evt.Kind)
}
