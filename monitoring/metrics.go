package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sarchlab/cachesim/cpu"
	"github.com/sarchlab/cachesim/sim"
	"github.com/sarchlab/cachesim/tracing"
)

// MetricsNamespace prefixes all the metrics exported by a Monitor.
const MetricsNamespace = "cachesim"

// MetricsHook counts the events of the components it is attached to and
// exports them as Prometheus metrics.
type MetricsHook struct {
	// Cache metrics
	CacheAccesses  *prometheus.CounterVec
	CacheEvictions *prometheus.CounterVec
	CacheStores    *prometheus.CounterVec

	// Memory metrics
	MemoryReads       *prometheus.CounterVec
	MemorySynthesized *prometheus.CounterVec

	// Core metrics
	CoreSteps      *prometheus.CounterVec
	CoreDivByZeros prometheus.Counter
}

// NewMetricsHook creates the metrics and registers them with the registerer.
func NewMetricsHook(reg prometheus.Registerer) *MetricsHook {
	factory := promauto.With(reg)

	return &MetricsHook{
		CacheAccesses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "cache_accesses_total",
			Help:      "Cache reads by component and result",
		}, []string{"component", "result"}),
		CacheEvictions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "cache_evictions_total",
			Help:      "Entries evicted from the cache",
		}, []string{"component"}),
		CacheStores: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "cache_stores_total",
			Help:      "Entries inserted or overwritten in the cache",
		}, []string{"component"}),

		MemoryReads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "memory_reads_total",
			Help:      "Reads served by the main memory",
		}, []string{"component"}),
		MemorySynthesized: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "memory_synthesized_total",
			Help:      "Values generated for keys never seen before",
		}, []string{"component"}),

		CoreSteps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "core_steps_total",
			Help:      "Steps executed by the core, by operation",
		}, []string{"operation"}),
		CoreDivByZeros: factory.NewCounter(prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Name:      "core_div_by_zero_total",
			Help:      "Divisions that were prevented because the divisor is zero",
		}),
	}
}

// Func updates the metric that corresponds to the hook context.
func (h *MetricsHook) Func(ctx sim.HookCtx) {
	if ctx.Pos == cpu.HookPosStep {
		h.recordStep(ctx)
		return
	}

	evt, ok := tracing.DecodeEvent(ctx)
	if !ok {
		return
	}

	switch evt.Kind {
	case tracing.EventHit, tracing.EventMiss:
		h.CacheAccesses.WithLabelValues(evt.Component, evt.Kind).Inc()
	case tracing.EventEvict:
		h.CacheEvictions.WithLabelValues(evt.Component).Inc()
	case tracing.EventStore:
		h.CacheStores.WithLabelValues(evt.Component).Inc()
	case tracing.EventRead:
		h.MemoryReads.WithLabelValues(evt.Component).Inc()
	case tracing.EventSynthesize:
		h.MemorySynthesized.WithLabelValues(evt.Component).Inc()
	}
}

func (h *MetricsHook) recordStep(ctx sim.HookCtx) {
	res, ok := ctx.Item.(cpu.StepResult)
	if !ok {
		return
	}

	h.CoreSteps.WithLabelValues(res.Operation.String()).Inc()

	if res.DivByZero {
		h.CoreDivByZeros.Inc()
	}
}
