package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the address resolver.
type Metrics struct {
	CacheHits      *prometheus.CounterVec
	CacheMisses    *prometheus.CounterVec
	RemoteLookups  prometheus.Counter
	LookupFailures *prometheus.CounterVec
	SchemaMismatch prometheus.Counter
}

// New creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "brasil_utils_cache_hits_total",
			Help: "Documents served from the cache, by namespace",
		}, []string{"namespace"}),
		CacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "brasil_utils_cache_misses_total",
			Help: "Cache reads that found nothing usable, by namespace",
		}, []string{"namespace"}),
		RemoteLookups: factory.NewCounter(prometheus.CounterOpts{
			Name: "brasil_utils_remote_lookups_total",
			Help: "Calls made to the remote address service",
		}),
		LookupFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "brasil_utils_lookup_failures_total",
			Help: "Resolutions that ended without an address, by reason",
		}, []string{"reason"}),
		SchemaMismatch: factory.NewCounter(prometheus.CounterOpts{
			Name: "brasil_utils_schema_mismatches_total",
			Help: "Remote documents served despite not matching the expected shape",
		}),
	}
}

// IncrementCacheHit records a cache hit for namespace.
func (m *Metrics) IncrementCacheHit(namespace string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(namespace).Inc()
}

// IncrementCacheMiss records a cache miss for namespace.
func (m *Metrics) IncrementCacheMiss(namespace string) {
	if m == nil {
		return
	}
	m.CacheMisses.WithLabelValues(namespace).Inc()
}

// IncrementRemoteLookup records one call to the remote service.
func (m *Metrics) IncrementRemoteLookup() {
	if m == nil {
		return
	}
	m.RemoteLookups.Inc()
}

// IncrementLookupFailure records a failed resolution ("format", "transport", "not_found").
func (m *Metrics) IncrementLookupFailure(reason string) {
	if m == nil {
		return
	}
	m.LookupFailures.WithLabelValues(reason).Inc()
}

// IncrementSchemaMismatch records a remote document outside the expected shape.
func (m *Metrics) IncrementSchemaMismatch() {
	if m == nil {
		return
	}
	m.SchemaMismatch.Inc()
}
