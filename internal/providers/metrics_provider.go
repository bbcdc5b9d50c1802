package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ytmeta/internal/models"
	"ytmeta/internal/structures"
)

// StoreStats is the read side of the history store that metrics report on.
type StoreStats interface {
	GetEntityCount() int
	GetRecordCount() int
}

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	ObserveMerge(result models.MergeResult)
	IncResolve(found bool)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	mergeOutcomes       *prometheus.CounterVec
	resolves            *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) ObserveMerge(result models.MergeResult) {
	for outcome, n := range result.Counts() {
		if n > 0 {
			m.mergeOutcomes.WithLabelValues(outcome.String()).Add(float64(n))
		}
	}
}

func (m *MetricsProvider) IncResolve(found bool) {
	result := "fallback_empty"
	if found {
		result = "found"
	}
	m.resolves.WithLabelValues(result).Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, stats StoreStats) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ytmeta_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ytmeta_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ytmeta_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ytmeta_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ytmeta_persistence_duration_seconds",
			Help:    "Duration of store persistence in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		mergeOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ytmeta_merge_observations_total",
			Help: "Merged observations by outcome",
		}, []string{"outcome"}),

		resolves: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ytmeta_resolves_total",
			Help: "Snapshot resolutions by result",
		}, []string{"result"}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "ytmeta_entities_total",
		Help: "Number of entities with a history",
	}, func() float64 {
		return float64(stats.GetEntityCount())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "ytmeta_snapshots_total",
		Help: "Number of snapshots across all histories",
	}, func() float64 {
		return float64(stats.GetRecordCount())
	})

	return m
}

type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) ObserveMerge(_ models.MergeResult)                {}
func (n *noopMetrics) IncResolve(_ bool)                                {}
