package providers

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"railpulse/internal/models"
	"railpulse/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncClassifyCalls(outcome string)
	ObserveClassifyDuration(duration time.Duration)
	ObserveArchiveDuration(duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	classifyCalls    *prometheus.CounterVec
	classifyDuration prometheus.Histogram
	archiveDuration  prometheus.Histogram
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

func (m *MetricsProvider) IncClassifyCalls(outcome string) {
	m.classifyCalls.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) ObserveClassifyDuration(duration time.Duration) {
	m.classifyDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) ObserveArchiveDuration(duration time.Duration) {
	m.archiveDuration.Observe(duration.Seconds())
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

func NewMetricsProvider(conf *structures.Config, records models.RecordRepository, alerts models.AlertRepository) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "railpulse_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "railpulse_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "railpulse_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "railpulse_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		classifyCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "railpulse_classify_calls_total",
			Help: "Remote classification calls by outcome",
		}, []string{"outcome"}),

		classifyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "railpulse_classify_duration_seconds",
			Help:    "Duration of remote classification calls in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		archiveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "railpulse_archive_duration_seconds",
			Help:    "Duration of archive operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "railpulse_records_total",
		Help: "Total number of stored records",
	}, func() float64 {
		count, err := records.Count(context.Background())
		if err != nil {
			return 0
		}
		return float64(count)
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "railpulse_alerts_open",
		Help: "Number of unresolved emergency alerts",
	}, func() float64 {
		count, err := alerts.CountOpen(context.Background())
		if err != nil {
			return 0
		}
		return float64(count)
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncClassifyCalls(_ string)                        {}
func (n *noopMetrics) ObserveClassifyDuration(_ time.Duration)          {}
func (n *noopMetrics) ObserveArchiveDuration(_ time.Duration)           {}
