package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pdistats/internal/services"
	"pdistats/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	AddResponseBytes(endpoint string, n int)
	IncCacheHits()
	IncCacheMisses()
	ObserveIngestDuration(source string, duration time.Duration)
	IncRefreshErrors()
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	responseBytes   *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	ingestDuration  *prometheus.HistogramVec
	refreshErrors   prometheus.Counter
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) AddResponseBytes(endpoint string, n int) {
	m.responseBytes.WithLabelValues(endpoint).Add(float64(n))
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObserveIngestDuration(source string, duration time.Duration) {
	m.ingestDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncRefreshErrors() {
	m.refreshErrors.Inc()
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

func NewMetricsProvider(conf *structures.Config, service services.CatalogServiceInterface) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pdistats_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pdistats_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		responseBytes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pdistats_response_bytes_total",
			Help: "Total bytes written in HTTP responses, CSV exports included",
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pdistats_cache_hits_total",
			Help: "Total number of response cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pdistats_cache_misses_total",
			Help: "Total number of response cache misses",
		}),

		ingestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pdistats_ingest_duration_seconds",
			Help:    "Duration of dataset load operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),

		refreshErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pdistats_refresh_errors_total",
			Help: "Total number of failed remote source refreshes",
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "pdistats_datasets_total",
		Help: "Number of datasets currently in the catalog",
	}, func() float64 {
		return float64(service.DatasetCount())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "pdistats_rows_total",
		Help: "Total number of rows across all datasets",
	}, func() float64 {
		return float64(service.TotalRows())
	})

	prometheus.MustRegister(&CatalogCollector{service: service})

	return m
}

var (
	datasetRowsDesc = prometheus.NewDesc(
		"pdistats_dataset_rows",
		"Row count per dataset",
		[]string{"dataset", "source"},
		nil,
	)
	datasetColumnsDesc = prometheus.NewDesc(
		"pdistats_dataset_columns",
		"Column count per dataset",
		[]string{"dataset", "source"},
		nil,
	)
)

// CatalogCollector reads the catalog on every scrape and emits per-dataset
// gauges, so reloads never leave stale series behind.
type CatalogCollector struct {
	service services.CatalogServiceInterface
}

func (c *CatalogCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- datasetRowsDesc
	ch <- datasetColumnsDesc
}

func (c *CatalogCollector) Collect(ch chan<- prometheus.Metric) {
	for _, info := range c.service.ListDatasets() {
		ch <- prometheus.MustNewConstMetric(
			datasetRowsDesc,
			prometheus.GaugeValue,
			float64(info.Rows),
			info.Name,
			string(info.Source),
		)
		ch <- prometheus.MustNewConstMetric(
			datasetColumnsDesc,
			prometheus.GaugeValue,
			float64(info.Columns),
			info.Name,
			string(info.Source),
		)
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) AddResponseBytes(_ string, _ int)                 {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObserveIngestDuration(_ string, _ time.Duration)  {}
func (n *noopMetrics) IncRefreshErrors()                                {}
