package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsManager holds the service's Prometheus collectors.
type MetricsManager struct {
	Registry             *prometheus.Registry
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestLatency   *prometheus.HistogramVec
	CartOperationsTotal  *prometheus.CounterVec
	ProductCacheLookups  *prometheus.CounterVec
	CartsAbandonedTotal  prometheus.Counter
	CartsDeletedTotal    prometheus.Counter
	SweepFailuresTotal   *prometheus.CounterVec
	SweepDurationSeconds prometheus.Histogram
}

// NewMetricsManager creates the collectors and registers them on a private registry.
func NewMetricsManager(serviceName string) *MetricsManager {
	registry := prometheus.NewRegistry()

	httpRequestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by route and status code.",
	}, []string{"method", "route", "code"})

	httpRequestLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "http_request_latency_seconds",
		Help:      "Latency of HTTP requests by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	cartOperationsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "cart_operations_total",
		Help:      "Total number of cart operations by operation and result.",
	}, []string{"operation", "result"})

	productCacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "product_cache_lookups_total",
		Help:      "Product cache lookups by result (hit, miss, error).",
	}, []string{"result"})

	cartsAbandonedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "carts_abandoned_total",
		Help:      "Total number of carts marked as abandoned by the sweeper.",
	})
	cartsDeletedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "carts_deleted_total",
		Help:      "Total number of abandoned carts deleted by the sweeper.",
	})
	sweepFailuresTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "sweep_failures_total",
		Help:      "Per-cart sweeper failures by stage.",
	}, []string{"stage"})
	sweepDurationSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "sweep_duration_seconds",
		Help:      "Duration of a full sweeper pass.",
		Buckets:   prometheus.DefBuckets,
	})

	registry.MustRegister(
		httpRequestsTotal,
		httpRequestLatency,
		cartOperationsTotal,
		productCacheLookups,
		cartsAbandonedTotal,
		cartsDeletedTotal,
		sweepFailuresTotal,
		sweepDurationSeconds,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:             registry,
		HTTPRequestsTotal:    httpRequestsTotal,
		HTTPRequestLatency:   httpRequestLatency,
		CartOperationsTotal:  cartOperationsTotal,
		ProductCacheLookups:  productCacheLookups,
		CartsAbandonedTotal:  cartsAbandonedTotal,
		CartsDeletedTotal:    cartsDeletedTotal,
		SweepFailuresTotal:   sweepFailuresTotal,
		SweepDurationSeconds: sweepDurationSeconds,
	}
}

// ObserveCartOperation counts one cart operation. A nil manager is a no-op so
// callers and tests can run without metrics.
func (m *MetricsManager) ObserveCartOperation(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.CartOperationsTotal.WithLabelValues(operation, result).Inc()
}

func (m *MetricsManager) ObserveCacheLookup(result string) {
	if m == nil {
		return
	}
	m.ProductCacheLookups.WithLabelValues(result).Inc()
}

func (m *MetricsManager) ObserveSweep(abandoned, deleted int, failures map[string]int, took time.Duration) {
	if m == nil {
		return
	}
	m.CartsAbandonedTotal.Add(float64(abandoned))
	m.CartsDeletedTotal.Add(float64(deleted))
	for stage, n := range failures {
		m.SweepFailuresTotal.WithLabelValues(stage).Add(float64(n))
	}
	m.SweepDurationSeconds.Observe(took.Seconds())
}

// NewServer returns an HTTP server exposing the registry on /metrics.
func NewServer(port string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
