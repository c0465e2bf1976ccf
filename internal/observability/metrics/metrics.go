package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// NewRegistry returns the per-app registry. Go runtime and process
// collectors stay on the default registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// Handler exposes the app registry together with the default registry,
// where the gorm plugin and runtime collectors register.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(
		prometheus.Gatherers{registry, prometheus.DefaultGatherer},
		promhttp.HandlerOpts{},
	)
}

// Metrics exposes record-level instruments.
type Metrics struct {
	recordsCreated prometheus.Counter
	recordsDeleted prometheus.Counter
	storageErrors  *prometheus.CounterVec

	storageDuration metric.Float64Histogram
}

// New registers the counters on registry and the storage latency
// histogram on provider. A nil provider records nothing.
func New(registry *prometheus.Registry, provider metric.MeterProvider) (*Metrics, error) {
	if provider == nil {
		provider = noop.NewMeterProvider()
	}
	storageDuration, err := provider.Meter("labform").Float64Histogram(
		"labform.storage.duration",
		metric.WithDescription("Record store call latency."),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	m := &Metrics{
		recordsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "labform_records_created_total",
			Help: "Lab form records persisted.",
		}),
		recordsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "labform_records_deleted_total",
			Help: "Lab form records removed.",
		}),
		storageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "labform_storage_errors_total",
			Help: "Storage operations that failed, by operation.",
		}, []string{"operation"}),
		storageDuration: storageDuration,
	}
	for _, c := range []prometheus.Collector{m.recordsCreated, m.recordsDeleted, m.storageErrors} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) RecordCreated() {
	if m == nil {
		return
	}
	m.recordsCreated.Inc()
}

func (m *Metrics) RecordDeleted() {
	if m == nil {
		return
	}
	m.recordsDeleted.Inc()
}

func (m *Metrics) StorageError(operation string) {
	if m == nil {
		return
	}
	m.storageErrors.WithLabelValues(strings.TrimSpace(operation)).Inc()
}

// ObserveStorage records how long a store call took and whether it failed.
func (m *Metrics) ObserveStorage(ctx context.Context, operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs := FilterAttributes(
		attribute.String("operation", strings.TrimSpace(operation)),
		attribute.String("outcome", outcome),
	)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	m.storageDuration.Record(ctx, elapsed, metric.WithAttributes(attrs...))
}

// HTTPMetrics holds request instruments labelled by route template, never raw path.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(registry *prometheus.Registry) (*HTTPMetrics, error) {
	h := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "labform_http_requests_total",
			Help: "HTTP requests handled, by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "labform_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if err := registry.Register(h.requests); err != nil {
		return nil, err
	}
	if err := registry.Register(h.duration); err != nil {
		return nil, err
	}
	return h, nil
}

// GinMiddleware records request counts and latency.
func GinMiddleware(h *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		method := c.Request.Method
		h.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		h.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
