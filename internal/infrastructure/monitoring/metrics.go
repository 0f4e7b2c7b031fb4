package monitoring

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kidneyplan/mealplanner/internal/ports/outbound"
)

const namespace = "mealplanner"

// MetricsCollector handles Prometheus metrics collection. It owns its
// registry so several collectors can coexist in one process.
type MetricsCollector struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// Business metrics
	mealPlansCreated  prometheus.Counter
	entriesReplaced   prometheus.Counter
	recommenderTotal  *prometheus.CounterVec
	recommenderTiming *prometheus.HistogramVec
	contextCacheTotal *prometheus.CounterVec
}

// NewMetricsCollector creates a new metrics collector with Go runtime and
// process collectors already registered
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &MetricsCollector{
		logger:   logger.Named("metrics"),
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		httpResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path", "status_code"},
		),

		mealPlansCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "meal_plans_created_total",
				Help:      "Total number of daily meal plans created",
			},
		),
		entriesReplaced: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "meal_plan_entries_replaced_total",
				Help:      "Total number of meal plan entries written by edits",
			},
		),
		recommenderTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recommender_requests_total",
				Help:      "Total number of recommender requests",
			},
			[]string{"endpoint", "status"},
		),
		recommenderTiming: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "recommender_request_duration_seconds",
				Help:      "Recommender request duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"endpoint"},
		),
		contextCacheTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recommendation_context_cache_total",
				Help:      "Recommendation context cache lookups",
			},
			[]string{"result"},
		),
	}
}

// RegisterDB exports connection pool statistics for db
func (m *MetricsCollector) RegisterDB(db *sql.DB, name string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// HTTPMiddleware creates a Gin middleware for HTTP metrics collection
func (m *MetricsCollector) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		statusCode := strconv.Itoa(c.Writer.Status())

		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, statusCode).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path, statusCode).
			Observe(time.Since(start).Seconds())
		m.httpResponseSize.WithLabelValues(c.Request.Method, path, statusCode).
			Observe(float64(c.Writer.Size()))
	}
}

// PlansCreated counts newly stored daily plans
func (m *MetricsCollector) PlansCreated(count int) {
	m.mealPlansCreated.Add(float64(count))
}

// EntriesReplaced counts entries written by an edit
func (m *MetricsCollector) EntriesReplaced(count int) {
	m.entriesReplaced.Add(float64(count))
}

// RecommenderCall records one outbound recommender request
func (m *MetricsCollector) RecommenderCall(endpoint string, err error, elapsed time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.recommenderTotal.WithLabelValues(endpoint, status).Inc()
	m.recommenderTiming.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ContextCache records a recommendation context cache lookup
func (m *MetricsCollector) ContextCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.contextCacheTotal.WithLabelValues(result).Inc()
}

// Registry exposes the underlying registry
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var _ outbound.MetricsRecorder = (*MetricsCollector)(nil)
