package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Метрики регистрируются в реестре по умолчанию через promauto
var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served by the portal.",
		},
		[]string{"method", "path", "code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of portal HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "code"},
	)

	backendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Backend API attempts by outcome.",
		},
		[]string{"method", "outcome"},
	)

	backendRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_retries_total",
			Help: "Backend API retries scheduled after a 5xx response.",
		},
		[]string{"method"},
	)

	backendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Duration of single backend API attempts in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// Outcome - метка результата попытки к backend
const (
	OutcomeOK          = "ok"
	OutcomeHTTPError   = "http_error"
	OutcomeAuth        = "auth"
	OutcomeTimeout     = "timeout"
	OutcomeNetwork     = "network"
	OutcomeUnavailable = "unavailable"
)

// Middleware собирает метрики по шаблону маршрута gin, а не по сырому пути
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		code := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, code).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, code).Observe(time.Since(start).Seconds())
	}
}

// Handler - эндпоинт /metrics
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func ObserveBackend(method, outcome string, d time.Duration) {
	backendRequestsTotal.WithLabelValues(method, outcome).Inc()
	backendRequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

func IncBackendRetry(method string) {
	backendRetriesTotal.WithLabelValues(method).Inc()
}
