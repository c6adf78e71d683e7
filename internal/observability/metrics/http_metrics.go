package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request counts and latency for the /metrics endpoint.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRegistry returns the application registry. /metrics serves it merged
// with the default registry, which carries the runtime and gorm collectors.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// Gatherer merges the application registry with the default one.
func Gatherer(reg *prometheus.Registry) prometheus.Gatherer {
	return prometheus.Gatherers{reg, prometheus.DefaultGatherer}
}

func NewHTTPMetrics(reg *prometheus.Registry, cfg Config) *HTTPMetrics {
	service := strings.TrimSpace(cfg.ServiceName)
	if service == "" {
		service = "workhub"
	}
	env := strings.TrimSpace(cfg.Environment)
	if env == "" {
		env = "unknown"
	}
	constLabels := prometheus.Labels{"service": service, "env": env}

	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "workhub_http_requests_total",
			Help:        "HTTP requests by route and status code.",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status_code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "workhub_http_request_duration_seconds",
			Help:        "HTTP request latency by route.",
			Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			ConstLabels: constLabels,
		}, []string{"method", "route"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}
	return m
}

// GinMiddleware observes every request using the matched route template.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
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
		m.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
