package router

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/envelope-zero/ledger/pkg/httputil"
	"github.com/envelope-zero/ledger/pkg/ledger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// URLMiddleware stores the public base URL of the API in the context.
func URLMiddleware(url *url.URL) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(httputil.ContextURL), url.String())
		c.Next()
	}
}

func collectors() []prometheus.Collector {
	return append([]prometheus.Collector{requestCount, requestDuration}, ledger.Collectors()...)
}

// registerPrometheusMetrics registers all Prometheus metrics
// with the default registry.
func registerPrometheusMetrics() error {
	for _, c := range collectors() {
		err := prometheus.Register(c)

		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			continue
		}

		if err != nil {
			return fmt.Errorf("could not register %T with Prometheus: %w", c, err)
		}
	}

	return nil
}

// unregisterPrometheusMetrics unregisters all Prometheus metrics.
func unregisterPrometheusMetrics() {
	for _, c := range collectors() {
		prometheus.Unregister(c)
	}
}

var requestCount = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "requests_total",
		Help: "How many HTTP requests processed, partitioned by status code and HTTP method.",
	},
	[]string{"code", "method", "url"},
)

var requestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "request_duration_seconds",
		Help: "The HTTP request latencies in seconds.",
	},
	[]string{"code", "method", "url"},
)

// MetricsMiddleware updates Prometheus metrics.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		elapsed := float64(time.Since(start)) / float64(time.Second)

		// Use the route pattern to reduce cardinality
		// https://prometheus.io/docs/practices/naming/#labels
		url := c.FullPath()
		if url == "" {
			url = "unmatched"
		}

		requestDuration.WithLabelValues(status, c.Request.Method, url).Observe(elapsed)
		requestCount.WithLabelValues(status, c.Request.Method, url).Inc()
	}
}
