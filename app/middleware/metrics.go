// Package middleware contains the HTTP middleware of the gateway.
package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Total HTTP requests partitioned by method, route, and status code
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	// Request duration in seconds partitioned by method, route, and status code
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// In-flight HTTP requests
	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Upstream service requests partitioned by endpoint and status code
	upstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of upstream service requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	// Quote submissions partitioned by outcome
	quoteSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quote_submissions_total",
			Help: "Total number of quote submissions by outcome",
		},
		[]string{"outcome"},
	)

	// Variants returned per successful quote submission
	quoteVariantsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quote_variants_returned",
			Help:    "Number of variants returned per successful quote submission",
			Buckets: []float64{0, 1, 2, 3, 5, 8},
		},
	)
)

// RecordUpstreamRequest counts one upstream round trip. A transport failure
// that produced no response is recorded as status 0.
func RecordUpstreamRequest(endpoint string, status int) {
	upstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

// RecordQuoteSubmission counts one quote submission outcome. Variant counts
// are only observed for successful submissions.
func RecordQuoteSubmission(outcome string, variants int) {
	quoteSubmissionsTotal.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		quoteVariantsReturned.Observe(float64(variants))
	}
}

// Metrics returns a Fiber v3 middleware that records basic Prometheus metrics.
// Labels are kept low-cardinality by using the matched route path when available.
func Metrics() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		// Call the next handler in the chain
		err := c.Next()

		status := c.Response().StatusCode()
		method := c.Method()
		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path // Use route template to avoid high cardinality
		}

		labels := prometheus.Labels{
			"method": method,
			"route":  route,
			"status": strconv.Itoa(status),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())

		return err
	}
}
