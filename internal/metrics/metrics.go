// Package metrics holds the prometheus collectors for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route", "status"},
	)

	statusWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reading_status_writes_total",
			Help: "Total number of reading status writes, by the status written",
		},
		[]string{"status"},
	)

	defaultsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reading_status_defaults_created_total",
			Help: "Records created implicitly by reading an unknown article",
		},
	)
)

// ObserveRequest records a finished request. Route should be the route
// template, not the raw path, to keep article ids out of the labels.
func ObserveRequest(method, route string, status int, d time.Duration) {
	code := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, code).Inc()
	httpRequestDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
}

func RecordStatusWrite(status string) {
	statusWritesTotal.WithLabelValues(status).Inc()
}

func RecordDefaultCreated() {
	defaultsCreatedTotal.Inc()
}

// Handler serves the prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
