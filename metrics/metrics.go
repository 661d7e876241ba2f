// Package metrics provides Prometheus metrics for the compatibility API:
// HTTP request counters, latency and in-flight gauge, plus lookup outcomes
// and dataset reload results.
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query outcomes recorded by QueryTotal
const (
	OutcomeMatch    = "match"
	OutcomeNoData   = "no_data"
	OutcomeOverride = "override"
	OutcomeInvalid  = "invalid"
)

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets",
		},
	)

	QueryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compat_query_total",
			Help: "Compatibility lookups by outcome",
		},
		[]string{"outcome"},
	)

	DatasetRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "compat_dataset_records",
			Help: "Compatibility records in the loaded index",
		},
	)

	DatasetReloadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compat_dataset_reload_total",
			Help: "Dataset reloads by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(QueryTotal)
	prometheus.MustRegister(DatasetRecords)
	prometheus.MustRegister(DatasetReloadTotal)
}
