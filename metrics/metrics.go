// Package metrics holds the Prometheus collectors shared across the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// APIRequestLatency tracks the latency of API requests
	APIRequestLatency = Histogram(
		"api_request_latency_seconds",
		"Latency of API requests in seconds",
		prometheus.DefBuckets,
		"route", "method",
	)

	// APIRequestTotal tracks the total number of API requests
	APIRequestTotal = Counter(
		"api_requests_total",
		"Total number of API requests",
		"route", "method", "status",
	)

	// BalanceScore records every computed daily balance score.
	BalanceScore = Histogram(
		"molecular_balance_score",
		"Distribution of computed daily molecular balance scores",
		[]float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	)

	// UpstreamFallbacks counts requests served from a fallback because an
	// upstream API failed or was not configured.
	UpstreamFallbacks = Counter(
		"upstream_fallbacks_total",
		"Requests answered from fallback data",
		"upstream", "reason",
	)

	// ActiveConnections tracks open realtime sockets.
	ActiveConnections = Gauge(
		"active_connections",
		"Number of active websocket connections",
	)
)

func Counter(name, help string, labelKeys ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labelKeys,
	)
}

func Inc(c *prometheus.CounterVec, labels prometheus.Labels) {
	c.With(labels).Inc()
}

func Gauge(name, help string, labelKeys ...string) *prometheus.GaugeVec {
	return promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		labelKeys,
	)
}

func Histogram(name, help string, buckets []float64, labelKeys ...string) *prometheus.HistogramVec {
	return promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labelKeys,
	)
}

func Observe(h *prometheus.HistogramVec, labels prometheus.Labels, v float64) {
	h.With(labels).Observe(v)
}

// Handler exposes the default registry.
func Handler() http.Handler { return promhttp.Handler() }
