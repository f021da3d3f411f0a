// Package metrics exposes the service's Prometheus instrumentation: the HTTP
// request surface the dashboards expect plus drift-monitoring gauges and
// counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, handler path and status code.",
		},
		[]string{"method", "handler", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and handler path.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "handler"},
	)

	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftwatch_predictions_total",
			Help: "Predictions served, by predicted class.",
		},
		[]string{"class"},
	)

	BufferSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "driftwatch_buffer_size",
			Help: "Current number of records in the production buffer.",
		},
	)

	DriftRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftwatch_drift_runs_total",
			Help: "Drift analysis run requests, by trigger source and outcome.",
		},
		[]string{"source", "outcome"},
	)

	DriftRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "driftwatch_drift_run_duration_seconds",
			Help:    "Duration of completed drift analysis runs.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
	)

	DriftedFeatures = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "driftwatch_drifted_features",
			Help: "Drifted feature count from the most recent report.",
		},
	)

	DriftShare = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "driftwatch_drift_share",
			Help: "Drifted feature share from the most recent report.",
		},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "driftwatch_websocket_clients",
			Help: "Connected WebSocket event feed clients.",
		},
	)
)

// Handler serves the default registry at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
