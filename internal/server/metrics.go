package server

import (
	"github.com/MeKo-Tech/photoflow/internal/batch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoflow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photoflow_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Batch processing metrics
	runsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photoflow_runs_started_total",
			Help: "Total number of batch runs started",
		},
	)

	runsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoflow_runs_finished_total",
			Help: "Total number of batch runs finished",
		},
		[]string{"outcome"}, // outcome: completed, cancelled, error
	)

	filesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoflow_files_processed_total",
			Help: "Total number of files handled by batch runs",
		},
		[]string{"result"}, // result: success, error, skipped
	)

	previewsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photoflow_previews_total",
			Help: "Total number of preview renderings served",
		},
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photoflow_upload_size_bytes",
			Help:    "Size of uploaded files in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photoflow_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photoflow_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)

// recordRunOutcome updates the run and per-file counters for a finished
// batch. Called once with the terminal progress snapshot.
func recordRunOutcome(p batch.Progress) {
	runsFinished.WithLabelValues(string(p.State)).Inc()
	filesProcessed.WithLabelValues("success").Add(float64(p.SuccessCount))
	filesProcessed.WithLabelValues("error").Add(float64(p.ErrorCount))
	filesProcessed.WithLabelValues("skipped").Add(float64(p.SkippedCount))
}
