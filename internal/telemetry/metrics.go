package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	APIRequests = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "shopfloor_api_requests_total", Help: "Outgoing API requests by operation"}, []string{"op"})
	APIFailures = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "shopfloor_api_failures_total", Help: "Failed API requests by operation"}, []string{"op"})

	JobsAssigned     = prometheus.NewCounter(prometheus.CounterOpts{Name: "shopfloor_jobs_assigned_total", Help: "Jobs assigned to the worker"})
	JobsStarted      = prometheus.NewCounter(prometheus.CounterOpts{Name: "shopfloor_jobs_started_total", Help: "Jobs moved to processing"})
	JobsCompleted    = prometheus.NewCounter(prometheus.CounterOpts{Name: "shopfloor_jobs_completed_total", Help: "Jobs completed"})
	PhotoUploadBytes = prometheus.NewCounter(prometheus.CounterOpts{Name: "shopfloor_photo_upload_bytes_total", Help: "Bytes of completion photos uploaded"})
)

// Handler exposes /metrics with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			APIRequests,
			APIFailures,
			JobsAssigned,
			JobsStarted,
			JobsCompleted,
			PhotoUploadBytes,
		)
	})
	return promhttp.Handler()
}
