package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Process-wide collectors; promauto registers them on the default registry
// exposed at /metrics.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	SweepCyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sweep_cycles_total",
		Help: "Total number of timeout sweep cycles executed",
	})

	SweepExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sweep_expired_appointments_total",
		Help: "Total number of appointments expired by the sweeper",
	})

	PushFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_push_failures_total",
		Help: "Total number of swallowed realtime push failures",
	})
)

func ObserveHTTP(method, path, status string, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}
