package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proofin_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "proofin_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	registryCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "proofin_registry_call_duration_seconds",
		Help:    "Duration of on-chain registry submissions and reads",
		Buckets: prometheus.DefBuckets,
	}, []string{"registry", "method", "result"})

	verificationWorkflows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proofin_verification_workflows_total",
		Help: "Verification workflow runs by outcome",
	}, []string{"outcome"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "proofin_active_sessions",
		Help: "Number of live login sessions (in-memory store only)",
	})

	notificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proofin_notifications_created_total",
		Help: "Notifications created by type",
	}, []string{"type"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveRegistryCall records one gateway submit/read with its result.
func ObserveRegistryCall(registry, method, result string, duration time.Duration) {
	registryCallDuration.WithLabelValues(registry, method, result).Observe(duration.Seconds())
}

// ObserveWorkflow counts a verification workflow outcome
// (verified, mint_failed, failed).
func ObserveWorkflow(outcome string) {
	verificationWorkflows.WithLabelValues(outcome).Inc()
}

// IncrementSessions increments the active session gauge.
func IncrementSessions() {
	activeSessions.Inc()
}

// DecrementSessions decrements the active session gauge.
func DecrementSessions() {
	activeSessions.Dec()
}

// ObserveNotification counts a created notification by type.
func ObserveNotification(notificationType string) {
	notificationsCreated.WithLabelValues(notificationType).Inc()
}
