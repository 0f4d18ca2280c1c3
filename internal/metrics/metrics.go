package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal counts HTTP requests by method, route pattern and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chapter_portal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chapter_portal_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	// RelayOperations counts privileged relay runs by outcome (ok, rejected, failed).
	RelayOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chapter_portal_relay_operations_total",
			Help: "Total number of relay invocations",
		},
		[]string{"relay", "outcome"},
	)
	// SubmissionEvents counts submission workflow events (created, manual, approved, rejected, deleted).
	SubmissionEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chapter_portal_submission_events_total",
			Help: "Total number of submission workflow events",
		},
		[]string{"event"},
	)
)
