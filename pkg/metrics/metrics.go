package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PermissionChecks counts synchronous permission evaluations by scope (collection|revisions)
	// and outcome (allow|deny).
	PermissionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inlineform_permission_checks_total",
			Help: "Total number of cached permission checks",
		},
		[]string{"scope", "result"},
	)

	// ItemPermissionFetches counts item permission fetch completions (success|fallback|stale).
	ItemPermissionFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inlineform_item_permission_fetches_total",
			Help: "Total number of completed item permission fetches",
		},
		[]string{"result"},
	)

	// ItemPermissionFetchDuration measures how long item permission fetches take end to end.
	ItemPermissionFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "inlineform_item_permission_fetch_duration_seconds",
			Help:    "Item permission fetch latency",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ClientRequests records permissions API calls issued by the client by status class.
	ClientRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inlineform_client_requests_total",
			Help: "Total number of permissions API requests issued",
		},
		[]string{"status"},
	)

	// Notifications counts notifications raised by type.
	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inlineform_notifications_total",
			Help: "Total number of notifications raised",
		},
		[]string{"type"},
	)

	// APILatency measures HTTP request latencies of the permissions service.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inlineform_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// ItemDecisions counts item permission decisions served by the permissions service.
	ItemDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inlineform_item_decisions_total",
			Help: "Total number of item permission decisions served",
		},
		[]string{"action", "result"},
	)
)

// Outcome converts a boolean decision into a metric label.
func Outcome(allowed bool) string {
	if allowed {
		return "allow"
	}
	return "deny"
}
