// Package metrics defines the custom Prometheus metrics of the job board API.
// HTTP request metrics come from echoprometheus; the ones here describe the
// outcome of each business operation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jobboard"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthRequestsTotal counts auth operations.
// Labels:
//   - operation: "register", "login", "me", "change_password"
//   - result: "success" or a short failure reason (e.g. "invalid_credentials")
var AuthRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_requests_total",
		Help:      "Total number of auth operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// PasswordResetsTotal counts forgot-password requests.
// Label:
//   - result: "accepted", "rate_limited", "mail_failed", "invalid_input" or "error"
var PasswordResetsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_resets_total",
		Help:      "Total number of forgot-password requests, by result.",
	},
	[]string{"result"},
)

// ── CV metrics ────────────────────────────────────────────────────────────────

// CVOperationsTotal counts CV uploads, lookups and deletions.
var CVOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cv_operations_total",
		Help:      "Total number of CV operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// CVUploadBytes observes accepted upload sizes.
var CVUploadBytes = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cv_upload_bytes",
		Help:      "Size of accepted CV uploads in bytes.",
		Buckets:   prometheus.ExponentialBuckets(16*1024, 2, 9), // 16KiB .. 4MiB
	},
)

// ── Location metrics ──────────────────────────────────────────────────────────

// LocationLookupDuration measures /location/track end to end, cache included.
// Label:
//   - result: "success" or a short failure reason
var LocationLookupDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "location_lookup_duration_seconds",
		Help:      "Duration of location lookups including upstream calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)
