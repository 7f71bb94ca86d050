// Package metrics holds the Prometheus collectors for the auth boundary.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid_credentials"
	OutcomeDisabled = "disabled"
	OutcomeConflict = "conflict"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	// LoginAttempts counts logins by outcome.
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinnamart_login_attempts_total",
			Help: "Login attempts by outcome",
		},
		[]string{"outcome"},
	)

	// Registrations counts registrations by outcome.
	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinnamart_registrations_total",
			Help: "Registrations by outcome",
		},
		[]string{"outcome"},
	)

	Logouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinnamart_logouts_total",
		Help: "Sessions revoked by logout",
	})

	// TokenRejections counts bearer tokens refused at the API boundary.
	// Labels:
	//   - reason: "invalid", "expired", "revoked", "disabled", "unknown_user"
	TokenRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinnamart_token_rejections_total",
			Help: "Tokens rejected by reason",
		},
		[]string{"reason"},
	)

	// Forbidden counts authorization denials by role.
	Forbidden = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinnamart_forbidden_total",
			Help: "Authorization denials by caller role",
		},
		[]string{"role"},
	)

	// GuardRedirects counts route guard redirects by rule.
	GuardRedirects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinnamart_guard_redirects_total",
			Help: "Page requests redirected by the route guard",
		},
		[]string{"rule"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinnamart_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route", "status"},
	)

	DenylistGCRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinnamart_denylist_gc_runs_total",
			Help: "Revocation store garbage collection runs by outcome",
		},
		[]string{"outcome"},
	)
)
