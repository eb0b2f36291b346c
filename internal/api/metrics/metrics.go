// Package metrics defines and registers all custom Prometheus metrics for the
// identity service. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success" or "unauthorized"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts by outcome.
// Label:
//   - result: "created", "conflict" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// ResetChallengesTotal counts forgot-password requests. Whether the
// identifier was known is deliberately not a label here — the request path
// treats both cases identically; the service logs the distinction.
var ResetChallengesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reset_challenges_total",
		Help:      "Total number of password reset challenges requested.",
	},
)

// ResetRedemptionsTotal counts reset-password attempts by outcome.
// Label:
//   - result: "success" or "invalid"
var ResetRedemptionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reset_redemptions_total",
		Help:      "Total number of password reset redemptions, by result.",
	},
	[]string{"result"},
)

// ThrottledRequestsTotal counts requests rejected by the login rate limiter.
// Label:
//   - scope: limiter scope, e.g. "login" or "forgot_password"
var ThrottledRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "throttled_requests_total",
		Help:      "Total number of requests rejected by the rate limiter, by scope.",
	},
	[]string{"scope"},
)
