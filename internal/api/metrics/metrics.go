// Package metrics defines the custom Prometheus metrics of the admin panel API.
// They are registered with the default registry on package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "admin_panel"

// ── Authentication ────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts login and registration attempts.
// Labels:
//   - operation: "login" or "register"
//   - result: "success", "invalid_credentials", "throttled", "conflict", "invalid_input" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Authorization ─────────────────────────────────────────────────────────────

// AuthorizationDeniedTotal counts requests rejected by the permission check.
// Label:
//   - operation: the protected operation (e.g. "users.list")
var AuthorizationDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denied_total",
		Help:      "Total number of requests denied by role policy.",
	},
	[]string{"operation"},
)

// ── User management ───────────────────────────────────────────────────────────

// UserMutationsTotal counts successful user writes.
// Label:
//   - operation: "create", "update", "delete" or "change_password"
var UserMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_mutations_total",
		Help:      "Total number of successful user mutations, by operation.",
	},
	[]string{"operation"},
)
