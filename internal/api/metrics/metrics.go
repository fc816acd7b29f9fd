// Package metrics defines the custom Prometheus metrics of the payroll API.
// It is the single source of truth for metric names, labels, and help
// strings. All metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "payroll"

// ── Authentication ────────────────────────────────────────────────────────────

// TokenVerificationsTotal counts bearer token checks made by the
// authentication filter.
// Label:
//   - result: "valid", "absent", "expired", "invalid_signature", "malformed"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of bearer token verifications, by result.",
	},
	[]string{"result"},
)

// PolicyDecisionsTotal counts route policy evaluations.
// Labels:
//   - requirement: "public", "authenticated", or "role:<ROLE>"
//   - result: "allowed", "unauthenticated", "forbidden"
var PolicyDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "policy_decisions_total",
		Help:      "Total number of route policy decisions.",
	},
	[]string{"requirement", "result"},
)

// ── Records ───────────────────────────────────────────────────────────────────

// RecordAccessTotal counts record-level access checks on employees.
// Label:
//   - decision: "granted" or "denied"
var RecordAccessTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_access_total",
		Help:      "Total number of employee record access decisions.",
	},
	[]string{"decision"},
)

// EmployeesCreatedTotal counts employees created through provisioning.
// Label:
//   - user: "provisioned" when a credential was created, "reused" otherwise
var EmployeesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "employees_created_total",
		Help:      "Total number of employees created, by credential outcome.",
	},
	[]string{"user"},
)

// ── Audit trail ───────────────────────────────────────────────────────────────

// AuditEventsDroppedTotal counts access events discarded because the
// worker queue was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of access audit events dropped on a full queue.",
	},
)

// AuditQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of access events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
