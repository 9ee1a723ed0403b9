// Package metrics defines and registers all custom Prometheus metrics for the
// accounts API. It is the single source of truth for metric names, labels, and
// help strings. Metrics register themselves with the default registry via
// promauto at package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// ── Registration metrics ──────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts by outcome.
// Label:
//   - result: "created", "rejected" (validation-class failure), or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, labelled by outcome.",
	},
	[]string{"result"},
)

// ValidationFailuresTotal counts rejected registrations by the rule that fired.
// Label:
//   - kind: validation kind (e.g. "missing_field", "too_short", "duplicate_username")
var ValidationFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_failures_total",
		Help:      "Total number of registration requests rejected, labelled by violated rule.",
	},
	[]string{"kind"},
)

// ── Hash pool metrics ─────────────────────────────────────────────────────────

// HashQueueDepth tracks the number of hashing jobs waiting for a pool worker.
var HashQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "hash_queue_depth",
		Help:      "Current number of password-hashing jobs pending in the pool queue.",
	},
)

// HashDuration observes how long a single bcrypt invocation takes.
var HashDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "hash_duration_seconds",
		Help:      "Time spent producing one password hash.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	},
)
