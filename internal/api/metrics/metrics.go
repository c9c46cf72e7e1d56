// Package metrics defines and registers all custom Prometheus metrics for the
// LimCoins user service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import via
// promauto; /metrics is served by the echoprometheus handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "limcoins"

// ── Workflow metrics ──────────────────────────────────────────────────────────

// WorkflowsTotal counts orchestrated workflows by result.
// Labels:
//   - workflow: "place_bid", "abandon_bid", "create_auction", "liquidate_item", ...
//   - outcome: "ok" or the short error reason (e.g. "remote_unavailable")
var WorkflowsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "workflows_total",
		Help:      "Total number of user workflows, by workflow and outcome.",
	},
	[]string{"workflow", "outcome"},
)

// CommitConflictsTotal counts optimistic-commit retries caused by a concurrent
// update of the same user.
var CommitConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commit_conflicts_total",
		Help:      "Total number of version conflicts hit while committing a user mutation.",
	},
	[]string{"workflow"},
)

// CoinsMovedTotal sums LimCoins credited or debited.
// Labels:
//   - direction: "credit" or "debit"
//   - kind: "grant", "add", "deduct", "liquidate"
var CoinsMovedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "coins_moved_total",
		Help:      "Total LimCoins credited or debited, by direction and kind.",
	},
	[]string{"direction", "kind"},
)

// LockWaitDuration measures how long a workflow waited for the per-user lock.
var LockWaitDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "user_lock_wait_seconds",
		Help:      "Time spent waiting for the per-user lock.",
		Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
	},
)

// ── Remote call metrics ───────────────────────────────────────────────────────

// RemoteCallDuration measures calls to the auction and valuation services.
// Labels:
//   - gateway: "auction" or "valuation"
//   - op: the remote operation (e.g. "place_bid", "fetch_value")
//   - outcome: "ok", "rejected" or "unavailable"
var RemoteCallDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_call_duration_seconds",
		Help:      "Duration of calls to remote services.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"gateway", "op", "outcome"},
)
