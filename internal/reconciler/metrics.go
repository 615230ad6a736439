package reconciler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// eventsTotal counts applied events by kind and outcome.
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audiograph_events_total",
		Help: "Events applied by the reconciler, by kind and outcome (changed, absorbed, malformed).",
	}, []string{"kind", "outcome"})

	// pendingEdgesTotal counts connections parked until an endpoint appears.
	pendingEdgesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audiograph_pending_edges_total",
		Help: "Connections held pending because an endpoint did not exist yet.",
	})

	// placeholdersTotal counts contexts created implicitly by a child event.
	placeholdersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audiograph_placeholder_contexts_total",
		Help: "Contexts created as placeholders before their ContextCreated event.",
	})

	// evictionsTotal counts closed contexts dropped by the retention policy.
	evictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audiograph_evicted_contexts_total",
		Help: "Closed contexts evicted by the registry retention policy.",
	})

	// applyDuration tracks how long one event takes to apply.
	applyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "audiograph_apply_duration_seconds",
		Help:    "Time to apply one event, publish included.",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 14), // 10µs to ~80ms
	})
)

const (
	outcomeChanged   = "changed"
	outcomeAbsorbed  = "absorbed"
	outcomeMalformed = "malformed"
)
