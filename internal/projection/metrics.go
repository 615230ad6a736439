package projection

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	subscriptionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "audiograph_subscriptions_active",
		Help: "Live projection subscriptions.",
	})

	mailboxDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "audiograph_subscription_mailbox_depth",
		Help: "Updates queued across all subscription mailboxes.",
	})

	changeSetsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audiograph_changesets_published_total",
		Help: "Change-sets handed to the projection.",
	})

	updatesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audiograph_updates_delivered_total",
		Help: "Updates a subscription handler returned from normally.",
	})

	handlerPanics = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audiograph_subscription_handler_panics_total",
		Help: "Subscription handler calls that panicked.",
	})
)
