package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audiograph_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "audiograph_http_request_duration_seconds",
		Help:    "HTTP request latency by route. Websocket routes measure the connection lifetime.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	websocketsOpen = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "audiograph_websockets_open",
		Help: "Open websocket connections by endpoint.",
	}, []string{"endpoint"})

	ingestMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audiograph_ingest_envelopes_total",
		Help: "Envelopes received on the websocket ingest endpoint.",
	})
)
