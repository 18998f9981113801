package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PollCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aeos_poll_cycles_total",
		Help: "Total number of completed poll cycles against the event source.",
	})

	PollFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aeos_poll_failures_total",
		Help: "Total number of poll cycles that failed at the event source.",
	})

	EventsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aeos_events_fetched_total",
		Help: "Total number of events fetched from the source, labelled by category.",
	}, []string{"category"})

	MalformedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aeos_events_malformed_total",
		Help: "Total number of fetched events with a missing or unparseable timestamp.",
	})

	BatchesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aeos_batches_published_total",
		Help: "Total number of event batches handed to the broadcaster.",
	})

	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aeos_websocket_clients",
		Help: "Number of currently connected dashboard WebSocket clients.",
	})

	ClientsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aeos_websocket_clients_evicted_total",
		Help: "Total number of WebSocket clients dropped for not keeping up.",
	})
)
