package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultApplied = "applied"
	resultStale   = "stale"

	reasonUnknownEvent = "unknown_event"
	reasonMalformed    = "malformed"
	reasonRejected     = "rejected"
)

// Metrics are the relay's prometheus collectors.
type Metrics struct {
	eventsApplied *prometheus.CounterVec
	eventsDropped *prometheus.CounterVec
	participants  prometheus.Gauge
	sendsFailed   prometheus.Counter
}

// NewMetrics creates the relay collectors and registers them with reg. A nil
// registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		eventsApplied: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowsync",
			Subsystem: "relay",
			Name:      "events_applied_total",
			Help:      "Events applied to the authoritative graph, by event name and whether they changed it.",
		}, []string{"event", "result"}),
		eventsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowsync",
			Subsystem: "relay",
			Name:      "events_dropped_total",
			Help:      "Inbound events dropped without being applied, by reason.",
		}, []string{"reason"}),
		participants: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "flowsync",
			Subsystem: "relay",
			Name:      "participants",
			Help:      "Currently connected participants.",
		}),
		sendsFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: "flowsync",
			Subsystem: "relay",
			Name:      "sends_failed_total",
			Help:      "Events that could not be delivered to a participant.",
		}),
	}
}
