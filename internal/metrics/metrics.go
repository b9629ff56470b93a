// Package metrics exposes the core counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements core.Metrics on top of Prometheus.
type Collector struct {
	liveConnections    prometheus.Gauge
	admissionsRejected prometheus.Counter
	sessionsSuperseded prometheus.Counter
	messagesPersisted  prometheus.Counter
	messagesRouted     *prometheus.CounterVec
	persistenceFailed  *prometheus.CounterVec
	presenceBroadcasts *prometheus.CounterVec
	deliveriesDropped  *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		liveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wirechat_live_connections",
			Help: "Number of users with a live connection.",
		}),
		admissionsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wirechat_admissions_rejected_total",
			Help: "Connections refused because of a bad credential.",
		}),
		sessionsSuperseded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wirechat_sessions_superseded_total",
			Help: "Sessions replaced by a newer connection of the same user.",
		}),
		messagesPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wirechat_messages_persisted_total",
			Help: "Direct messages written to the store.",
		}),
		messagesRouted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wirechat_messages_routed_total",
			Help: "Persisted messages by whether the receiver was live.",
		}, []string{"live"}),
		persistenceFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wirechat_persistence_failures_total",
			Help: "Store failures by operation.",
		}, []string{"op"}),
		presenceBroadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wirechat_presence_broadcasts_total",
			Help: "Presence deltas broadcast by state.",
		}, []string{"state"}),
		deliveriesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wirechat_deliveries_dropped_total",
			Help: "Events not queued because the connection was closed or full.",
		}, []string{"event"}),
	}

	reg.MustRegister(
		c.liveConnections,
		c.admissionsRejected,
		c.sessionsSuperseded,
		c.messagesPersisted,
		c.messagesRouted,
		c.persistenceFailed,
		c.presenceBroadcasts,
		c.deliveriesDropped,
	)

	return c
}

func (c *Collector) SetLiveConnections(n int) {
	c.liveConnections.Set(float64(n))
}

func (c *Collector) AdmissionRejected() {
	c.admissionsRejected.Inc()
}

func (c *Collector) SessionSuperseded() {
	c.sessionsSuperseded.Inc()
}

func (c *Collector) MessagePersisted() {
	c.messagesPersisted.Inc()
}

func (c *Collector) MessageRouted(live bool) {
	c.messagesRouted.WithLabelValues(strconv.FormatBool(live)).Inc()
}

func (c *Collector) PersistenceFailed(op string) {
	c.persistenceFailed.WithLabelValues(op).Inc()
}

func (c *Collector) PresenceBroadcast(online bool) {
	state := "offline"
	if online {
		state = "online"
	}
	c.presenceBroadcasts.WithLabelValues(state).Inc()
}

func (c *Collector) DeliveryDropped(event string) {
	c.deliveriesDropped.WithLabelValues(event).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
