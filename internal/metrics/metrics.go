// Package metrics defines the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors. Every instance registers with its own
// registerer, so tests can create as many as they like.
type Metrics struct {
	SessionsStarted  *prometheus.CounterVec
	SessionsFinished *prometheus.CounterVec
	SessionsActive   prometheus.Gauge
	SearchDuration   *prometheus.HistogramVec
	NodesVisited     *prometheus.HistogramVec
	EventsDelivered  prometheus.Counter
	EventsDropped    prometheus.Counter
	EventsFailed     prometheus.Counter
	GraphLoads       *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg uses a
// fresh private registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		SessionsStarted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pathfinder",
			Name:      "sessions_started_total",
			Help:      "Search sessions started, by algorithm",
		}, []string{"algorithm"}),
		SessionsFinished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pathfinder",
			Name:      "sessions_finished_total",
			Help:      "Search sessions finished, by algorithm and outcome",
		}, []string{"algorithm", "outcome"}),
		SessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "pathfinder",
			Name:      "sessions_active",
			Help:      "Search sessions currently running",
		}),
		SearchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pathfinder",
			Name:      "search_duration_seconds",
			Help:      "Wall time of a search, excluding graph loading",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3.3s
		}, []string{"algorithm"}),
		NodesVisited: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pathfinder",
			Name:      "search_nodes_visited",
			Help:      "Nodes expanded per search",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 12),
		}, []string{"algorithm"}),
		EventsDelivered: f.NewCounter(prometheus.CounterOpts{
			Namespace: "pathfinder",
			Name:      "visit_events_delivered_total",
			Help:      "Node-visit events delivered to subscribers",
		}),
		EventsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "pathfinder",
			Name:      "visit_events_dropped_total",
			Help:      "Node-visit events dropped by overflow or cancellation",
		}),
		EventsFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: "pathfinder",
			Name:      "visit_events_failed_total",
			Help:      "Node-visit events the sink failed to deliver",
		}),
		GraphLoads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pathfinder",
			Name:      "graph_loads_total",
			Help:      "Graph lookups by result (hit, miss, error)",
		}, []string{"result"}),
	}
}
