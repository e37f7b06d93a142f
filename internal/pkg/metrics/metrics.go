// Package metrics exposes the Prometheus instrumentation for orderd.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	OrdersPlaced      prometheus.Counter
	OrdersRejected    *prometheus.CounterVec
	IdempotentReplays prometheus.Counter
	PlacementLatency  prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	placed := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderd_orders_placed_total"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "orderd_orders_rejected_total"}, []string{"reason"})
	replays := prometheus.NewCounter(prometheus.CounterOpts{Name: "orderd_idempotent_replays_total"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orderd_placement_latency_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(placed, rejected, replays, latency)
	return &Registry{
		reg:               r,
		OrdersPlaced:      placed,
		OrdersRejected:    rejected,
		IdempotentReplays: replays,
		PlacementLatency:  latency,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
