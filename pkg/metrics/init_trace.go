package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initTraceMetrics() {
	r.ExpansionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netcheck_trace_expansions_total",
			Help: "Commodity nodes expanded by the trace engine, by phase",
		},
		[]string{"phase"},
	)
}
