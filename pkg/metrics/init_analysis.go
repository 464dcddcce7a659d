package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.AnalysisRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netcheck_analysis_runs_total",
			Help: "Total number of network analyses by outcome",
		},
		[]string{"result"},
	)

	r.AnalysisDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netcheck_analysis_duration_seconds",
			Help:    "Network analysis duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	r.AnalysisRegions = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netcheck_analysis_regions",
			Help: "Number of regions screened by the last analysis",
		},
	)

	r.UnsupportedDemands = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netcheck_unsupported_demands",
			Help: "Demand commodities with no source-connected producer",
		},
		[]string{"region"},
	)
}

func (r *Registry) initPassMetrics() {
	r.PassesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netcheck_passes_total",
			Help: "Total number of orphan removal passes",
		},
		[]string{"region"},
	)

	r.PassDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netcheck_pass_duration_seconds",
			Help:    "Duration of one pass over the periods of a region",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"region"},
	)

	r.OrphansTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netcheck_orphans_total",
			Help: "Orphan techs found per pass, by kind",
		},
		[]string{"region", "kind"},
	)

	r.RemovedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netcheck_removed_techs_total",
			Help: "Vintage-bearing techs removed from region periods",
		},
		[]string{"region"},
	)

	r.LiveTechs = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netcheck_live_techs",
			Help: "Techs live across the periods of a region after the last pass",
		},
		[]string{"region"},
	)
}
