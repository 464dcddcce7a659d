package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dd0wney/cluso-netcheck/pkg/manager"
	"github.com/dd0wney/cluso-netcheck/pkg/network"
	"github.com/dd0wney/cluso-netcheck/pkg/trace"
)

// Analysis outcomes used as the result label.
const (
	ResultClean  = "clean"
	ResultPruned = "pruned"
	ResultError  = "error"
)

// Orphan kinds used as the kind label.
const (
	KindDemand = "demand"
	KindOther  = "other"
)

// OnPass records a manager pass. It makes the registry a manager.Observer.
func (r *Registry) OnPass(p manager.PassReport) {
	r.PassesTotal.WithLabelValues(p.Region).Inc()
	r.PassDuration.WithLabelValues(p.Region).Observe(p.Duration.Seconds())
	r.OrphansTotal.WithLabelValues(p.Region, KindDemand).Add(float64(p.DemandOrphans))
	r.OrphansTotal.WithLabelValues(p.Region, KindOther).Add(float64(p.OtherOrphans))
	r.RemovedTotal.WithLabelValues(p.Region).Add(float64(p.Removed))
	r.LiveTechs.WithLabelValues(p.Region).Set(float64(p.LiveTechs))
}

// OnExpand counts a trace node expansion. It makes the registry a
// trace.Observer.
func (r *Registry) OnExpand(phase trace.Phase, _ string) {
	r.ExpansionsTotal.WithLabelValues(phase.String()).Inc()
}

// RecordAnalysis records the outcome of a whole analysis.
func (r *Registry) RecordAnalysis(clean bool, err error, regions int, duration time.Duration) {
	result := ResultPruned
	switch {
	case err != nil:
		result = ResultError
	case clean:
		result = ResultClean
	}
	r.AnalysisRunsTotal.WithLabelValues(result).Inc()
	r.AnalysisDuration.Observe(duration.Seconds())
	r.AnalysisRegions.Set(float64(regions))
}

// SetUnsupportedDemands publishes the per-region count of unsupported
// demands, summed over periods.
func (r *Registry) SetUnsupportedDemands(unsupported map[network.RegionPeriod][]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.UnsupportedDemands.Reset()
	for key, demands := range unsupported {
		r.UnsupportedDemands.WithLabelValues(key.Region).Add(float64(len(demands)))
	}
}

// UpdateSystemMetrics samples uptime and Go runtime statistics.
func (r *Registry) UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.UptimeSeconds.Set(time.Since(r.started).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}

// WriteTextfile writes every metric in the text exposition format, for the
// node exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	r.UpdateSystemMetrics()
	return prometheus.WriteToTextfile(path, r.registry)
}

var (
	_ manager.Observer = (*Registry)(nil)
	_ trace.Observer   = (*Registry)(nil)
)
