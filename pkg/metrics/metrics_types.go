package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics of a netcheck run
type Registry struct {
	// Analysis Metrics
	AnalysisRunsTotal  *prometheus.CounterVec
	AnalysisDuration   prometheus.Histogram
	AnalysisRegions    prometheus.Gauge
	UnsupportedDemands *prometheus.GaugeVec

	// Pass Metrics
	PassesTotal  *prometheus.CounterVec
	PassDuration *prometheus.HistogramVec
	OrphansTotal *prometheus.CounterVec
	RemovedTotal *prometheus.CounterVec
	LiveTechs    *prometheus.GaugeVec

	// Trace Metrics
	ExpansionsTotal *prometheus.CounterVec

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	started  time.Time
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
		started:  time.Now(),
	}

	// Initialize all metrics
	r.initAnalysisMetrics()
	r.initPassMetrics()
	r.initTraceMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
