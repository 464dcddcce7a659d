package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/dd0wney/cluso-netcheck/pkg/manager"
	"github.com/dd0wney/cluso-netcheck/pkg/network"
	"github.com/dd0wney/cluso-netcheck/pkg/trace"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var metric dto.Metric
	if err := g.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Gauge.GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	// Verify all metrics are initialized
	if r.AnalysisRunsTotal == nil {
		t.Error("AnalysisRunsTotal not initialized")
	}
	if r.PassesTotal == nil {
		t.Error("PassesTotal not initialized")
	}
	if r.ExpansionsTotal == nil {
		t.Error("ExpansionsTotal not initialized")
	}
	if r.UptimeSeconds == nil {
		t.Error("UptimeSeconds not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	// Should return the same instance
	r1 := DefaultRegistry()
	r2 := DefaultRegistry()

	if r1 != r2 {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestOnPass(t *testing.T) {
	r := NewRegistry()

	r.OnPass(manager.PassReport{Region: "R1", Pass: 1, DemandOrphans: 2, OtherOrphans: 3, Removed: 7, LiveTechs: 40, Duration: 20 * time.Millisecond})
	r.OnPass(manager.PassReport{Region: "R1", Pass: 2, LiveTechs: 40, Duration: 10 * time.Millisecond})

	tests := []struct {
		name string
		c    prometheus.Counter
		want float64
	}{
		{"passes", r.PassesTotal.WithLabelValues("R1"), 2},
		{"demand orphans", r.OrphansTotal.WithLabelValues("R1", KindDemand), 2},
		{"other orphans", r.OrphansTotal.WithLabelValues("R1", KindOther), 3},
		{"removed", r.RemovedTotal.WithLabelValues("R1"), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := counterValue(t, tt.c); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	if got := gaugeValue(t, r.LiveTechs.WithLabelValues("R1")); got != 40 {
		t.Errorf("LiveTechs = %v, want 40", got)
	}

	histogram, err := r.PassDuration.GetMetricWithLabelValues("R1")
	if err != nil {
		t.Fatalf("Failed to get histogram: %v", err)
	}
	var metric dto.Metric
	if err := histogram.(prometheus.Histogram).Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("Sample count = %v, want 2", metric.Histogram.GetSampleCount())
	}
	sum := metric.Histogram.GetSampleSum()
	if sum < 0.029 || sum > 0.031 {
		t.Errorf("Sample sum = %v, want ~0.03", sum)
	}
}

func TestOnExpand(t *testing.T) {
	r := NewRegistry()

	r.OnExpand(trace.PhaseDiscovery, "elc")
	r.OnExpand(trace.PhaseDiscovery, "gas")
	r.OnExpand(trace.PhaseConfirmation, "ethos")

	if got := counterValue(t, r.ExpansionsTotal.WithLabelValues("discovery")); got != 2 {
		t.Errorf("discovery expansions = %v, want 2", got)
	}
	if got := counterValue(t, r.ExpansionsTotal.WithLabelValues("confirmation")); got != 1 {
		t.Errorf("confirmation expansions = %v, want 1", got)
	}
}

func TestRecordAnalysis(t *testing.T) {
	r := NewRegistry()

	r.RecordAnalysis(true, nil, 3, time.Second)
	r.RecordAnalysis(false, nil, 3, time.Second)
	r.RecordAnalysis(false, errors.New("boom"), 3, time.Second)
	r.RecordAnalysis(true, errors.New("boom"), 3, time.Second)

	want := map[string]float64{ResultClean: 1, ResultPruned: 1, ResultError: 2}
	for result, n := range want {
		if got := counterValue(t, r.AnalysisRunsTotal.WithLabelValues(result)); got != n {
			t.Errorf("runs{result=%q} = %v, want %v", result, got, n)
		}
	}
	if got := gaugeValue(t, r.AnalysisRegions); got != 3 {
		t.Errorf("AnalysisRegions = %v, want 3", got)
	}
}

func TestSetUnsupportedDemands(t *testing.T) {
	r := NewRegistry()

	r.SetUnsupportedDemands(map[network.RegionPeriod][]string{
		{Region: "R1", Period: 2020}: {"heat", "cool"},
		{Region: "R1", Period: 2025}: {"cool"},
		{Region: "R2", Period: 2020}: {"light"},
	})
	if got := gaugeValue(t, r.UnsupportedDemands.WithLabelValues("R1")); got != 3 {
		t.Errorf("R1 unsupported = %v, want 3", got)
	}

	// a later call replaces the previous values
	r.SetUnsupportedDemands(nil)
	if got := gaugeValue(t, r.UnsupportedDemands.WithLabelValues("R2")); got != 0 {
		t.Errorf("R2 unsupported after reset = %v, want 0", got)
	}
}

func TestSystemMetrics(t *testing.T) {
	r := NewRegistry()
	r.UpdateSystemMetrics()

	if gaugeValue(t, r.GoRoutines) < 1 {
		t.Error("GoRoutines should be at least 1")
	}
	if gaugeValue(t, r.MemorySysBytes) <= 0 {
		t.Error("MemorySysBytes should be positive")
	}
}

func TestGetPrometheusRegistry(t *testing.T) {
	r := NewRegistry()
	promRegistry := r.GetPrometheusRegistry()

	if promRegistry == nil {
		t.Fatal("GetPrometheusRegistry() returned nil")
	}

	// Verify we can gather metrics
	metrics, err := promRegistry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	expectedMetrics := []string{
		"netcheck_analysis_duration_seconds",
		"netcheck_analysis_regions",
		"netcheck_uptime_seconds",
	}

	metricNames := make(map[string]bool)
	for _, m := range metrics {
		metricNames[m.GetName()] = true
	}

	for _, expected := range expectedMetrics {
		if !metricNames[expected] {
			t.Errorf("Expected metric %s not found", expected)
		}
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.OnPass(manager.PassReport{Region: "R1", Pass: 1, OtherOrphans: 1})

	path := filepath.Join(t.TempDir(), "netcheck.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read textfile: %v", err)
	}
	for _, want := range []string{
		`netcheck_passes_total{region="R1"} 1`,
		`netcheck_orphans_total{kind="other",region="R1"} 1`,
		"# TYPE netcheck_live_techs gauge",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}

func TestConcurrentPassReports(t *testing.T) {
	r := NewRegistry()

	// Simulate regions reporting in parallel
	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				r.OnPass(manager.PassReport{Region: "R1", Pass: j + 1, OtherOrphans: 1})
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	if got := counterValue(t, r.PassesTotal.WithLabelValues("R1")); got != 1000 {
		t.Errorf("Counter = %v, want 1000", got)
	}
}

func TestMetricNaming(t *testing.T) {
	r := NewRegistry()
	r.OnPass(manager.PassReport{Region: "R1"})
	r.OnExpand(trace.PhaseDiscovery, "x")

	metrics, err := r.GetPrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	// Verify all metrics have the netcheck_ prefix
	for _, m := range metrics {
		name := m.GetName()
		if !strings.HasPrefix(name, "netcheck_") {
			t.Errorf("Metric %s does not have netcheck_ prefix", name)
		}
	}
}

func BenchmarkOnPass(b *testing.B) {
	r := NewRegistry()
	report := manager.PassReport{Region: "R1", Pass: 1, DemandOrphans: 1, OtherOrphans: 2, LiveTechs: 10}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.OnPass(report)
	}
}

func BenchmarkOnExpand(b *testing.B) {
	r := NewRegistry()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.OnExpand(trace.PhaseDiscovery, "elc")
	}
}
