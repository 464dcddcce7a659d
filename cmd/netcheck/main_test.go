package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-netcheck/pkg/config"
)

const cleanModel = `commodities:
  - {name: ethos, flag: s}
  - {name: gas, flag: p}
  - {name: heat, flag: d}
periods:
  - {year: 2020, future: true}
  - {year: 2025, future: true}
demands:
  - {region: R1, period: 2020, commodity: heat}
efficiency:
  - {region: R1, input: ethos, tech: imp_gas, vintage: 2020, output: gas}
  - {region: R1, input: gas, tech: boiler, vintage: 2020, output: heat}
`

// prunedModel adds a chp whose steam nothing consumes.
const prunedModel = `commodities:
  - {name: ethos, flag: s}
  - {name: gas, flag: p}
  - {name: steam, flag: p}
  - {name: heat, flag: d}
periods:
  - {year: 2020, future: true}
  - {year: 2025, future: true}
demands:
  - {region: R1, period: 2020, commodity: heat}
efficiency:
  - {region: R1, input: ethos, tech: imp_gas, vintage: 2020, output: gas}
  - {region: R1, input: gas, tech: boiler, vintage: 2020, output: heat}
  - {region: R1, input: gas, tech: chp, vintage: 2020, output: steam}
  - {region: R1-R2, input: gas, tech: pipe, vintage: 2020, output: gas}
`

// unsupportedModel demands cool, which nothing produces.
const unsupportedModel = `commodities:
  - {name: ethos, flag: s}
  - {name: gas, flag: p}
  - {name: heat, flag: d}
  - {name: cool, flag: d}
periods:
  - {year: 2020, future: true}
  - {year: 2025, future: true}
demands:
  - {region: R1, period: 2020, commodity: heat}
  - {region: R1, period: 2020, commodity: cool}
efficiency:
  - {region: R1, input: ethos, tech: imp_gas, vintage: 2020, output: gas}
  - {region: R1, input: gas, tech: boiler, vintage: 2020, output: heat}
`

func writeModel(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv(config.EnvDatabaseURL, "")
	t.Setenv(config.EnvLogLevel, "")
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestAnalyze_ExitCodes(t *testing.T) {
	tests := []struct {
		name   string
		model  string
		strict bool
		want   int
		status string
	}{
		{"clean", cleanModel, false, exitClean, "CLEAN"},
		{"pruned", prunedModel, false, exitPruned, "PRUNED"},
		{"unsupported lenient", unsupportedModel, false, exitClean, "some demands cannot be supplied"},
		{"unsupported strict", unsupportedModel, true, exitUnsupported, "FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := []string{"analyze", "--dataset", writeModel(t, tt.model)}
			if tt.strict {
				args = append(args, "--strict")
			}
			code, stdout, stderr := run(t, args...)
			assert.Equal(t, tt.want, code, stderr)
			assert.Contains(t, stdout, "R1")
			assert.Contains(t, stdout, tt.status)
			assert.NotContains(t, stdout, "R1-R2")
		})
	}
}

func TestAnalyze_WritesOutputs(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "netcheck.yaml")
	cfg := `input:
  dataset: ` + writeModel(t, prunedModel) + `
analysis:
  parallel_regions: 2
output:
  filters: ` + filepath.Join(dir, "filters.yaml") + `
  graph_dir: ` + filepath.Join(dir, "graphs") + `
  metrics_file: ` + filepath.Join(dir, "netcheck.prom") + `
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	code, _, stderr := run(t, "analyze", "--config", cfgPath)
	require.Equal(t, exitPruned, code, stderr)
	assert.Contains(t, stderr, `"run_id"`)

	filters, err := os.ReadFile(filepath.Join(dir, "filters.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(filters), "boiler")
	assert.NotContains(t, string(filters), "chp")

	assert.FileExists(t, filepath.Join(dir, "graphs", "Commodity_Graph_R1_2020.json"))

	prom, err := os.ReadFile(filepath.Join(dir, "netcheck.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `netcheck_analysis_runs_total{result="pruned"} 1`)
	assert.Contains(t, string(prom), "netcheck_removed_techs_total")
}

func TestFilters_PrintsYAML(t *testing.T) {
	code, stdout, stderr := run(t, "filters", "--dataset", writeModel(t, prunedModel), "--log-level", "error")
	require.Equal(t, exitClean, code, stderr)
	assert.Empty(t, stderr)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &doc))
	assert.ElementsMatch(t, []any{"boiler", "imp_gas", "pipe"}, doc["t"])
	assert.ElementsMatch(t, []any{"ethos", "gas", "heat"}, doc["c"])
}

func TestAnalyze_Errors(t *testing.T) {
	model := writeModel(t, cleanModel)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing dataset", []string{"analyze", "--dataset", filepath.Join(t.TempDir(), "nope.yaml")}, "load dataset"},
		{"no input", []string{"analyze"}, "input"},
		{"two inputs", []string{"analyze", "--dataset", model, "--database-url", "postgres://localhost/db"}, "input"},
		{"bad parallel", []string{"analyze", "--dataset", model, "--parallel", "0"}, "parallel_regions"},
		{"extra argument", []string{"analyze", "extra"}, "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := run(t, tt.args...)
			assert.Equal(t, exitError, code)
			assert.Contains(t, stderr, "Error:")
			assert.Contains(t, stderr, tt.want)
		})
	}
}
