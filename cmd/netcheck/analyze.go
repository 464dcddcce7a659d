package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-netcheck/pkg/config"
	"github.com/dd0wney/cluso-netcheck/pkg/loader"
	"github.com/dd0wney/cluso-netcheck/pkg/logging"
	"github.com/dd0wney/cluso-netcheck/pkg/manager"
	"github.com/dd0wney/cluso-netcheck/pkg/metrics"
	"github.com/dd0wney/cluso-netcheck/pkg/network"
	"github.com/dd0wney/cluso-netcheck/pkg/viable"
	"github.com/dd0wney/cluso-netcheck/pkg/visualization"
)

// options holds the persistent flags. Flags override the config file, which
// overrides the defaults.
type options struct {
	configPath  string
	dataset     string
	databaseURL string
	strict      bool
	parallel    int
	separator   string
	envFiles    []string
	logLevel    string
}

func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(o.envFiles...); err != nil {
		return nil, err
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dataset") {
		cfg.Input.Dataset = o.dataset
		if !flags.Changed("database-url") {
			cfg.Input.DatabaseURL = ""
		}
	}
	if flags.Changed("database-url") {
		cfg.Input.DatabaseURL = o.databaseURL
		if !flags.Changed("dataset") {
			cfg.Input.Dataset = ""
		}
	}
	if flags.Changed("strict") {
		cfg.Analysis.Strict = o.strict
	}
	if flags.Changed("parallel") {
		cfg.Analysis.ParallelRegions = o.parallel
	}
	if flags.Changed("separator") {
		cfg.Analysis.RegionSeparator = o.separator
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// analysis is one completed run over a model.
type analysis struct {
	runID   string
	cfg     *config.Config
	logger  logging.Logger
	metrics *metrics.Registry
	dataset *loader.Dataset
	data    *network.ModelData
	mgr     *manager.Manager
	clean   bool
}

func runAnalysis(ctx context.Context, cfg *config.Config, logger logging.Logger) (*analysis, error) {
	a := &analysis{
		runID:   uuid.NewString(),
		cfg:     cfg,
		metrics: metrics.NewRegistry(),
	}
	a.logger = logger.With(logging.RunID(a.runID))

	src, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	a.dataset, err = src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	a.data, err = loader.Build(a.dataset, a.logger)
	if err != nil {
		return nil, fmt.Errorf("build network: %w", err)
	}
	periods := loader.AnalysisPeriods(a.dataset)
	if len(periods) == 0 {
		return nil, errors.New("dataset has no future periods to analyze")
	}

	a.mgr = manager.New(periods, a.data,
		manager.WithLogger(a.logger),
		manager.WithObserver(a.metrics),
		manager.WithTraceObserver(a.metrics),
		manager.WithParallelRegions(cfg.Analysis.ParallelRegions),
		manager.WithRegionSeparator(cfg.Analysis.RegionSeparator),
	)

	start := time.Now()
	a.clean, err = a.mgr.AnalyzeNetwork(ctx)
	a.metrics.RecordAnalysis(a.clean, err, len(a.mgr.Regions()), time.Since(start))
	if err != nil {
		a.writeMetrics()
		return nil, err
	}
	a.metrics.SetUnsupportedDemands(a.mgr.UnsupportedDemands())
	return a, nil
}

func openSource(ctx context.Context, cfg *config.Config) (loader.Source, func(), error) {
	if cfg.Input.Dataset != "" {
		return loader.FileSource{Path: cfg.Input.Dataset}, func() {}, nil
	}
	pg, err := loader.NewPGSource(ctx, cfg.Input.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return pg, func() { pg.Close() }, nil
}

// exitCode maps the outcome of a run onto the process exit status.
func (a *analysis) exitCode() int {
	if a.cfg.Analysis.Strict && len(a.mgr.UnsupportedDemands()) > 0 {
		return exitUnsupported
	}
	if !a.clean {
		return exitPruned
	}
	return exitClean
}

func (a *analysis) writeMetrics() {
	path := a.cfg.Output.MetricsFile
	if path == "" {
		return
	}
	if err := a.metrics.WriteTextfile(path); err != nil {
		a.logger.Error("failed to write metrics", logging.Path(path), logging.Error(err))
	}
}

// writeOutputs stores every configured artifact.
func (a *analysis) writeOutputs() error {
	if path := a.cfg.Output.Filters; path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create filters file: %w", err)
		}
		if err := writeFilters(f, a.mgr.BuildFilters()); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close filters file: %w", err)
		}
		a.logger.Info("wrote filters", logging.Path(path))
	}

	if dir := a.cfg.Output.GraphDir; dir != "" {
		written := 0
		for _, region := range a.mgr.Regions() {
			for _, period := range a.mgr.Periods() {
				g := visualization.BuildGraph(region, period, a.mgr.GraphArcs(region, period),
					a.data.SourceCommodities, a.data.Demands(region, period))
				if err := g.ApplyLayout(visualization.NewHierarchicalLayout(nil), nil); err != nil {
					return err
				}
				if _, err := g.WriteFile(dir); err != nil {
					return err
				}
				written++
			}
		}
		a.logger.Info("wrote commodity graphs", logging.Path(dir), logging.Count(written))
	}

	a.writeMetrics()
	return nil
}

func writeFilters(w io.Writer, f *viable.Filters) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode filters: %w", err)
	}
	return enc.Close()
}

func newLogger(cmd *cobra.Command, cfg *config.Config) logging.Logger {
	return logging.NewJSONLogger(cmd.ErrOrStderr(), cfg.LogLevel()).
		With(logging.Component("netcheck"))
}

func newAnalyzeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Analyze the model network, prune orphans and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			a, err := runAnalysis(cmd.Context(), cfg, newLogger(cmd, cfg))
			if err != nil {
				return err
			}
			if err := a.writeOutputs(); err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), a)
			if code := a.exitCode(); code != exitClean {
				return &exitStatus{code: code}
			}
			return nil
		},
	}
}

func newFiltersCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "Analyze the model network and print the viable-process filters as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			a, err := runAnalysis(cmd.Context(), cfg, newLogger(cmd, cfg))
			if err != nil {
				return err
			}
			return writeFilters(cmd.OutOrStdout(), a.mgr.BuildFilters())
		},
	}
}
