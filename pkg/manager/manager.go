// Package manager drives the trace engine over every period of every region
// until orphan removal reaches a fixed point, then builds the viability
// filters from what survived.
package manager

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/cluso-netcheck/pkg/logging"
	"github.com/dd0wney/cluso-netcheck/pkg/network"
	"github.com/dd0wney/cluso-netcheck/pkg/trace"
	"github.com/dd0wney/cluso-netcheck/pkg/viable"
)

// DefaultRegionSeparator marks exchange regions such as "R1-R2".
const DefaultRegionSeparator = "-"

// PassReport summarizes one pass over the periods of a region.
type PassReport struct {
	Region        string
	Pass          int
	DemandOrphans int
	OtherOrphans  int
	// Removed counts the vintage-bearing techs dropped from the region's periods.
	Removed   int
	LiveTechs int
	Duration  time.Duration
}

// Observer receives a report after every pass. With parallel regions it is
// called from several goroutines.
type Observer interface {
	OnPass(PassReport)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(PassReport)

func (f ObserverFunc) OnPass(r PassReport) { f(r) }

type nopObserver struct{}

func (nopObserver) OnPass(PassReport) {}

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithObserver(obs Observer) Option {
	return func(m *Manager) {
		if obs != nil {
			m.observer = obs
		}
	}
}

// WithTraceObserver forwards node expansions of every engine run. The
// observer must be safe for concurrent use when regions run in parallel.
func WithTraceObserver(obs trace.Observer) Option {
	return func(m *Manager) { m.traceObserver = obs }
}

// WithParallelRegions bounds how many regions are analyzed at once.
func WithParallelRegions(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.parallel = n
		}
	}
}

// WithRegionSeparator changes the substring that marks exchange regions.
func WithRegionSeparator(sep string) Option {
	return func(m *Manager) {
		if sep != "" {
			m.separator = sep
		}
	}
}

// Manager runs the orphan screening for a model.
type Manager struct {
	periods   []int
	orig      *network.ModelData
	separator string
	parallel  int

	logger        logging.Logger
	observer      Observer
	traceObserver trace.Observer

	mu       sync.Mutex
	analyzed bool
	filtered *network.ModelData
	regions  []string

	demandOrphans map[network.RegionPeriod]network.TechSet
	otherOrphans  map[network.RegionPeriod]network.TechSet
	unsupported   map[network.RegionPeriod][]string
	linked        map[network.RegionPeriod]trace.ArcSet
	passes        map[string]int
}

// New creates a manager over the given periods. data is never mutated.
func New(periods []int, data *network.ModelData, opts ...Option) *Manager {
	sorted := slices.Clone(periods)
	slices.Sort(sorted)
	m := &Manager{
		periods:   slices.Compact(sorted),
		orig:      data,
		separator: DefaultRegionSeparator,
		parallel:  1,
		logger:    logging.DefaultLogger(),
		observer:  nopObserver{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logging.Component("manager"))
	return m
}

// Periods returns the analyzed periods in ascending order.
func (m *Manager) Periods() []int {
	return slices.Clone(m.periods)
}

// AnalyzeNetwork screens every non-exchange region to a fixed point on a
// clone of the model data. It reports whether no orphan was ever found.
// Configuration errors abort the analysis and are returned unchanged.
func (m *Manager) AnalyzeNetwork(ctx context.Context) (bool, error) {
	m.mu.Lock()
	m.analyzed = false
	m.filtered = m.orig.Clone()
	m.regions = m.screenedRegions()
	m.demandOrphans = make(map[network.RegionPeriod]network.TechSet)
	m.otherOrphans = make(map[network.RegionPeriod]network.TechSet)
	m.unsupported = make(map[network.RegionPeriod][]string)
	m.linked = make(map[network.RegionPeriod]trace.ArcSet)
	m.passes = make(map[string]int)
	regions := slices.Clone(m.regions)
	m.mu.Unlock()

	timer := logging.StartTimer(m.logger, "network analysis",
		logging.Count(len(regions)), logging.Int("periods", len(m.periods)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.parallel)
	for _, region := range regions {
		g.Go(func() error {
			return m.analyzeRegion(gctx, region)
		})
	}
	if err := g.Wait(); err != nil {
		timer.EndError(err)
		return false, err
	}
	timer.End()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyzed = true
	return m.cleanLocked(), nil
}

func (m *Manager) screenedRegions() []string {
	var regions []string
	for _, r := range m.orig.Regions() {
		if strings.Contains(r, m.separator) {
			m.logger.Debug("skipping exchange region", logging.Region(r))
			continue
		}
		regions = append(regions, r)
	}
	return regions
}

func (m *Manager) analyzeRegion(ctx context.Context, region string) error {
	logger := m.logger.With(logging.Region(region))
	logger.Info("starting network analysis for region")

	opts := []trace.Option{trace.WithLogger(m.logger)}
	if m.traceObserver != nil {
		opts = append(opts, trace.WithObserver(m.traceObserver))
	}

	for pass := 1; ; pass++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		passDemand := make(network.TechSet)
		passOther := make(network.TechSet)

		for _, period := range m.periods {
			cn, err := trace.New(region, period, m.filtered, opts...)
			if err != nil {
				return fmt.Errorf("analyze region %s: %w", region, err)
			}
			c := cn.Analyze()

			demand := network.NewTechSet(cn.DemandOrphanTechs()...)
			other := network.NewTechSet(cn.OtherOrphanTechs()...)
			m.record(network.RegionPeriod{Region: region, Period: period}, pass, demand, other, c, cn.SyntheticArcs())

			passDemand.Union(demand)
			passOther.Union(other)
		}

		// removal waits for the end of the pass so every period reports
		// its own orphans before any of them disappear
		orphans := passDemand.Clone()
		orphans.Union(passOther)
		removed := m.filtered.RemoveFromRegion(region, orphans)

		// a driven vintage outliving its removed driver would fail the next
		// pass as a configuration error, so it goes with the driver
		for key, stranded := range m.filtered.DropStrandedDriven(region) {
			for _, t := range stranded.Sorted() {
				logger.Warn("removed driven linked tech whose driver was pruned",
					logging.Period(key.Period), logging.Tech(t.String()))
			}
			m.record(key, pass, nil, stranded, nil, nil)
			passOther.Union(stranded)
			orphans.Union(stranded)
			removed += len(stranded)
		}

		report := PassReport{
			Region:        region,
			Pass:          pass,
			DemandOrphans: len(passDemand),
			OtherOrphans:  len(passOther),
			Removed:       removed,
			LiveTechs:     m.filtered.RegionTechCount(region),
			Duration:      time.Since(start),
		}
		logger.Debug("finished pass during removal of orphan techs",
			logging.Pass(pass), logging.Int("removed", removed), logging.Int("live", report.LiveTechs))
		for _, t := range passDemand.Sorted() {
			logger.Warn("removed demand-side orphan", logging.Tech(t.String()))
		}
		for _, t := range passOther.Sorted() {
			logger.Warn("removed other orphan", logging.Tech(t.String()))
		}
		m.observer.OnPass(report)

		if len(orphans) == 0 {
			m.mu.Lock()
			m.passes[region] = pass
			m.mu.Unlock()
			return nil
		}
	}
}

// record merges one engine run into the cumulative per-(region, period) state.
// A nil classification records orphans only.
func (m *Manager) record(key network.RegionPeriod, pass int, demand, other network.TechSet, c *trace.Classification, synthetic trace.ArcSet) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(demand) > 0 {
		if _, ok := m.demandOrphans[key]; !ok {
			m.demandOrphans[key] = make(network.TechSet)
		}
		m.demandOrphans[key].Union(demand)
	}
	if len(other) > 0 {
		if _, ok := m.otherOrphans[key]; !ok {
			m.otherOrphans[key] = make(network.TechSet)
		}
		m.otherOrphans[key].Union(other)
	}
	if c == nil {
		return
	}
	if len(c.UnsupportedDemands) > 0 {
		m.unsupported[key] = slices.Clone(c.UnsupportedDemands)
	} else {
		delete(m.unsupported, key)
	}
	// links drawn on the graph are the ones implied by the original data
	if pass == 1 && len(synthetic) > 0 {
		m.linked[key] = synthetic
	}
}

func (m *Manager) cleanLocked() bool {
	return len(m.demandOrphans) == 0 && len(m.otherOrphans) == 0
}

func (m *Manager) mustBeAnalyzed(op string) {
	if !m.analyzed {
		panic(fmt.Sprintf("manager: %s called before network analysis", op))
	}
}

// Regions returns the screened regions, or nil before AnalyzeNetwork.
func (m *Manager) Regions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.regions)
}

// Passes returns how many passes region needed to converge.
func (m *Manager) Passes(region string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.passes[region]
}

// DemandOrphans returns every tech ever recorded as a demand orphan in
// (region, period), sorted.
func (m *Manager) DemandOrphans(region string, period int) []network.Tech {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.demandOrphans[network.RegionPeriod{Region: region, Period: period}].Sorted()
}

// OtherOrphans returns every tech ever recorded as an other orphan in
// (region, period), sorted.
func (m *Manager) OtherOrphans(region string, period int) []network.Tech {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.otherOrphans[network.RegionPeriod{Region: region, Period: period}].Sorted()
}

// UnsupportedDemands returns the demands of each (region, period) that the
// converged network cannot supply.
func (m *Manager) UnsupportedDemands() map[network.RegionPeriod][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[network.RegionPeriod][]string, len(m.unsupported))
	for k, v := range m.unsupported {
		out[k] = slices.Clone(v)
	}
	return out
}

// FilteredData returns the model data left after orphan removal.
// It panics before AnalyzeNetwork.
func (m *Manager) FilteredData() *network.ModelData {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mustBeAnalyzed("FilteredData")
	return m.filtered
}

// BuildFilters aggregates the surviving techs of every region and period into
// the viability projections. Calling it before AnalyzeNetwork has succeeded
// is a programming error and panics.
func (m *Manager) BuildFilters() *viable.Filters {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mustBeAnalyzed("BuildFilters")

	f := viable.NewFilters()
	for key, techs := range m.filtered.AvailableTechs() {
		for t := range techs {
			f.AddTech(key.Period, t)
		}
	}
	return f
}
