package trace

import (
	"github.com/dd0wney/cluso-netcheck/pkg/logging"
	"github.com/dd0wney/cluso-netcheck/pkg/network"
)

// Option configures a CommodityNetwork.
type Option func(*CommodityNetwork)

// WithLogger sets the logger; region and period fields are added to it.
func WithLogger(l logging.Logger) Option {
	return func(n *CommodityNetwork) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithObserver installs a hook called on every node expansion.
func WithObserver(obs Observer) Option {
	return func(n *CommodityNetwork) {
		if obs != nil {
			n.observer = obs
		}
	}
}

// CommodityNetwork holds the arc index of one region and period.
type CommodityNetwork struct {
	region string
	period int
	data   *network.ModelData

	logger   logging.Logger
	observer Observer

	// index is output → {(input, tech)}, synthetic arcs included
	index       adjacency
	techInputs  map[string]network.StringSet
	techOutputs map[string]network.StringSet

	viableLinks map[linkPair]struct{}
	synthetic   ArcSet
	// pruned holds arcs taken out of the index by linked-pair pruning
	pruned ArcSet
	// initial is every arc present once linked techs were resolved
	initial ArcSet

	result *Classification
}

// New builds the network for (region, period) from data. It fails with a
// configuration error when no source commodities are declared, when the
// region and period have no demand, or when a linked tech is inconsistent.
func New(region string, period int, data *network.ModelData, opts ...Option) (*CommodityNetwork, error) {
	n := &CommodityNetwork{
		region:      region,
		period:      period,
		data:        data,
		logger:      logging.DefaultLogger(),
		observer:    nopObserver{},
		index:       make(adjacency),
		techInputs:  make(map[string]network.StringSet),
		techOutputs: make(map[string]network.StringSet),
		viableLinks: make(map[linkPair]struct{}),
		synthetic:   make(ArcSet),
		pruned:      make(ArcSet),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = n.logger.With(logging.Component("trace"), logging.Region(region), logging.Period(period))

	if len(data.SourceCommodities) == 0 {
		n.logger.Error("no source commodities discovered; have sources been flagged 's' in the commodity data?")
		return nil, network.NewConfigError("trace.New").At(region, period).
			Context("flag source commodities with 's'").
			Cause(network.ErrNoSourceCommodities)
	}
	if len(data.Demands(region, period)) == 0 {
		n.logger.Error("no demand commodities for region and period; check demand data")
		return nil, network.NewConfigError("trace.New").At(region, period).
			Cause(network.ErrNoDemandCommodities)
	}

	for t := range data.Techs(region, period) {
		n.index.add(t.Output, step{Commodity: t.Input, Tech: t.Name})
		n.addTechIO(t.Name, t.Input, t.Output)
	}

	if err := n.resolveLinkedTechs(); err != nil {
		return nil, err
	}
	n.initial = n.index.byOutput()
	return n, nil
}

func (n *CommodityNetwork) addTechIO(tech, input, output string) {
	if _, ok := n.techInputs[tech]; !ok {
		n.techInputs[tech] = make(network.StringSet)
		n.techOutputs[tech] = make(network.StringSet)
	}
	n.techInputs[tech].Add(input)
	n.techOutputs[tech].Add(output)
}

// Region returns the region the network was built for.
func (n *CommodityNetwork) Region() string { return n.region }

// Period returns the period the network was built for.
func (n *CommodityNetwork) Period() int { return n.period }

// Arcs returns every arc the analysis classifies, synthetic arcs included.
func (n *CommodityNetwork) Arcs() ArcSet {
	return n.initial.Union()
}

// SyntheticArcs returns the linked-tech arcs currently in the index.
func (n *CommodityNetwork) SyntheticArcs() ArcSet {
	return n.synthetic.Union()
}

// Analyze runs discovery and confirmation, pruning linked pairs that cannot
// both be confirmed until the result is stable, and classifies every arc.
// Findings are logged, never returned as errors.
func (n *CommodityNetwork) Analyze() *Classification {
	demands := n.data.Demands(n.region, n.period)
	sources := n.data.SourceCommodities

	var (
		visited adjacency
		good    ArcSet
	)
	for {
		var discovered network.StringSet
		discovered, visited = traceFromDemand(demands, sources, n.index, n.observer)
		good = confirmFromSources(discovered, visited, n.observer)
		if !n.pruneSourLinks(good) {
			break
		}
	}

	current := n.index.byOutput()
	demandConnex := visited.byInput()

	c := &Classification{
		Region:        n.region,
		Period:        n.period,
		Good:          good,
		DemandOrphans: demandConnex.Minus(good),
		OtherOrphans:  current.Minus(demandConnex, good).Union(n.pruned),
	}
	c.UnsupportedDemands = unsupportedDemands(demands, good)
	n.result = c

	n.logFindings(c, len(current))
	return c
}

// Result returns the last classification, or nil before Analyze.
func (n *CommodityNetwork) Result() *Classification {
	return n.result
}

func unsupportedDemands(demands network.StringSet, good ArcSet) []string {
	supplied := make(network.StringSet)
	for a := range good {
		supplied.Add(a.Output)
	}
	var bad []string
	for _, d := range demands.Sorted() {
		if !supplied.Has(d) {
			bad = append(bad, d)
		}
	}
	return bad
}

func (n *CommodityNetwork) logFindings(c *Classification, live int) {
	n.logger.Debug("classified arcs",
		logging.Int("good", len(c.Good)), logging.Int("arcs", live),
		logging.Int("demand_orphans", len(c.DemandOrphans)), logging.Int("other_orphans", len(c.OtherOrphans)))

	if len(c.OtherOrphans) > 0 {
		n.logger.Info("source tracing revealed orphaned processes; enable debug logging to list them",
			logging.Count(len(c.OtherOrphans)))
		if logging.Enabled(n.logger, logging.DebugLevel) {
			for _, a := range c.OtherOrphans.Sorted() {
				n.logger.Debug("discovered orphaned process", logging.Arc(a.Input, a.Tech, a.Output))
			}
		}
	}
	for _, a := range c.DemandOrphans.Sorted() {
		n.logger.Warn("orphan process on demand side may cause erroneous results",
			logging.Arc(a.Input, a.Tech, a.Output))
	}
	for _, d := range c.UnsupportedDemands {
		n.logger.Error("demand is not supported by any source-connected process", logging.Commodity(d))
	}
}

// ValidTechs returns the available techs whose arc was confirmed good.
func (n *CommodityNetwork) ValidTechs() []network.Tech {
	if n.result == nil {
		return nil
	}
	return n.techsIn(n.result.Good)
}

// DemandOrphanTechs returns the available techs whose arc is a demand orphan.
func (n *CommodityNetwork) DemandOrphanTechs() []network.Tech {
	if n.result == nil {
		return nil
	}
	return n.techsIn(n.result.DemandOrphans)
}

// OtherOrphanTechs returns the available techs whose arc is an other orphan.
func (n *CommodityNetwork) OtherOrphanTechs() []network.Tech {
	if n.result == nil {
		return nil
	}
	return n.techsIn(n.result.OtherOrphans)
}

func (n *CommodityNetwork) techsIn(arcs ArcSet) []network.Tech {
	out := make(network.TechSet)
	for t := range n.data.Techs(n.region, n.period) {
		if arcs.Has(ArcOf(t)) {
			out.Add(t)
		}
	}
	return out.Sorted()
}
