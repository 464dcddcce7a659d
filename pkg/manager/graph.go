package manager

import (
	"slices"

	"github.com/dd0wney/cluso-netcheck/pkg/network"
	"github.com/dd0wney/cluso-netcheck/pkg/trace"
)

// GraphArcs returns the original arcs of (region, period) tagged by what the
// analysis found, plus the linked arcs implied by the original data. Vintages
// collapse to one arc. It panics before AnalyzeNetwork.
func (m *Manager) GraphArcs(region string, period int) []trace.TaggedArc {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mustBeAnalyzed("GraphArcs")

	key := network.RegionPeriod{Region: region, Period: period}
	demand := arcsOf(m.demandOrphans[key])
	other := arcsOf(m.otherOrphans[key])

	tags := make(map[trace.Arc]trace.Tag)
	for t := range m.orig.Techs(region, period) {
		a := trace.ArcOf(t)
		switch {
		case demand.Has(a):
			tags[a] = trace.TagDemandOrphan
		case other.Has(a):
			tags[a] = trace.TagOtherOrphan
		default:
			tags[a] = trace.TagGood
		}
	}
	for a := range m.linked[key] {
		tags[a] = trace.TagLinked
	}

	out := make([]trace.TaggedArc, 0, len(tags))
	for a, tag := range tags {
		out = append(out, trace.TaggedArc{Arc: a, Tag: tag})
	}
	slices.SortFunc(out, func(a, b trace.TaggedArc) int {
		return trace.CompareArcs(a.Arc, b.Arc)
	})
	return out
}

func arcsOf(techs network.TechSet) trace.ArcSet {
	out := make(trace.ArcSet)
	for t := range techs {
		out.Add(trace.ArcOf(t))
	}
	return out
}
