package trace

import (
	"slices"

	"github.com/dd0wney/cluso-netcheck/pkg/network"
)

// Classification partitions the arcs of one region and period.
type Classification struct {
	Region string
	Period int

	// Good arcs lie on a confirmed path from a source to a demand.
	Good ArcSet
	// DemandOrphans are reachable backward from a demand but never confirmed
	// from a source. Left in a model they can produce wrong results.
	DemandOrphans ArcSet
	// OtherOrphans are not reachable from any demand.
	OtherOrphans ArcSet
	// UnsupportedDemands are demands that no good arc produces.
	UnsupportedDemands []string
}

// All returns the union of the three categories.
func (c *Classification) All() ArcSet {
	return c.Good.Union(c.DemandOrphans, c.OtherOrphans)
}

// Clean reports whether the classification found no orphans.
func (c *Classification) Clean() bool {
	return len(c.DemandOrphans) == 0 && len(c.OtherOrphans) == 0
}

// Tag returns the category of a, tagging synthetic arcs as linked. The
// second result is false when a is not part of the classification.
func (c *Classification) Tag(a Arc) (Tag, bool) {
	var tag Tag
	switch {
	case c.Good.Has(a):
		tag = TagGood
	case c.DemandOrphans.Has(a):
		tag = TagDemandOrphan
	case c.OtherOrphans.Has(a):
		tag = TagOtherOrphan
	default:
		return "", false
	}
	if a.Synthetic() {
		tag = TagLinked
	}
	return tag, true
}

// Tagged enumerates every arc with its category, ordered by tech, input, output.
func (c *Classification) Tagged() []TaggedArc {
	all := c.All()
	out := make([]TaggedArc, 0, len(all))
	for _, a := range all.Sorted() {
		tag, _ := c.Tag(a)
		out = append(out, TaggedArc{Arc: a, Tag: tag})
	}
	return out
}

// Supports reports whether demand is produced by a good arc.
func (c *Classification) Supports(demand string) bool {
	return !slices.Contains(c.UnsupportedDemands, demand)
}

// OrphanTechs returns the real tech names among the orphans of both kinds.
func (c *Classification) OrphanTechs() network.StringSet {
	out := make(network.StringSet)
	for a := range c.DemandOrphans.Union(c.OtherOrphans) {
		if !a.Synthetic() {
			out.Add(a.Tech)
		}
	}
	return out
}
