package trace

import (
	"cmp"
	"maps"
	"slices"

	"github.com/dd0wney/cluso-netcheck/pkg/network"
)

// LinkedTechLabel names the synthetic arcs that stand in for a linked-tech coupling.
const LinkedTechLabel = "<<linked tech>>"

// Arc is a vintage-agnostic (input, tech, output) connection.
type Arc struct {
	Input  string `json:"input" yaml:"input"`
	Tech   string `json:"tech" yaml:"tech"`
	Output string `json:"output" yaml:"output"`
}

// ArcOf collapses a vintage-bearing tech onto its arc.
func ArcOf(t network.Tech) Arc {
	return Arc{Input: t.Input, Tech: t.Name, Output: t.Output}
}

// Synthetic reports whether the arc was created for a linked-tech coupling.
func (a Arc) Synthetic() bool {
	return a.Tech == LinkedTechLabel
}

// CompareArcs orders arcs by tech, then input, then output.
func CompareArcs(a, b Arc) int {
	return cmp.Or(
		cmp.Compare(a.Tech, b.Tech),
		cmp.Compare(a.Input, b.Input),
		cmp.Compare(a.Output, b.Output),
	)
}

// ArcSet is a set of arcs.
type ArcSet map[Arc]struct{}

func (s ArcSet) Add(a Arc) { s[a] = struct{}{} }

func (s ArcSet) Has(a Arc) bool {
	_, ok := s[a]
	return ok
}

// Minus returns the members of s not in any of others.
func (s ArcSet) Minus(others ...ArcSet) ArcSet {
	out := make(ArcSet, len(s))
outer:
	for a := range s {
		for _, o := range others {
			if o.Has(a) {
				continue outer
			}
		}
		out[a] = struct{}{}
	}
	return out
}

// Union returns a new set holding the members of s and others.
func (s ArcSet) Union(others ...ArcSet) ArcSet {
	out := maps.Clone(s)
	if out == nil {
		out = make(ArcSet)
	}
	for _, o := range others {
		maps.Copy(out, o)
	}
	return out
}

// Techs returns the distinct tech labels of the set.
func (s ArcSet) Techs() network.StringSet {
	out := make(network.StringSet, len(s))
	for a := range s {
		out.Add(a.Tech)
	}
	return out
}

// Sorted orders arcs by tech, input, then output.
func (s ArcSet) Sorted() []Arc {
	return slices.SortedFunc(maps.Keys(s), CompareArcs)
}

// Tag is the diagnostic category of an arc.
type Tag string

const (
	TagGood         Tag = "good"
	TagDemandOrphan Tag = "demand_orphan"
	TagOtherOrphan  Tag = "other_orphan"
	TagLinked       Tag = "linked"
)

// TaggedArc pairs an arc with its diagnostic category.
type TaggedArc struct {
	Arc
	Tag Tag `json:"tag" yaml:"tag"`
}

// step is one hop in an adjacency index: the commodity at the other end and
// the tech that connects to it.
type step struct {
	Commodity string
	Tech      string
}

// adjacency maps a commodity to its steps. The arc index is keyed by output
// (steps name inputs); the visited index is keyed by input (steps name outputs).
type adjacency map[string]map[step]struct{}

func (a adjacency) add(key string, s step) {
	steps, ok := a[key]
	if !ok {
		steps = make(map[step]struct{})
		a[key] = steps
	}
	steps[s] = struct{}{}
}

// clone copies the index so a search can consume the copy.
func (a adjacency) clone() adjacency {
	out := make(adjacency, len(a))
	for k, v := range a {
		out[k] = maps.Clone(v)
	}
	return out
}

// byOutput flattens an output-keyed index into arcs.
func (a adjacency) byOutput() ArcSet {
	out := make(ArcSet)
	for oc, steps := range a {
		for s := range steps {
			out.Add(Arc{Input: s.Commodity, Tech: s.Tech, Output: oc})
		}
	}
	return out
}

// byInput flattens an input-keyed index into arcs.
func (a adjacency) byInput() ArcSet {
	out := make(ArcSet)
	for ic, steps := range a {
		for s := range steps {
			out.Add(Arc{Input: ic, Tech: s.Tech, Output: s.Commodity})
		}
	}
	return out
}

// removeTech drops every step through tech from an output-keyed index and
// returns the arcs removed.
func (a adjacency) removeTech(tech string) ArcSet {
	removed := make(ArcSet)
	for oc, steps := range a {
		for s := range steps {
			if s.Tech == tech {
				delete(steps, s)
				removed.Add(Arc{Input: s.Commodity, Tech: tech, Output: oc})
			}
		}
		if len(steps) == 0 {
			delete(a, oc)
		}
	}
	return removed
}
