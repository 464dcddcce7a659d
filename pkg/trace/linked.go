package trace

import (
	"cmp"
	"maps"
	"slices"

	"github.com/dd0wney/cluso-netcheck/pkg/logging"
	"github.com/dd0wney/cluso-netcheck/pkg/network"
)

// linkPair is a viable driver/driven coupling in this region and period.
type linkPair struct {
	Driver string
	Driven string
}

func compareLinks(a, b linkPair) int {
	return cmp.Or(cmp.Compare(a.Driver, b.Driver), cmp.Compare(a.Driven, b.Driven))
}

// resolveLinkedTechs validates the declared couplings of this region and adds
// a synthetic arc from every driven input to every driver output for each pair
// whose members are both active.
func (n *CommodityNetwork) resolveLinkedTechs() error {
	for _, lt := range n.data.LinkedTechs {
		if lt.Region != n.region {
			continue
		}

		if inputs := n.data.RegionInputs(n.region, lt.Driven); len(inputs) > 1 {
			n.logger.Error("driven linked tech has several input commodities",
				logging.Tech(lt.Driven), logging.Strings("inputs", inputs.Sorted()))
			return network.NewConfigError("trace.resolveLinkedTechs").
				At(n.region, n.period).
				Tech(lt.Driven).
				Context("driver %s, inputs %v", lt.Driver, inputs.Sorted()).
				Cause(network.ErrAmbiguousLinkedTech)
		}

		_, driverActive := n.techOutputs[lt.Driver]
		_, drivenActive := n.techOutputs[lt.Driven]

		switch {
		case !driverActive && !drivenActive:
			n.logger.Debug("neither linked tech is active (no action required)",
				logging.String("driver", lt.Driver), logging.String("driven", lt.Driven))

		case driverActive && !drivenActive:
			n.logger.Info("driver is active without its driven linked tech and runs unconstrained",
				logging.String("driver", lt.Driver), logging.String("driven", lt.Driven))

		case !driverActive && drivenActive:
			n.logger.Error("driven linked tech is active without its driver",
				logging.String("driver", lt.Driver), logging.String("driven", lt.Driven))
			return network.NewConfigError("trace.resolveLinkedTechs").
				At(n.region, n.period).
				Tech(lt.Driven).
				Context("driver %s", lt.Driver).
				Cause(network.ErrDrivenWithoutDriver)

		default:
			n.logger.Debug("both linked techs are active, establishing link",
				logging.String("driver", lt.Driver), logging.String("driven", lt.Driven))
			n.viableLinks[linkPair{Driver: lt.Driver, Driven: lt.Driven}] = struct{}{}
		}
	}
	n.synthetic = n.linkArcs()
	for a := range n.synthetic {
		n.index.add(a.Output, step{Commodity: a.Input, Tech: LinkedTechLabel})
	}
	return nil
}

// linkArcs computes the synthetic arcs implied by the current viable links.
func (n *CommodityNetwork) linkArcs() ArcSet {
	arcs := make(ArcSet)
	for link := range n.viableLinks {
		for out := range n.techOutputs[link.Driver] {
			for in := range n.techInputs[link.Driven] {
				arcs.Add(Arc{Input: in, Tech: LinkedTechLabel, Output: out})
			}
		}
	}
	return arcs
}

// pruneSourLinks removes both members of every viable link that does not have
// both techs among the good arcs. It reports whether anything was removed.
func (n *CommodityNetwork) pruneSourLinks(good ArcSet) bool {
	observed := good.Techs()
	sour := false
	for _, link := range slices.SortedFunc(maps.Keys(n.viableLinks), compareLinks) {
		if observed.Has(link.Driver) && observed.Has(link.Driven) {
			continue
		}
		sour = true
		delete(n.viableLinks, link)
		n.removeTech(link.Driver)
		n.removeTech(link.Driven)
		n.logger.Warn("linked techs are not both valid in the network; both members removed",
			logging.String("driver", link.Driver), logging.String("driven", link.Driven))
	}
	if !sour {
		return false
	}

	// synthetic arcs still backed by a surviving link stay in the index
	rebuilt := n.linkArcs()
	for a := range n.synthetic.Minus(rebuilt) {
		if steps, ok := n.index[a.Output]; ok {
			delete(steps, step{Commodity: a.Input, Tech: LinkedTechLabel})
			if len(steps) == 0 {
				delete(n.index, a.Output)
			}
		}
		n.pruned.Add(a)
	}
	n.synthetic = rebuilt
	return true
}

// removeTech takes every arc of tech out of the index and remembers it as pruned.
func (n *CommodityNetwork) removeTech(tech string) {
	delete(n.techInputs, tech)
	delete(n.techOutputs, tech)
	for a := range n.index.removeTech(tech) {
		n.pruned.Add(a)
		n.logger.Debug("removed arc by tech name", logging.Arc(a.Input, a.Tech, a.Output))
	}
}
