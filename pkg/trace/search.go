package trace

import "github.com/dd0wney/cluso-netcheck/pkg/network"

// Phase identifies which half of the search expanded a commodity.
type Phase int

const (
	// PhaseDiscovery is the backward walk from demands.
	PhaseDiscovery Phase = iota
	// PhaseConfirmation is the forward walk from discovered sources.
	PhaseConfirmation
)

func (p Phase) String() string {
	if p == PhaseDiscovery {
		return "discovery"
	}
	return "confirmation"
}

// Observer is told about every node expansion. Each commodity is expanded at
// most once per phase per search.
type Observer interface {
	OnExpand(phase Phase, commodity string)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(phase Phase, commodity string)

func (f ObserverFunc) OnExpand(phase Phase, commodity string) { f(phase, commodity) }

type nopObserver struct{}

func (nopObserver) OnExpand(Phase, string) {}

// traceFromDemand walks backward from the demand commodities over a copy of
// index (output → {(input, tech)}). It returns the sources reached and the
// visited steps keyed by input commodity (input → {(output, tech)}).
func traceFromDemand(demands, sources network.StringSet, index adjacency, obs Observer) (network.StringSet, adjacency) {
	work := index.clone()
	discovered := make(network.StringSet)
	visited := make(adjacency)

	stack := demands.Sorted()
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		producers, ok := work[node]
		if !ok {
			continue
		}
		// consuming the list is what guarantees exactly-once expansion
		delete(work, node)
		obs.OnExpand(PhaseDiscovery, node)

		for s := range producers {
			visited.add(s.Commodity, step{Commodity: node, Tech: s.Tech})
			if sources.Has(s.Commodity) {
				discovered.Add(s.Commodity)
				continue
			}
			stack = append(stack, s.Commodity)
		}
	}
	return discovered, visited
}

// confirmFromSources walks forward from the discovered sources through the
// visited index and returns every step it crosses as a good arc.
func confirmFromSources(discovered network.StringSet, visited adjacency, obs Observer) ArcSet {
	work := visited.clone()
	good := make(ArcSet)

	stack := discovered.Sorted()
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		successors, ok := work[node]
		if !ok {
			continue
		}
		delete(work, node)
		obs.OnExpand(PhaseConfirmation, node)

		for s := range successors {
			good.Add(Arc{Input: node, Tech: s.Tech, Output: s.Commodity})
			stack = append(stack, s.Commodity)
		}
	}
	return good
}
