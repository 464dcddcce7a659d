// Package trace classifies the technology arcs of one region and period of an
// energy-system model by whether they can carry flow from a source commodity
// to a demand commodity.
//
// The graph is a reverse-adjacency index: output commodity → {(input, tech)}.
// Vintages collapse, so a tech built in several years contributes one arc per
// (input, output) pair.
//
// Analysis runs in two phases over explicit worklists:
//
//   - Discovery walks backward from every demand commodity. Each output is
//     expanded exactly once (its adjacency list is consumed), which bounds the
//     walk by the number of arcs and makes cycles harmless. Every step is
//     recorded in a visited index keyed by input commodity, and inputs that are
//     sources are recorded as discovered.
//   - Confirmation walks forward from the discovered sources through the
//     visited index, again consuming each node once, and marks every step good.
//
// Arcs visited but not confirmed are demand orphans; arcs never visited are
// other orphans. The two sets are kept separate until classification.
//
// Linked techs (a driven tech gated by a driver through an emission
// commodity) are expanded into synthetic arcs labelled LinkedTechLabel before
// the search. Configuration problems are returned as *network.ConfigError.
package trace
