package visualization

import "slices"

// HierarchicalLayout arranges commodities in levels by their distance from a
// source commodity. Demand commodities always share the bottom level.
type HierarchicalLayout struct {
	config *LayoutConfig
}

// NewHierarchicalLayout creates a new hierarchical layout
func NewHierarchicalLayout(config *LayoutConfig) *HierarchicalLayout {
	if config == nil {
		config = DefaultLayoutConfig()
	}
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &HierarchicalLayout{config: config}
}

// ComputeLayout arranges nodes hierarchically
func (hl *HierarchicalLayout) ComputeLayout(g *Graph) (map[string]Position, error) {
	positions := make(map[string]Position)

	if len(g.Nodes) == 0 {
		return positions, nil
	}

	// Sources are the roots; fall back to nodes with no incoming edges.
	var roots, demands []string
	incoming := make(map[string]int)
	for _, e := range g.Edges {
		if e.From != e.To {
			incoming[e.To]++
		}
	}
	for _, n := range g.Nodes {
		switch n.Layer {
		case LayerSource:
			roots = append(roots, n.ID)
		case LayerDemand:
			demands = append(demands, n.ID)
		}
	}
	if len(roots) == 0 {
		for _, n := range g.Nodes {
			if n.Layer != LayerDemand && incoming[n.ID] == 0 {
				roots = append(roots, n.ID)
			}
		}
	}
	if len(roots) == 0 && len(demands) < len(g.Nodes) {
		for _, n := range g.Nodes {
			if n.Layer != LayerDemand {
				roots = []string{n.ID}
				break
			}
		}
	}

	successors := g.successors()
	visited := make(map[string]bool, len(g.Nodes))
	for _, id := range demands {
		visited[id] = true
	}

	// Build levels using BFS
	levels := make([][]string, 0)
	currentLevel := roots
	for _, id := range roots {
		visited[id] = true
	}

	for len(currentLevel) > 0 {
		levels = append(levels, currentLevel)
		nextLevel := make([]string, 0)

		for _, id := range currentLevel {
			for _, next := range successors[id] {
				if !visited[next] {
					nextLevel = append(nextLevel, next)
					visited[next] = true
				}
			}
		}

		slices.Sort(nextLevel)
		currentLevel = nextLevel
	}

	// Commodities no source reaches sit one level above the demands.
	var stranded []string
	for _, n := range g.Nodes {
		if !visited[n.ID] {
			stranded = append(stranded, n.ID)
		}
	}
	if len(stranded) > 0 {
		levels = append(levels, stranded)
	}
	if len(demands) > 0 {
		levels = append(levels, demands)
	}

	// Position nodes
	levelHeight := (hl.config.Height - 2*hl.config.Padding) / float64(len(levels))
	levelWidth := hl.config.Width - 2*hl.config.Padding

	for levelIdx, level := range levels {
		y := hl.config.Padding + float64(levelIdx)*levelHeight + levelHeight/2
		spacing := levelWidth / float64(len(level)+1)

		for nodeIdx, id := range level {
			x := hl.config.Padding + spacing*float64(nodeIdx+1)
			positions[id] = Position{X: x, Y: y}
		}
	}

	return positions, nil
}
