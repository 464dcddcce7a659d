package visualization

// Position represents a 2D coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutConfig configures layout parameters
type LayoutConfig struct {
	Width   float64 // Canvas width
	Height  float64 // Canvas height
	Padding float64 // Padding from edges
}

// DefaultLayoutConfig is the canvas used when the caller does not supply one.
func DefaultLayoutConfig() *LayoutConfig {
	return &LayoutConfig{Width: 1200, Height: 800, Padding: 50}
}

// Layout computes a position for every node of a commodity graph.
type Layout interface {
	ComputeLayout(g *Graph) (map[string]Position, error)
}
