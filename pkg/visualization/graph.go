// Package visualization renders the tagged arcs of one (region, period) as a
// layered commodity graph document with node positions.
package visualization

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dd0wney/cluso-netcheck/pkg/network"
	"github.com/dd0wney/cluso-netcheck/pkg/trace"
)

// Layer places a commodity in the drawing: sources on top, demands at the bottom.
type Layer int

const (
	LayerSource   Layer = 1
	LayerPhysical Layer = 2
	LayerDemand   Layer = 3
)

var layerStyle = map[Layer]struct {
	color string
	size  int
}{
	LayerSource:   {"limegreen", 50},
	LayerPhysical: {"violet", 15},
	LayerDemand:   {"darkorange", 30},
}

var tagStyle = map[trace.Tag]struct {
	color string
	width float64
}{
	trace.TagGood:         {"black", 1},
	trace.TagDemandOrphan: {"red", 3},
	trace.TagOtherOrphan:  {"goldenrod", 3},
	trace.TagLinked:       {"royalblue", 2},
}

// Node is one commodity in the drawing.
type Node struct {
	ID    string  `json:"id"`
	Layer Layer   `json:"layer"`
	Color string  `json:"color"`
	Size  int     `json:"size"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Edge is one tagged arc in the drawing.
type Edge struct {
	From  string    `json:"from"`
	To    string    `json:"to"`
	Tech  string    `json:"tech"`
	Tag   trace.Tag `json:"tag"`
	Color string    `json:"color"`
	Width float64   `json:"width"`
}

// Graph is the commodity graph of a single (region, period).
type Graph struct {
	Region string `json:"region"`
	Period int    `json:"period"`
	Nodes  []Node `json:"nodes"`
	Edges  []Edge `json:"edges"`
}

// BuildGraph creates the graph for the given tagged arcs. Every commodity
// touched by an arc becomes a node, and so does every demand even when
// nothing produces it.
func BuildGraph(region string, period int, arcs []trace.TaggedArc, sources, demands network.StringSet) *Graph {
	g := &Graph{Region: region, Period: period}

	seen := make(map[string]bool)
	addNode := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		layer := LayerPhysical
		switch {
		case sources.Has(id):
			layer = LayerSource
		case demands.Has(id):
			layer = LayerDemand
		}
		style := layerStyle[layer]
		g.Nodes = append(g.Nodes, Node{ID: id, Layer: layer, Color: style.color, Size: style.size})
	}

	for _, a := range arcs {
		addNode(a.Input)
		addNode(a.Output)
		style, ok := tagStyle[a.Tag]
		if !ok {
			style = tagStyle[trace.TagGood]
		}
		g.Edges = append(g.Edges, Edge{
			From:  a.Input,
			To:    a.Output,
			Tech:  a.Tech,
			Tag:   a.Tag,
			Color: style.color,
			Width: style.width,
		})
	}
	for _, d := range demands.Sorted() {
		addNode(d)
	}

	slices.SortFunc(g.Nodes, func(a, b Node) int {
		return cmp.Or(cmp.Compare(a.Layer, b.Layer), cmp.Compare(a.ID, b.ID))
	})
	return g
}

// successors lists the distinct targets of each node's outgoing edges in order.
func (g *Graph) successors() map[string][]string {
	out := make(map[string][]string)
	for _, e := range g.Edges {
		if e.From == e.To || slices.Contains(out[e.From], e.To) {
			continue
		}
		out[e.From] = append(out[e.From], e.To)
	}
	for id := range out {
		slices.Sort(out[id])
	}
	return out
}

// ApplyLayout positions every node. Positions outside the layout's canvas are
// rescaled to fit it.
func (g *Graph) ApplyLayout(layout Layout, config *LayoutConfig) error {
	if config == nil {
		config = DefaultLayoutConfig()
	}
	positions, err := layout.ComputeLayout(g)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	for _, pos := range positions {
		if pos.X < 0 || pos.Y < 0 || pos.X > config.Width || pos.Y > config.Height {
			positions = normalizePositions(positions, config.Width, config.Height, config.Padding)
			break
		}
	}
	for i := range g.Nodes {
		pos := positions[g.Nodes[i].ID]
		g.Nodes[i].X, g.Nodes[i].Y = pos.X, pos.Y
	}
	return nil
}

// WriteJSON writes the graph as an indented JSON document.
func (g *Graph) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

// FileName is the name the graph is stored under.
func FileName(region string, period int) string {
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, region)
	return fmt.Sprintf("Commodity_Graph_%s_%d.json", safe, period)
}

// WriteFile stores the graph in dir and returns the path written.
func (g *Graph) WriteFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create graph directory: %w", err)
	}
	path := filepath.Join(dir, FileName(g.Region, g.Period))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create graph file: %w", err)
	}
	if err := g.WriteJSON(f); err != nil {
		f.Close()
		return "", fmt.Errorf("write graph %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close graph %s: %w", path, err)
	}
	return path, nil
}
