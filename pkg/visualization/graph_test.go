package visualization

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-netcheck/pkg/network"
	"github.com/dd0wney/cluso-netcheck/pkg/trace"
)

func tagged(input, tech, output string, tag trace.Tag) trace.TaggedArc {
	return trace.TaggedArc{Arc: trace.Arc{Input: input, Tech: tech, Output: output}, Tag: tag}
}

// heatingGraph: ethos feeds gas, gas feeds heat; a dead-end chp burns gas
// into elc, and nothing produces the cool demand.
func heatingGraph() *Graph {
	arcs := []trace.TaggedArc{
		tagged("ethos", "import", "gas", trace.TagGood),
		tagged("gas", "boiler", "heat", trace.TagGood),
		tagged("gas", "chp", "elc", trace.TagOtherOrphan),
		tagged("gas", trace.LinkedTechLabel, "co2", trace.TagLinked),
	}
	return BuildGraph("R1", 2020, arcs, network.NewStringSet("ethos"), network.NewStringSet("heat", "cool"))
}

func nodeByID(t *testing.T, g *Graph, id string) Node {
	t.Helper()
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("node %q not in graph", id)
	return Node{}
}

func TestBuildGraph_Layers(t *testing.T) {
	g := heatingGraph()

	ids := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"ethos", "co2", "elc", "gas", "cool", "heat"}, ids)

	tests := []struct {
		id    string
		layer Layer
		color string
		size  int
	}{
		{"ethos", LayerSource, "limegreen", 50},
		{"gas", LayerPhysical, "violet", 15},
		{"heat", LayerDemand, "darkorange", 30},
		{"cool", LayerDemand, "darkorange", 30},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			n := nodeByID(t, g, tt.id)
			assert.Equal(t, tt.layer, n.Layer)
			assert.Equal(t, tt.color, n.Color)
			assert.Equal(t, tt.size, n.Size)
		})
	}
}

func TestBuildGraph_EdgeStyles(t *testing.T) {
	g := heatingGraph()
	require.Len(t, g.Edges, 4)

	styles := map[string]Edge{}
	for _, e := range g.Edges {
		styles[e.Tech] = e
	}
	assert.Equal(t, "black", styles["boiler"].Color)
	assert.Equal(t, "goldenrod", styles["chp"].Color)
	assert.Greater(t, styles["chp"].Width, styles["boiler"].Width)
	assert.Equal(t, "royalblue", styles[trace.LinkedTechLabel].Color)
	assert.Equal(t, trace.TagLinked, styles[trace.LinkedTechLabel].Tag)
}

func TestHierarchicalLayout(t *testing.T) {
	g := heatingGraph()
	config := &LayoutConfig{Width: 600, Height: 400}
	require.NoError(t, g.ApplyLayout(NewHierarchicalLayout(config), config))

	ethos := nodeByID(t, g, "ethos")
	gas := nodeByID(t, g, "gas")
	heat := nodeByID(t, g, "heat")
	cool := nodeByID(t, g, "cool")

	// Source on top, then its products, demands at the bottom.
	if ethos.Y >= gas.Y {
		t.Errorf("source Y=%f should be above gas Y=%f", ethos.Y, gas.Y)
	}
	for _, n := range g.Nodes {
		if n.Layer != LayerDemand && n.Y >= heat.Y {
			t.Errorf("node %s has Y=%f, should be above demand Y=%f", n.ID, n.Y, heat.Y)
		}
	}
	if math.Abs(heat.Y-cool.Y) > 1.0 {
		t.Errorf("demands not at same level: %f, %f", heat.Y, cool.Y)
	}

	// elc and co2 are both one hop below gas.
	elc := nodeByID(t, g, "elc")
	co2 := nodeByID(t, g, "co2")
	if math.Abs(elc.Y-co2.Y) > 1.0 {
		t.Errorf("siblings not at same level: %f, %f", elc.Y, co2.Y)
	}
	if elc.X == co2.X {
		t.Error("siblings share an X coordinate")
	}

	for _, n := range g.Nodes {
		if n.X < 50 || n.X > 550 || n.Y < 50 || n.Y > 350 {
			t.Errorf("node %s at (%f, %f) outside padded canvas", n.ID, n.X, n.Y)
		}
	}
}

func TestHierarchicalLayout_StrandedCommodity(t *testing.T) {
	arcs := []trace.TaggedArc{
		tagged("ethos", "import", "gas", trace.TagGood),
		tagged("gas", "boiler", "heat", trace.TagGood),
		tagged("ore", "mine", "coal", trace.TagDemandOrphan),
	}
	g := BuildGraph("R1", 2020, arcs, network.NewStringSet("ethos"), network.NewStringSet("heat"))
	require.NoError(t, g.ApplyLayout(NewHierarchicalLayout(nil), nil))

	ore := nodeByID(t, g, "ore")
	gas := nodeByID(t, g, "gas")
	heat := nodeByID(t, g, "heat")
	assert.Greater(t, ore.Y, gas.Y)
	assert.Less(t, ore.Y, heat.Y)
}

func TestHierarchicalLayout_Empty(t *testing.T) {
	g := BuildGraph("R1", 2020, nil, nil, nil)
	positions, err := NewHierarchicalLayout(nil).ComputeLayout(g)
	require.NoError(t, err)
	assert.Empty(t, positions)
}

type fixedLayout map[string]Position

func (f fixedLayout) ComputeLayout(*Graph) (map[string]Position, error) { return f, nil }

type failingLayout struct{}

func (failingLayout) ComputeLayout(*Graph) (map[string]Position, error) {
	return nil, errors.New("boom")
}

func TestApplyLayout_Normalizes(t *testing.T) {
	arcs := []trace.TaggedArc{tagged("a", "t", "b", trace.TagGood)}
	g := BuildGraph("R1", 2020, arcs, network.NewStringSet("a"), network.NewStringSet("b"))

	config := &LayoutConfig{Width: 100, Height: 100, Padding: 10}
	layout := fixedLayout{"a": {X: -500, Y: -500}, "b": {X: 500, Y: 500}}
	require.NoError(t, g.ApplyLayout(layout, config))

	a := nodeByID(t, g, "a")
	b := nodeByID(t, g, "b")
	assert.InDelta(t, 10, a.X, 0.001)
	assert.InDelta(t, 10, a.Y, 0.001)
	assert.InDelta(t, 90, b.X, 0.001)
	assert.InDelta(t, 90, b.Y, 0.001)
}

func TestApplyLayout_Error(t *testing.T) {
	err := heatingGraph().ApplyLayout(failingLayout{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compute layout")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Commodity_Graph_R1_2020.json", FileName("R1", 2020))
	assert.Equal(t, "Commodity_Graph_a_b_2030.json", FileName("a/b", 2030))
}

func TestWriteFile(t *testing.T) {
	g := heatingGraph()
	require.NoError(t, g.ApplyLayout(NewHierarchicalLayout(nil), nil))

	dir := filepath.Join(t.TempDir(), "graphs")
	path, err := g.WriteFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Commodity_Graph_R1_2020.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Graph
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "R1", decoded.Region)
	assert.Equal(t, 2020, decoded.Period)
	assert.Equal(t, g.Nodes, decoded.Nodes)
	assert.Equal(t, g.Edges, decoded.Edges)
}
