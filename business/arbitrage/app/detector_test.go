package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/fd1az/arbgraph/business/arbitrage/domain"
	graph "github.com/fd1az/arbgraph/business/graph/domain"
	"github.com/fd1az/arbgraph/internal/asset"
)

type edgeSpec struct {
	from, to string
	weight   float64
}

func buildGraph(t *testing.T, nodes []string, edges []edgeSpec) *graph.Graph {
	t.Helper()
	g := graph.NewGraph()
	for _, n := range nodes {
		g.AddNode(asset.Symbol(n))
	}
	for _, e := range edges {
		from := g.AddNode(asset.Symbol(e.from))
		to := g.AddNode(asset.Symbol(e.to))
		if err := g.AddEdge(from, to, e.weight); err != nil {
			t.Fatalf("AddEdge(%s, %s): %v", e.from, e.to, err)
		}
	}
	return g
}

func cycleAssets(c domain.Cycle) []string {
	out := make([]string, len(c.Assets))
	for i, a := range c.Assets {
		out[i] = a.String()
	}
	return out
}

// sameRotation reports whether got is a rotation of want.
func sameRotation(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for shift := range want {
		match := true
		for i := range want {
			if got[(i+shift)%len(got)] != want[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func TestFindNegativeCycle(t *testing.T) {
	tests := []struct {
		name      string
		nodes     []string
		edges     []edgeSpec
		start     string
		wantFound bool
		wantCycle []string
	}{
		{
			name:      "triangle_with_negative_total",
			edges:     []edgeSpec{{"A", "B", -1}, {"B", "C", -1}, {"C", "A", 1}},
			start:     "A",
			wantFound: true,
			wantCycle: []string{"A", "B", "C"},
		},
		{
			name:      "all_negative_triangle",
			edges:     []edgeSpec{{"A", "B", -1}, {"B", "C", -1}, {"C", "A", -1}},
			start:     "A",
			wantFound: true,
			wantCycle: []string{"A", "B", "C"},
		},
		{
			name:      "triangle_with_zero_total",
			edges:     []edgeSpec{{"A", "B", -1}, {"B", "C", 0}, {"C", "A", 1}},
			start:     "A",
			wantFound: false,
		},
		{
			name:      "all_positive",
			edges:     []edgeSpec{{"A", "B", 1}, {"B", "C", 2}, {"C", "A", 3}},
			start:     "A",
			wantFound: false,
		},
		{
			name:      "two_node_negative_loop",
			edges:     []edgeSpec{{"A", "B", -2}, {"B", "A", 1}},
			start:     "A",
			wantFound: true,
			wantCycle: []string{"A", "B"},
		},
		{
			name:      "negative_cycle_behind_a_tail",
			edges:     []edgeSpec{{"S", "A", 5}, {"A", "B", -3}, {"B", "C", 1}, {"C", "A", 1}},
			start:     "S",
			wantFound: true,
			wantCycle: []string{"A", "B", "C"},
		},
		{
			name:      "unreachable_negative_cycle",
			nodes:     []string{"S"},
			edges:     []edgeSpec{{"A", "B", -3}, {"B", "A", 1}},
			start:     "S",
			wantFound: false,
		},
		{
			name:      "single_node",
			nodes:     []string{"A"},
			start:     "A",
			wantFound: false,
		},
		{
			name:      "self_loop_on_single_node",
			edges:     []edgeSpec{{"A", "A", -1}},
			start:     "A",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(t, tt.nodes, tt.edges)
			start, ok := g.Lookup(asset.Symbol(tt.start))
			if !ok {
				t.Fatalf("start %s missing", tt.start)
			}

			cycle, found := FindNegativeCycle(g, start, 0)
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v (cycle %v)", found, tt.wantFound, cycleAssets(cycle))
			}
			if !found {
				return
			}
			if !sameRotation(cycleAssets(cycle), tt.wantCycle) {
				t.Errorf("cycle = %v, want rotation of %v", cycleAssets(cycle), tt.wantCycle)
			}
		})
	}
}

func TestFindNegativeCycle_EmptyGraph(t *testing.T) {
	if _, found := FindNegativeCycle(graph.NewGraph(), 0, 0); found {
		t.Error("empty graph must not report a cycle")
	}
}

func TestFindNegativeCycle_UnknownStart(t *testing.T) {
	g := buildGraph(t, nil, []edgeSpec{{"A", "B", -2}, {"B", "A", 1}})
	if _, found := FindNegativeCycle(g, 99, 0); found {
		t.Error("unknown start must not report a cycle")
	}
}

func TestFindNegativeCycle_EdgesFormACycle(t *testing.T) {
	// A ring of rates where one leg is mispriced.
	var edges []edgeSpec
	n := 8
	for i := 0; i < n; i++ {
		w := 0.5
		if i == 3 {
			w = -5
		}
		edges = append(edges, edgeSpec{fmt.Sprintf("N%d", i), fmt.Sprintf("N%d", (i+1)%n), w})
	}
	g := buildGraph(t, nil, edges)
	start, _ := g.First()

	cycle, found := FindNegativeCycle(g, start, 0)
	if !found {
		t.Fatal("expected a cycle")
	}

	total := 0.0
	for i := range cycle.Nodes {
		e, ok := g.FindEdge(cycle.Nodes[i], cycle.Nodes[(i+1)%len(cycle.Nodes)])
		if !ok {
			t.Fatalf("no edge between consecutive cycle nodes %d and %d", i, (i+1)%len(cycle.Nodes))
		}
		total += e.Weight
	}
	if total >= 0 {
		t.Errorf("cycle weight = %v, want negative", total)
	}
}

func TestFindNegativeCycle_Idempotent(t *testing.T) {
	g := buildGraph(t, nil, []edgeSpec{{"A", "B", -1}, {"B", "C", -1}, {"C", "A", 1}, {"C", "D", 2}})
	start, _ := g.First()

	first, _ := FindNegativeCycle(g, start, 0)
	second, _ := FindNegativeCycle(g, start, 0)

	if fmt.Sprint(first.Nodes) != fmt.Sprint(second.Nodes) {
		t.Errorf("repeat detection differs: %v vs %v", first.Nodes, second.Nodes)
	}
	if g.NodeCount() != 4 || g.EdgeCount() != 4 {
		t.Error("detection must not mutate the graph")
	}
}

func TestFindNegativeCycle_Tolerance(t *testing.T) {
	g := buildGraph(t, nil, []edgeSpec{{"A", "B", -1e-9}, {"B", "A", 0}})
	start, _ := g.First()

	if _, found := FindNegativeCycle(g, start, 0); !found {
		t.Error("strict mode should flag a tiny negative cycle")
	}
	if _, found := FindNegativeCycle(g, start, 1e-6); found {
		t.Error("tolerance should suppress a tiny negative cycle")
	}
}

func TestDetector_StartResolution(t *testing.T) {
	// The cycle is only reachable from C.
	g := buildGraph(t, []string{"A"}, []edgeSpec{{"C", "D", -2}, {"D", "C", 1}})
	ctx := context.Background()

	t.Run("first_node_fallback", func(t *testing.T) {
		d := NewDetector(DetectorConfig{StartAsset: "MISSING"})
		if _, found := d.Find(ctx, g); found {
			t.Error("start A cannot reach the cycle")
		}
		if id, _ := d.StartNode(g); id != 0 {
			t.Errorf("StartNode = %d, want first node 0", id)
		}
	})

	t.Run("configured_start", func(t *testing.T) {
		d := NewDetector(DetectorConfig{StartAsset: "C"})
		if _, found := d.Find(ctx, g); !found {
			t.Error("start C should find the cycle")
		}
	})

	t.Run("sweep_all", func(t *testing.T) {
		d := NewDetector(DetectorConfig{StartMode: domain.StartAll})
		cycle, found := d.Find(ctx, g)
		if !found {
			t.Fatal("sweep should find the cycle")
		}
		if !sameRotation(cycleAssets(cycle), []string{"C", "D"}) {
			t.Errorf("cycle = %v", cycleAssets(cycle))
		}
	})
}
