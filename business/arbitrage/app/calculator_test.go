package app

import (
	"math"
	"testing"

	"github.com/fd1az/arbgraph/business/arbitrage/domain"
	graph "github.com/fd1az/arbgraph/business/graph/domain"
	"github.com/fd1az/arbgraph/internal/asset"
)

func TestProfitCalculator_Calculate(t *testing.T) {
	tests := []struct {
		name        string
		edges       []edgeSpec
		cycle       []string
		wantProfit  float64
		wantSkipped int
	}{
		{
			name:       "profitable_triangle",
			edges:      []edgeSpec{{"A", "B", -1}, {"B", "C", -1}, {"C", "A", 1}},
			cycle:      []string{"A", "B", "C"},
			wantProfit: 2, // 2 * 2 * 0.5
		},
		{
			name:       "break_even",
			edges:      []edgeSpec{{"A", "B", -1}, {"B", "A", 1}},
			cycle:      []string{"A", "B"},
			wantProfit: 1,
		},
		{
			name:       "losing_loop",
			edges:      []edgeSpec{{"A", "B", 1}, {"B", "A", 1}},
			cycle:      []string{"A", "B"},
			wantProfit: 0.25,
		},
		{
			name:        "missing_closing_edge_is_skipped",
			edges:       []edgeSpec{{"A", "B", -1}, {"B", "C", -1}},
			cycle:       []string{"A", "B", "C"},
			wantProfit:  4,
			wantSkipped: 1,
		},
		{
			name:       "first_parallel_edge_wins",
			edges:      []edgeSpec{{"A", "B", -1}, {"A", "B", -3}, {"B", "A", 0}},
			cycle:      []string{"A", "B"},
			wantProfit: 2,
		},
	}

	calc := NewProfitCalculator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildGraph(t, nil, tt.edges)
			var ids []graph.NodeID
			for _, a := range tt.cycle {
				id, _ := g.Lookup(asset.Symbol(a))
				ids = append(ids, id)
			}

			res := calc.Calculate(g, domain.NewCycle(g, ids))
			if math.Abs(res.Profit-tt.wantProfit) > 1e-12 {
				t.Errorf("Profit = %v, want %v", res.Profit, tt.wantProfit)
			}
			if res.Skipped != tt.wantSkipped {
				t.Errorf("Skipped = %d, want %d", res.Skipped, tt.wantSkipped)
			}
		})
	}
}

func TestProfitCalculator_EmptyCycle(t *testing.T) {
	res := NewProfitCalculator().Calculate(graph.NewGraph(), domain.Cycle{})
	if res.Profit != 1 || res.Skipped != 0 {
		t.Errorf("empty cycle = %+v", res)
	}
}

// Every cycle the detector reports must evaluate to a profit above 1.
func TestProfitCalculator_AgreesWithDetector(t *testing.T) {
	graphs := [][]edgeSpec{
		{{"A", "B", -1}, {"B", "C", -1}, {"C", "A", 1}},
		{{"A", "B", -0.2}, {"B", "A", 0.1}, {"B", "C", 3}},
		{{"X", "Y", 0.5}, {"Y", "Z", 0.5}, {"Z", "W", -2}, {"W", "X", 0.5}},
	}

	calc := NewProfitCalculator()
	for i, edges := range graphs {
		g := buildGraph(t, nil, edges)
		start, _ := g.First()

		cycle, found := FindNegativeCycle(g, start, 0)
		if !found {
			t.Fatalf("graph %d: expected a cycle", i)
		}
		if res := calc.Calculate(g, cycle); res.Profit <= 1 || res.TotalWeight >= 0 {
			t.Errorf("graph %d: profit = %v, weight = %v", i, res.Profit, res.TotalWeight)
		}
	}
}
