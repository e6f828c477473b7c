package app

import (
	"github.com/fd1az/arbgraph/business/arbitrage/domain"
	graph "github.com/fd1az/arbgraph/business/graph/domain"
)

// EdgeFinder resolves the first inserted edge between two nodes.
type EdgeFinder interface {
	FindEdge(from, to graph.NodeID) (graph.Edge, bool)
}

// ProfitResult is the outcome of evaluating a cycle.
type ProfitResult struct {
	Profit      float64 // product of conversion rates; > 1 means arbitrage
	TotalWeight float64 // sum of the log2 weights used
	Skipped     int     // consecutive pairs with no edge
}

// ProfitCalculator evaluates cycles against a graph.
type ProfitCalculator struct{}

// NewProfitCalculator creates a new ProfitCalculator.
func NewProfitCalculator() *ProfitCalculator {
	return &ProfitCalculator{}
}

// Calculate multiplies 2^(-w) over every consecutive pair of the cycle,
// closing it with last->first. The first edge encountered between each pair
// is used; pairs without an edge are skipped. An empty cycle yields 1.
func (c *ProfitCalculator) Calculate(g EdgeFinder, cycle domain.Cycle) ProfitResult {
	res := ProfitResult{Profit: 1}

	n := len(cycle.Nodes)
	for i := 0; i < n; i++ {
		from := cycle.Nodes[i]
		to := cycle.Nodes[(i+1)%n]

		e, ok := g.FindEdge(from, to)
		if !ok {
			res.Skipped++
			continue
		}
		res.Profit *= e.Price()
		res.TotalWeight += e.Weight
	}

	return res
}
