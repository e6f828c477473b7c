// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"strings"

	graph "github.com/fd1az/arbgraph/business/graph/domain"
	"github.com/fd1az/arbgraph/internal/asset"
)

// Cycle is a closed conversion path in forward edge order: consecutive nodes
// are joined by an edge and the last node links back to the first. The first
// node is not repeated at the end.
type Cycle struct {
	Nodes  []graph.NodeID
	Assets []asset.Symbol
}

// NewCycle resolves the asset of every node so the cycle can be rendered
// without the graph.
func NewCycle(g graph.View, nodes []graph.NodeID) Cycle {
	assets := make([]asset.Symbol, len(nodes))
	for i, id := range nodes {
		a, _ := g.Asset(id)
		assets[i] = a
	}
	return Cycle{Nodes: nodes, Assets: assets}
}

// Len is the number of nodes, which equals the number of edges in the cycle.
func (c Cycle) Len() int {
	return len(c.Nodes)
}

// String renders the path, closing it with the first asset: "A -> B -> C -> A".
func (c Cycle) String() string {
	if len(c.Assets) == 0 {
		return ""
	}
	var b strings.Builder
	for _, a := range c.Assets {
		b.WriteString(a.String())
		b.WriteString(" -> ")
	}
	b.WriteString(c.Assets[0].String())
	return b.String()
}
