// Package domain contains the conversion graph: assets as nodes, quotes as
// log-weighted directed edges.
package domain

import (
	"fmt"

	"github.com/fd1az/arbgraph/internal/asset"
)

// NodeID is a stable handle to a node. Handles are never reused after removal.
type NodeID int

// Node is an asset in the graph.
type Node struct {
	ID    NodeID
	Asset asset.Symbol
}

// Edge is a directed conversion with weight -log2(price).
type Edge struct {
	From   NodeID
	To     NodeID
	Weight float64
}

// Price converts the edge weight back to a conversion rate.
func (e Edge) Price() float64 {
	return PriceFromWeight(e.Weight)
}

// View is the read-only face of a Graph handed to exporters.
type View interface {
	NodeCount() int
	EdgeCount() int
	Nodes() []Node
	Edges() []Edge
	OutEdges(id NodeID) []Edge
	Asset(id NodeID) (asset.Symbol, bool)
}

// Graph is a directed multigraph. Parallel edges between the same ordered pair
// are kept; nothing is deduplicated.
//
// Nodes keep insertion order and so do the out-edges of each node, which makes
// iteration and "first edge between u and v" deterministic.
type Graph struct {
	order  []NodeID
	nodes  map[NodeID]asset.Symbol
	index  map[asset.Symbol]NodeID
	out    map[NodeID][]Edge
	edges  int
	nextID NodeID
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[NodeID]asset.Symbol),
		index: make(map[asset.Symbol]NodeID),
		out:   make(map[NodeID][]Edge),
	}
}

// AddNode returns the handle for a, creating the node on first use.
func (g *Graph) AddNode(a asset.Symbol) NodeID {
	if id, ok := g.index[a]; ok {
		return id
	}

	id := g.nextID
	g.nextID++

	g.order = append(g.order, id)
	g.nodes[id] = a
	g.index[a] = id
	return id
}

// AddEdge inserts a new edge. Both endpoints must exist.
func (g *Graph) AddEdge(from, to NodeID, weight float64) error {
	if !g.HasNode(from) {
		return fmt.Errorf("graph: edge source %d not in graph", from)
	}
	if !g.HasNode(to) {
		return fmt.Errorf("graph: edge target %d not in graph", to)
	}

	g.out[from] = append(g.out[from], Edge{From: from, To: to, Weight: weight})
	g.edges++
	return nil
}

// AddQuote inserts the forward edge base->other with weight -log2(price) and the
// reverse edge other->base with the negated weight. price must be positive.
func (g *Graph) AddQuote(base, other asset.Symbol, price float64) error {
	w, err := WeightFromPrice(price)
	if err != nil {
		return err
	}

	from := g.AddNode(base)
	to := g.AddNode(other)

	if err := g.AddEdge(from, to, w); err != nil {
		return err
	}
	return g.AddEdge(to, from, -w)
}

// RemoveNode deletes a node and every edge incident to it.
// Returns false if the node was not present.
func (g *Graph) RemoveNode(id NodeID) bool {
	a, ok := g.nodes[id]
	if !ok {
		return false
	}

	g.edges -= len(g.out[id])
	delete(g.out, id)
	delete(g.nodes, id)
	delete(g.index, a)

	for i, n := range g.order {
		if n == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}

	for _, n := range g.order {
		edges := g.out[n]
		kept := edges[:0]
		for _, e := range edges {
			if e.To != id {
				kept = append(kept, e)
			}
		}
		g.edges -= len(edges) - len(kept)
		if len(kept) == 0 {
			delete(g.out, n)
		} else {
			g.out[n] = kept
		}
	}

	return true
}

// HasNode reports whether id is present.
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Lookup resolves an asset to its node handle.
func (g *Graph) Lookup(a asset.Symbol) (NodeID, bool) {
	id, ok := g.index[a]
	return id, ok
}

// Asset returns the asset of a node.
func (g *Graph) Asset(id NodeID) (asset.Symbol, bool) {
	a, ok := g.nodes[id]
	return a, ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.order)
}

// EdgeCount returns the number of edges, parallel edges included.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// NodeIDs returns node handles in insertion order.
func (g *Graph) NodeIDs() []NodeID {
	ids := make([]NodeID, len(g.order))
	copy(ids, g.order)
	return ids
}

// Nodes returns nodes in insertion order.
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, Node{ID: id, Asset: g.nodes[id]})
	}
	return nodes
}

// First returns the earliest inserted surviving node.
func (g *Graph) First() (NodeID, bool) {
	if len(g.order) == 0 {
		return 0, false
	}
	return g.order[0], true
}

// Edges returns all edges grouped by source node in insertion order.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.edges)
	for _, id := range g.order {
		edges = append(edges, g.out[id]...)
	}
	return edges
}

// OutEdges returns the outgoing edges of a node in insertion order.
func (g *Graph) OutEdges(id NodeID) []Edge {
	edges := g.out[id]
	result := make([]Edge, len(edges))
	copy(result, edges)
	return result
}

// OutDegree returns the number of outgoing edges of a node.
func (g *Graph) OutDegree(id NodeID) int {
	return len(g.out[id])
}

// FindEdge returns the first inserted edge from -> to.
func (g *Graph) FindEdge(from, to NodeID) (Edge, bool) {
	for _, e := range g.out[from] {
		if e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

// AverageOutDegree is the sum of out-degrees over the node count, 0 when empty.
func (g *Graph) AverageOutDegree() float64 {
	if len(g.order) == 0 {
		return 0
	}
	return float64(g.edges) / float64(len(g.order))
}

// Clone returns a deep copy. Node handles are preserved.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		order:  make([]NodeID, len(g.order)),
		nodes:  make(map[NodeID]asset.Symbol, len(g.nodes)),
		index:  make(map[asset.Symbol]NodeID, len(g.index)),
		out:    make(map[NodeID][]Edge, len(g.out)),
		edges:  g.edges,
		nextID: g.nextID,
	}
	copy(c.order, g.order)
	for id, a := range g.nodes {
		c.nodes[id] = a
		c.index[a] = id
	}
	for id, edges := range g.out {
		c.out[id] = append([]Edge(nil), edges...)
	}
	return c
}
