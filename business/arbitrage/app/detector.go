// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"context"
	"math"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbgraph/business/arbitrage/domain"
	graph "github.com/fd1az/arbgraph/business/graph/domain"
	"github.com/fd1az/arbgraph/internal/asset"
)

const (
	tracerName = "github.com/fd1az/arbgraph/business/arbitrage/app"
	meterName  = "github.com/fd1az/arbgraph/business/arbitrage/app"
)

// DetectorConfig holds configuration for the negative cycle detector.
type DetectorConfig struct {
	StartAsset asset.Symbol     // preferred source node; empty means first node
	StartMode  domain.StartMode // fixed or all
	Tolerance  float64          // minimum improvement in the extra pass, 0 = strict
}

// Detector finds negative-weight cycles with Bellman-Ford.
type Detector struct {
	config DetectorConfig
	tracer trace.Tracer
}

// NewDetector creates a new Detector.
func NewDetector(cfg DetectorConfig) *Detector {
	if cfg.StartMode == "" {
		cfg.StartMode = domain.StartFixed
	}
	if cfg.Tolerance < 0 || math.IsNaN(cfg.Tolerance) {
		cfg.Tolerance = 0
	}
	return &Detector{
		config: cfg,
		tracer: otel.Tracer(tracerName),
	}
}

// Find looks for a negative cycle reachable from the start node. Under
// StartAll every node is tried in insertion order and the first hit wins.
// No cycle is a normal result, not an error.
func (d *Detector) Find(ctx context.Context, g *graph.Graph) (domain.Cycle, bool) {
	_, span := d.tracer.Start(ctx, "arbitrage.detect",
		trace.WithAttributes(
			attribute.Int("nodes", g.NodeCount()),
			attribute.Int("edges", g.EdgeCount()),
			attribute.String("start_mode", string(d.config.StartMode)),
		),
	)
	defer span.End()

	var (
		cycle domain.Cycle
		found bool
	)
	if d.config.StartMode == domain.StartAll {
		for _, id := range g.NodeIDs() {
			if cycle, found = FindNegativeCycle(g, id, d.config.Tolerance); found {
				break
			}
		}
	} else if start, ok := d.StartNode(g); ok {
		cycle, found = FindNegativeCycle(g, start, d.config.Tolerance)
	}

	span.SetAttributes(attribute.Bool("found", found), attribute.Int("cycle_length", cycle.Len()))
	return cycle, found
}

// StartNode resolves the configured start asset, falling back to the first
// surviving node in insertion order.
func (d *Detector) StartNode(g *graph.Graph) (graph.NodeID, bool) {
	if d.config.StartAsset != "" {
		if id, ok := g.Lookup(d.config.StartAsset); ok {
			return id, true
		}
	}
	return g.First()
}

// FindNegativeCycle runs Bellman-Ford from start. Nodes not reachable from
// start keep an infinite distance and their edges are never relaxed.
//
// After |V|-1 passes one more pass relaxes every edge; the last node whose
// distance drops by more than tolerance is walked back |V| predecessor steps,
// which lands it on the cycle. The cycle is then collected until a node
// repeats and returned in forward edge order.
func FindNegativeCycle(g graph.View, start graph.NodeID, tolerance float64) (domain.Cycle, bool) {
	nodes := g.Nodes()
	n := len(nodes)
	if n < 2 {
		return domain.Cycle{}, false
	}

	dist := make(map[graph.NodeID]float64, n)
	for _, node := range nodes {
		dist[node.ID] = math.Inf(1)
	}
	if _, ok := dist[start]; !ok {
		return domain.Cycle{}, false
	}
	dist[start] = 0

	pred := make(map[graph.NodeID]graph.NodeID, n)
	edges := g.Edges()

	for pass := 0; pass < n-1; pass++ {
		changed := false
		for _, e := range edges {
			du := dist[e.From]
			if math.IsInf(du, 1) {
				continue
			}
			if nd := du + e.Weight; nd < dist[e.To] {
				dist[e.To] = nd
				pred[e.To] = e.From
				changed = true
			}
		}
		if !changed {
			// Converged: the extra pass could not improve anything either.
			return domain.Cycle{}, false
		}
	}

	var (
		last    graph.NodeID
		tainted bool
	)
	for _, e := range edges {
		du := dist[e.From]
		if math.IsInf(du, 1) {
			continue
		}
		if nd := du + e.Weight; dist[e.To]-nd > tolerance {
			dist[e.To] = nd
			pred[e.To] = e.From
			last = e.To
			tainted = true
		}
	}
	if !tainted {
		return domain.Cycle{}, false
	}

	v := last
	for i := 0; i < n; i++ {
		p, ok := pred[v]
		if !ok {
			return domain.Cycle{}, false
		}
		v = p
	}

	var path []graph.NodeID
	seen := make(map[graph.NodeID]bool, n)
	for cur := v; !seen[cur]; {
		seen[cur] = true
		path = append(path, cur)
		p, ok := pred[cur]
		if !ok {
			return domain.Cycle{}, false
		}
		cur = p
	}
	slices.Reverse(path)

	return domain.NewCycle(g, path), true
}
