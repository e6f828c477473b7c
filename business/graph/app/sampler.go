package app

import (
	"math"
	"math/rand/v2"

	"github.com/fd1az/arbgraph/business/graph/domain"
	"github.com/fd1az/arbgraph/internal/apperror"
)

// Sampler draws induced subgraphs: each node survives with probability ratio,
// and every edge whose endpoints both survive is copied.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler creates a Sampler. The same seed always yields the same sample
// for the same input graph.
func NewSampler(seed uint64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Sample returns a new graph; the input is not modified.
func (s *Sampler) Sample(g *domain.Graph, ratio float64) (*domain.Graph, error) {
	if math.IsNaN(ratio) {
		return nil, apperror.Validation(apperror.CodeInvalidSampleRatio, "ratio is NaN")
	}
	if ratio >= 1 {
		return g.Clone(), nil
	}
	if ratio <= 0 {
		return domain.NewGraph(), nil
	}

	sub := domain.NewGraph()
	kept := make(map[domain.NodeID]domain.NodeID, g.NodeCount())

	// One draw per node in insertion order keeps the sample reproducible.
	for _, n := range g.Nodes() {
		if s.rng.Float64() < ratio {
			kept[n.ID] = sub.AddNode(n.Asset)
		}
	}

	for _, e := range g.Edges() {
		from, okFrom := kept[e.From]
		to, okTo := kept[e.To]
		if okFrom && okTo {
			// Both endpoints were just added, AddEdge cannot fail here.
			_ = sub.AddEdge(from, to, e.Weight)
		}
	}

	return sub, nil
}
