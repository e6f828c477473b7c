package app

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/fd1az/arbgraph/business/graph/domain"
	"github.com/fd1az/arbgraph/internal/asset"
)

func ringGraph(n int) *domain.Graph {
	g := domain.NewGraph()
	for i := 0; i < n; i++ {
		a := asset.Symbol(fmt.Sprintf("N%02d", i))
		b := asset.Symbol(fmt.Sprintf("N%02d", (i+1)%n))
		_ = g.AddQuote(a, b, 1.5)
	}
	return g
}

func assetsOf(g *domain.Graph) []asset.Symbol {
	var out []asset.Symbol
	for _, n := range g.Nodes() {
		out = append(out, n.Asset)
	}
	return out
}

func TestSampler_FullRatioCopies(t *testing.T) {
	g := ringGraph(6)
	sub, err := NewSampler(1).Sample(g, 1)
	if err != nil {
		t.Fatal(err)
	}
	if sub == g {
		t.Fatal("sample must be a new graph")
	}
	if sub.NodeCount() != g.NodeCount() || sub.EdgeCount() != g.EdgeCount() {
		t.Errorf("sample = %d/%d, want %d/%d", sub.NodeCount(), sub.EdgeCount(), g.NodeCount(), g.EdgeCount())
	}
}

func TestSampler_ZeroRatioIsEmpty(t *testing.T) {
	sub, err := NewSampler(1).Sample(ringGraph(6), 0)
	if err != nil {
		t.Fatal(err)
	}
	if sub.NodeCount() != 0 || sub.EdgeCount() != 0 {
		t.Errorf("sample = %d nodes, %d edges", sub.NodeCount(), sub.EdgeCount())
	}
}

func TestSampler_ClampsRatio(t *testing.T) {
	g := ringGraph(5)

	over, err := NewSampler(1).Sample(g, 1.5)
	if err != nil {
		t.Fatal(err)
	}
	if over.NodeCount() != g.NodeCount() {
		t.Errorf("ratio 1.5 kept %d nodes, want %d", over.NodeCount(), g.NodeCount())
	}

	under, err := NewSampler(1).Sample(g, -0.3)
	if err != nil {
		t.Fatal(err)
	}
	if under.NodeCount() != 0 {
		t.Errorf("ratio -0.3 kept %d nodes, want 0", under.NodeCount())
	}

	if _, err := NewSampler(1).Sample(g, math.NaN()); err == nil {
		t.Error("NaN ratio: expected error")
	}
}

func TestSampler_SameSeedSameSample(t *testing.T) {
	g := ringGraph(40)

	a, _ := NewSampler(42).Sample(g, 0.5)
	b, _ := NewSampler(42).Sample(g, 0.5)

	if !reflect.DeepEqual(assetsOf(a), assetsOf(b)) {
		t.Errorf("samples differ:\n%v\n%v", assetsOf(a), assetsOf(b))
	}
	if a.EdgeCount() != b.EdgeCount() {
		t.Errorf("edge counts differ: %d vs %d", a.EdgeCount(), b.EdgeCount())
	}
}

func TestSampler_InducedEdgesOnly(t *testing.T) {
	g := ringGraph(40)
	sub, _ := NewSampler(7).Sample(g, 0.5)

	for _, e := range sub.Edges() {
		from, _ := sub.Asset(e.From)
		to, _ := sub.Asset(e.To)

		gf, _ := g.Lookup(from)
		gt, _ := g.Lookup(to)
		orig, ok := g.FindEdge(gf, gt)
		if !ok {
			t.Fatalf("edge %s->%s not in source graph", from, to)
		}
		if orig.Weight != e.Weight {
			t.Errorf("edge %s->%s weight %v, want %v", from, to, e.Weight, orig.Weight)
		}
	}
	if sub.NodeCount() == 0 || sub.NodeCount() == g.NodeCount() {
		t.Logf("sample kept %d of %d nodes", sub.NodeCount(), g.NodeCount())
	}
}
