// Package app contains the graph builder and sampler.
package app

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arbgraph/business/graph/domain"
	marketDomain "github.com/fd1az/arbgraph/business/market/domain"
	"github.com/fd1az/arbgraph/internal/asset"
)

// PairResolver resolves a quote symbol to the asset pair it converts.
type PairResolver interface {
	Lookup(symbol string) (asset.Pair, bool)
}

// BuildStats summarises what happened to each input record.
type BuildStats struct {
	Records     int
	Unmapped    int
	Malformed   int
	NonPositive int
	Quotes      int // records that produced an edge pair
	Nodes       int
	Edges       int
}

// Skipped is the number of records that produced no edges.
func (s BuildStats) Skipped() int {
	return s.Unmapped + s.Malformed + s.NonPositive
}

// Builder turns quote records into a conversion graph.
type Builder struct{}

// NewBuilder creates a Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build creates a graph with a base->other edge of weight -log2(price) and an
// other->base edge of weight +log2(price) for every usable record.
//
// Unmapped symbols, unparsable prices and non-positive prices are skipped;
// none of them aborts the build.
func (b *Builder) Build(mapping PairResolver, quotes []marketDomain.Quote) (*domain.Graph, BuildStats) {
	g := domain.NewGraph()
	stats := BuildStats{Records: len(quotes)}

	for _, q := range quotes {
		pair, ok := mapping.Lookup(q.Symbol)
		if !ok {
			stats.Unmapped++
			continue
		}

		price, ok := parsePrice(q.Price)
		if !ok {
			stats.Malformed++
			continue
		}
		if !price.IsPositive() {
			stats.NonPositive++
			continue
		}

		if !inFloatRange(price) {
			stats.Malformed++
			continue
		}
		f := price.InexactFloat64()
		if f == 0 || math.IsInf(f, 0) {
			// Out of float64 range: the log transform would be meaningless.
			stats.Malformed++
			continue
		}

		if err := g.AddQuote(pair.Base, pair.Other, f); err != nil {
			stats.Malformed++
			continue
		}
		stats.Quotes++
	}

	stats.Nodes = g.NodeCount()
	stats.Edges = g.EdgeCount()
	return g, stats
}

// Decimal orders of magnitude a positive float64 can hold, with a little
// slack on both ends for the exact check after conversion.
const (
	minPriceMagnitude = -330
	maxPriceMagnitude = 310
)

// inFloatRange reports whether d is roughly within float64 range. Converting a
// decimal with a huge exponent expands 10^exp as a big integer, so this must
// run before InexactFloat64.
func inFloatRange(d decimal.Decimal) bool {
	mag := int64(d.Exponent()) + int64(d.NumDigits())
	return mag >= minPriceMagnitude && mag <= maxPriceMagnitude
}

func parsePrice(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
