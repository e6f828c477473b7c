package app

import (
	"context"

	"github.com/fd1az/arbgraph/business/arbitrage/domain"
	graph "github.com/fd1az/arbgraph/business/graph/domain"
	marketDomain "github.com/fd1az/arbgraph/business/market/domain"
)

// Exporter receives the breaking loop's output as it happens.
//
// Snapshot is called once before the first detection with iteration 0 and
// again after every processed cycle with the new iteration count. Record is
// called once per cycle, before the graph is modified. Finish receives every
// row accumulated by the run. Implementations must not retain g.
type Exporter interface {
	Snapshot(ctx context.Context, iteration int, g graph.View) error
	Record(ctx context.Context, row domain.MetricsRow, cycle domain.Cycle) error
	Finish(ctx context.Context, rows []domain.MetricsRow) error
}

// SnapshotLoader provides the market data a run starts from.
type SnapshotLoader interface {
	Load(ctx context.Context) (*marketDomain.Snapshot, error)
}
