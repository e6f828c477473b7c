// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"

	"github.com/fd1az/arbgraph/business/arbitrage/domain"
	graph "github.com/fd1az/arbgraph/business/graph/domain"
)

// NopExporter ignores everything. Exporters embed it and override the calls
// they care about.
type NopExporter struct{}

func (NopExporter) Snapshot(context.Context, int, graph.View) error { return nil }
func (NopExporter) Record(context.Context, domain.MetricsRow, domain.Cycle) error { return nil }
func (NopExporter) Finish(context.Context, []domain.MetricsRow) error { return nil }
