package infra

import (
	"context"
	"errors"

	"github.com/fd1az/arbgraph/business/arbitrage/app"
	"github.com/fd1az/arbgraph/business/arbitrage/domain"
	graph "github.com/fd1az/arbgraph/business/graph/domain"
)

// Fanout forwards every call to each exporter in order. A failing exporter
// does not stop the others; their errors are joined.
type Fanout struct {
	exporters []app.Exporter
}

// NewFanout creates a Fanout. Nil exporters are dropped.
func NewFanout(exporters ...app.Exporter) *Fanout {
	f := &Fanout{}
	for _, e := range exporters {
		if e != nil {
			f.exporters = append(f.exporters, e)
		}
	}
	return f
}

// Add appends an exporter.
func (f *Fanout) Add(e app.Exporter) {
	if e != nil {
		f.exporters = append(f.exporters, e)
	}
}

// Len returns the number of wrapped exporters.
func (f *Fanout) Len() int {
	return len(f.exporters)
}

func (f *Fanout) Snapshot(ctx context.Context, iteration int, g graph.View) error {
	var errs []error
	for _, e := range f.exporters {
		if err := e.Snapshot(ctx, iteration, g); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) Record(ctx context.Context, row domain.MetricsRow, cycle domain.Cycle) error {
	var errs []error
	for _, e := range f.exporters {
		if err := e.Record(ctx, row, cycle); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) Finish(ctx context.Context, rows []domain.MetricsRow) error {
	var errs []error
	for _, e := range f.exporters {
		if err := e.Finish(ctx, rows); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

