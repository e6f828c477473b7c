package infra

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fd1az/arbgraph/business/arbitrage/domain"
	"github.com/fd1az/arbgraph/internal/apperror"
)

// WriteCSV writes the metrics header followed by one line per row.
func WriteCSV(w io.Writer, rows []domain.MetricsRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.CSVHeader); err != nil {
		return fmt.Errorf("write metrics header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return fmt.Errorf("write metrics row %d: %w", row.Iteration, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVExporter writes the metrics table once the run finishes.
type CSVExporter struct {
	NopExporter
	path string
}

// NewCSVExporter creates an exporter writing to path.
func NewCSVExporter(path string) *CSVExporter {
	return &CSVExporter{path: path}
}

// Finish writes the table, replacing any existing file.
func (e *CSVExporter) Finish(_ context.Context, rows []domain.MetricsRow) error {
	if dir := filepath.Dir(e.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperror.External(apperror.CodeMetricsWriteFail, dir, err)
		}
	}

	f, err := os.Create(e.path)
	if err != nil {
		return apperror.External(apperror.CodeMetricsWriteFail, e.path, err)
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return apperror.External(apperror.CodeMetricsWriteFail, e.path, err)
	}
	return f.Close()
}
