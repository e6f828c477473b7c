package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fd1az/arbgraph/business/arbitrage/domain"
	graph "github.com/fd1az/arbgraph/business/graph/domain"
)

// Execer is the subset of pgxpool.Pool the store needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// MetricsStore persists runs, cycle rows and snapshot sizes keyed by run id.
// Rows from a context without a run id are rejected.
type MetricsStore struct {
	db Execer

	mu      sync.Mutex
	started map[string]bool
}

// NewMetricsStore creates a store over db.
func NewMetricsStore(db Execer) *MetricsStore {
	return &MetricsStore{db: db, started: make(map[string]bool)}
}

// Snapshot records the graph size after an iteration.
func (s *MetricsStore) Snapshot(ctx context.Context, iteration int, g graph.View) error {
	runID, err := s.ensureRun(ctx)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO graph_snapshots (run_id, iteration, nodes, edges)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id, iteration) DO UPDATE SET
			nodes = EXCLUDED.nodes,
			edges = EXCLUDED.edges`

	if _, err := s.db.Exec(ctx, query, runID, iteration, g.NodeCount(), g.EdgeCount()); err != nil {
		return fmt.Errorf("postgres: insert snapshot %s/%d: %w", runID, iteration, err)
	}
	return nil
}

// Record inserts one cycle row.
func (s *MetricsStore) Record(ctx context.Context, row domain.MetricsRow, cycle domain.Cycle) error {
	runID, err := s.ensureRun(ctx)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO cycle_metrics (
			run_id, iteration, profit, cycle_length, avg_out_degree, cycle_path
		) VALUES ($1, $2, $3, $4, $5, $6)`

	path := make([]string, len(cycle.Assets))
	for i, a := range cycle.Assets {
		path[i] = a.String()
	}

	if _, err := s.db.Exec(ctx, query,
		runID, row.Iteration, row.Profit, row.CycleLength, row.AvgOutDegree, path,
	); err != nil {
		return fmt.Errorf("postgres: insert cycle %s/%d: %w", runID, row.Iteration, err)
	}
	return nil
}

// Finish closes the run with its iteration count and best profit.
func (s *MetricsStore) Finish(ctx context.Context, rows []domain.MetricsRow) error {
	runID, err := s.ensureRun(ctx)
	if err != nil {
		return err
	}

	var best *float64
	for i := range rows {
		if best == nil || rows[i].Profit > *best {
			best = &rows[i].Profit
		}
	}

	const query = `
		UPDATE arbitrage_runs SET
			finished_at = NOW(),
			iterations  = $2,
			best_profit = $3
		WHERE run_id = $1`

	tag, err := s.db.Exec(ctx, query, runID, len(rows), best)
	if err != nil {
		return fmt.Errorf("postgres: finish run %s: %w", runID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: finish run %s: run not found", runID)
	}
	return nil
}

func (s *MetricsStore) ensureRun(ctx context.Context) (string, error) {
	runID := domain.RunIDFromContext(ctx)
	if runID == "" {
		return "", fmt.Errorf("postgres: missing run id in context")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started[runID] {
		return runID, nil
	}

	const query = `INSERT INTO arbitrage_runs (run_id) VALUES ($1) ON CONFLICT (run_id) DO NOTHING`
	if _, err := s.db.Exec(ctx, query, runID); err != nil {
		return "", fmt.Errorf("postgres: insert run %s: %w", runID, err)
	}
	s.started[runID] = true
	return runID, nil
}
