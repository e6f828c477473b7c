package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fd1az/arbgraph/business/arbitrage/domain"
	graph "github.com/fd1az/arbgraph/business/graph/domain"
	"github.com/fd1az/arbgraph/internal/asset"
)

type execCall struct {
	sql  string
	args []any
}

type fakeExecer struct {
	calls []execCall
	err   error
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	if f.err != nil {
		return pgconn.CommandTag{}, f.err
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (f *fakeExecer) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(strings.TrimSpace(c.sql), prefix) {
			n++
		}
	}
	return n
}

func TestMetricsStore_RunLifecycle(t *testing.T) {
	db := &fakeExecer{}
	s := NewMetricsStore(db)
	ctx := domain.WithRunID(context.Background(), "6f1c3c4e-2a55-4b36-9d0e-0d1c6b0a8f11")

	g := graph.NewGraph()
	if err := g.AddQuote("ETH", "BTC", 0.05); err != nil {
		t.Fatal(err)
	}

	if err := s.Snapshot(ctx, 0, g); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	cycle := domain.Cycle{Assets: []asset.Symbol{"ETH", "BTC", "USDT"}}
	rows := []domain.MetricsRow{
		{Iteration: 0, Profit: 1.02, CycleLength: 3, AvgOutDegree: 1},
		{Iteration: 1, Profit: 1.10, CycleLength: 3, AvgOutDegree: 1},
	}
	for _, r := range rows {
		if err := s.Record(ctx, r, cycle); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := s.Finish(ctx, rows); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if got := db.count("INSERT INTO arbitrage_runs"); got != 1 {
		t.Errorf("run inserted %d times, want 1", got)
	}
	if got := db.count("INSERT INTO cycle_metrics"); got != 2 {
		t.Errorf("cycle rows = %d, want 2", got)
	}

	last := db.calls[len(db.calls)-1]
	if best, ok := last.args[2].(*float64); !ok || best == nil || *best != 1.10 {
		t.Errorf("best_profit arg = %v", last.args[2])
	}

	var path []string
	for _, c := range db.calls {
		if strings.Contains(c.sql, "cycle_metrics") {
			path = c.args[5].([]string)
		}
	}
	if strings.Join(path, ",") != "ETH,BTC,USDT" {
		t.Errorf("cycle_path = %v", path)
	}
}

func TestMetricsStore_RequiresRunID(t *testing.T) {
	s := NewMetricsStore(&fakeExecer{})
	if err := s.Finish(context.Background(), nil); err == nil {
		t.Fatal("expected error without run id")
	}
}

func TestMetricsStore_WrapsDBErrors(t *testing.T) {
	boom := errors.New("connection reset")
	s := NewMetricsStore(&fakeExecer{err: boom})
	ctx := domain.WithRunID(context.Background(), "run")

	err := s.Record(ctx, domain.MetricsRow{}, domain.Cycle{})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}

func TestMigrationNames(t *testing.T) {
	names, err := migrationNames()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) == 0 || names[0] != "001_cycle_metrics.sql" {
		t.Errorf("migrations = %v", names)
	}
}
