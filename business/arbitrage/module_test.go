package arbitrage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fd1az/arbgraph/business/arbitrage"
	arbitrageDI "github.com/fd1az/arbgraph/business/arbitrage/di"
	"github.com/fd1az/arbgraph/business/arbitrage/domain"
	"github.com/fd1az/arbgraph/business/market"
	"github.com/fd1az/arbgraph/internal/config"
	"github.com/fd1az/arbgraph/internal/logger"
	"github.com/fd1az/arbgraph/internal/monolith"
)

const (
	mappingJSON = `{
  "ETHBTC":  {"base": "ETH", "other": "BTC"},
  "BTCUSDT": {"base": "BTC", "other": "USDT"},
  "ETHUSDT": {"base": "ETH", "other": "USDT"},
  "DOGEX":   {"base": "DOGE"}
}`
	// ETH buys 2000 USDT through BTC but 2100 directly.
	quotesJSON = `[
  {"symbol": "ETHBTC",  "price": "0.05"},
  {"symbol": "BTCUSDT", "price": "40000"},
  {"symbol": "ETHUSDT", "price": "2100"},
  {"symbol": "XRPUSDT", "price": "0.5"}
]`
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestModules_FileRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "mapping.json"), mappingJSON)
	writeFile(t, filepath.Join(dir, "quotes.json"), quotesJSON)

	cfg := &config.Config{
		App: config.AppConfig{Name: "arbgraph-test"},
		Input: config.InputConfig{
			Source:      config.SourceFile,
			MappingPath: filepath.Join(dir, "mapping.json"),
			QuotesPath:  filepath.Join(dir, "quotes.json"),
		},
		Graph:     config.GraphConfig{SampleRatio: 1},
		Arbitrage: config.ArbitrageConfig{StartMode: "fixed", RemovalPolicy: "third"},
		Export: config.ExportConfig{
			MetricsPath: filepath.Join(dir, "metrics.csv"),
			DOTDir:      filepath.Join(dir, "dot_files"),
		},
	}

	mono := monolith.New(cfg, logger.Nop())
	defer mono.Close()

	modules := []monolith.Module{&market.Module{}, &arbitrage.Module{}}
	if err := mono.RegisterModules(modules...); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := mono.StartModules(ctx, modules...); err != nil {
		t.Fatal(err)
	}

	if n := arbitrageDI.GetExporter(mono.Services()).Len(); n != 2 {
		t.Errorf("exporters = %d, want csv and dot only", n)
	}

	res, err := arbitrageDI.GetRunner(mono.Services()).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Iterations != 1 || res.Stopped != domain.StopNoCycle {
		t.Fatalf("result = %+v", res)
	}
	if res.Build.Nodes != 3 || res.FinalNodes != 2 {
		t.Errorf("nodes built %d, final %d", res.Build.Nodes, res.FinalNodes)
	}
	if p := res.Rows[0].Profit; p < 1.049 || p > 1.051 {
		t.Errorf("profit = %v, want ~1.05", p)
	}

	csv, err := os.ReadFile(cfg.Export.MetricsPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(csv)), "\n")
	if len(lines) != 2 || lines[0] != "iteration,profit,cycle_length,centrality" {
		t.Errorf("metrics.csv:\n%s", csv)
	}

	for _, name := range []string{"graph_updated_0.dot", "graph_updated_1.dot"} {
		if _, err := os.Stat(filepath.Join(cfg.Export.DOTDir, name)); err != nil {
			t.Errorf("missing snapshot %s: %v", name, err)
		}
	}
}
