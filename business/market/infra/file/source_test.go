package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fd1az/arbgraph/internal/apperror"
	"github.com/fd1az/arbgraph/internal/logger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestSource_Load(t *testing.T) {
	dir := t.TempDir()
	mappingPath := writeFile(t, dir, "dict.json", `{
		"ETHBTC": {"base": "ETH", "other": "BTC"},
		"BTCUSDT": {"base": "BTC", "other": "USDT"},
		"BROKEN": {"base": "X"},
		"WEIRD": 42
	}`)
	quotesPath := writeFile(t, dir, "prices.json", `[
		{"symbol": "ETHBTC", "price": "0.05"},
		{"symbol": "BTCUSDT", "price": 70000},
		{"symbol": 7, "price": "1"},
		{"symbol": "ETHBTC"}
	]`)

	src := NewSource(SourceConfig{MappingPath: mappingPath, QuotesPath: quotesPath}, logger.Nop())
	snap, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if snap.Source != "file" {
		t.Errorf("Source = %q", snap.Source)
	}
	if snap.Mapping.Count() != 2 {
		t.Errorf("mapping has %d symbols, want 2", snap.Mapping.Count())
	}
	pair, ok := snap.Mapping.Lookup("ETHBTC")
	if !ok || pair.Base != "ETH" || pair.Other != "BTC" {
		t.Errorf("ETHBTC = %+v, %v", pair, ok)
	}

	if len(snap.Quotes) != 4 {
		t.Fatalf("got %d quotes, want 4", len(snap.Quotes))
	}
	want := [][2]string{{"ETHBTC", "0.05"}, {"BTCUSDT", ""}, {"", "1"}, {"ETHBTC", ""}}
	for i, w := range want {
		if snap.Quotes[i].Symbol != w[0] || snap.Quotes[i].Price != w[1] {
			t.Errorf("quote %d = %+v, want %v", i, snap.Quotes[i], w)
		}
	}
}

func TestSource_Errors(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "ok.json", `{}`)
	goodQuotes := writeFile(t, dir, "ok_prices.json", `[]`)
	badJSON := writeFile(t, dir, "bad.json", `{nope`)

	tests := []struct {
		name     string
		mapping  string
		quotes   string
		wantCode apperror.Code
	}{
		{"missing_mapping", filepath.Join(dir, "absent.json"), goodQuotes, apperror.CodeMappingLoadFailed},
		{"bad_mapping", badJSON, goodQuotes, apperror.CodeMappingLoadFailed},
		{"missing_quotes", good, filepath.Join(dir, "absent.json"), apperror.CodeQuotesLoadFailed},
		{"quotes_not_array", good, good, apperror.CodeQuotesLoadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewSource(SourceConfig{MappingPath: tt.mapping, QuotesPath: tt.quotes}, logger.Nop())
			_, err := src.Load(context.Background())
			if apperror.GetCode(err) != tt.wantCode {
				t.Errorf("code = %s, want %s (err %v)", apperror.GetCode(err), tt.wantCode, err)
			}
		})
	}
}
