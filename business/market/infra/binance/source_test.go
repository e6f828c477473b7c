package binance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fd1az/arbgraph/internal/apperror"
	"github.com/fd1az/arbgraph/internal/logger"
)

const exchangeInfoBody = `{
  "timezone": "UTC",
  "symbols": [
    {"symbol": "ETHBTC", "status": "TRADING", "baseAsset": "ETH", "quoteAsset": "BTC"},
    {"symbol": "BTCUSDT", "status": "TRADING", "baseAsset": "BTC", "quoteAsset": "USDT"},
    {"symbol": "ETHUSDT", "status": "TRADING", "baseAsset": "ETH", "quoteAsset": "USDT"},
    {"symbol": "OLDBTC", "status": "BREAK", "baseAsset": "OLD", "quoteAsset": "BTC"}
  ]
}`

const tickerBody = `[
  {"symbol": "ETHBTC", "price": "0.05000000"},
  {"symbol": "BTCUSDT", "price": "70000.00"},
  {"symbol": "ETHUSDT", "price": "3000.00"},
  {"symbol": "OLDBTC", "price": "0.1"},
  {"symbol": "NEWCOIN", "price": "1"}
]`

type fakeBinance struct {
	infoCalls   atomic.Int32
	tickerCalls atomic.Int32
	tickerFail  atomic.Bool
}

func (f *fakeBinance) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case exchangeInfoEndpoint:
			f.infoCalls.Add(1)
			fmt.Fprint(w, exchangeInfoBody)
		case tickerPriceEndpoint:
			f.tickerCalls.Add(1)
			if f.tickerFail.Load() {
				w.WriteHeader(http.StatusTeapot)
				fmt.Fprint(w, `{"code":-1003,"msg":"Too many requests"}`)
				return
			}
			fmt.Fprint(w, tickerBody)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestSource(t *testing.T, url string, mutate func(*SourceConfig)) *Source {
	t.Helper()
	cfg := DefaultSourceConfig()
	cfg.BaseURL = url
	cfg.RequestsPerMinute = 0
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewSource(cfg, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSource_Load(t *testing.T) {
	fake := &fakeBinance{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	snap, err := newTestSource(t, server.URL, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if snap.Source != "binance" {
		t.Errorf("Source = %q", snap.Source)
	}
	if snap.Mapping.Count() != 3 {
		t.Errorf("mapping has %d symbols, want 3 trading symbols", snap.Mapping.Count())
	}
	if len(snap.Quotes) != 3 {
		t.Errorf("got %d quotes, want 3 mapped quotes", len(snap.Quotes))
	}
	pair, ok := snap.Mapping.Lookup("ETHBTC")
	if !ok || pair.Base != "ETH" || pair.Other != "BTC" {
		t.Errorf("ETHBTC = %+v", pair)
	}
	if snap.Quotes[0].Price != "0.05000000" {
		t.Errorf("price kept verbatim, got %q", snap.Quotes[0].Price)
	}
}

func TestSource_QuoteAssetFilter(t *testing.T) {
	fake := &fakeBinance{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	src := newTestSource(t, server.URL, func(c *SourceConfig) { c.QuoteAssets = []string{"usdt"} })
	snap, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Mapping.Count() != 2 || len(snap.Quotes) != 2 {
		t.Errorf("mapping %d, quotes %d; want 2 and 2", snap.Mapping.Count(), len(snap.Quotes))
	}
}

func TestSource_CachesExchangeInfo(t *testing.T) {
	fake := &fakeBinance{}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	src := newTestSource(t, server.URL, func(c *SourceConfig) { c.MappingTTL = time.Hour })
	for i := 0; i < 3; i++ {
		if _, err := src.Load(context.Background()); err != nil {
			t.Fatalf("Load %d: %v", i, err)
		}
	}
	if got := fake.infoCalls.Load(); got != 1 {
		t.Errorf("exchangeInfo called %d times, want 1", got)
	}
	if got := fake.tickerCalls.Load(); got != 3 {
		t.Errorf("ticker called %d times, want 3", got)
	}
}

func TestSource_APIError(t *testing.T) {
	fake := &fakeBinance{}
	fake.tickerFail.Store(true)
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	_, err := newTestSource(t, server.URL, nil).Load(context.Background())
	if apperror.GetCode(err) != apperror.CodeBinanceAPIError {
		t.Fatalf("code = %s (err %v)", apperror.GetCode(err), err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != -1003 {
		t.Errorf("expected Binance API error -1003, got %v", err)
	}
}

func TestSource_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	fake := &fakeBinance{}
	fake.tickerFail.Store(true)
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	src := newTestSource(t, server.URL, nil)
	var err error
	for i := 0; i < 6; i++ {
		_, err = src.Load(context.Background())
	}
	if apperror.GetCode(err) != apperror.CodeCircuitOpen {
		t.Errorf("code = %s, want %s", apperror.GetCode(err), apperror.CodeCircuitOpen)
	}
	if got := fake.tickerCalls.Load(); got != 5 {
		t.Errorf("ticker called %d times, want 5 before the breaker opened", got)
	}
}
