package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
)

func TestNewMetricProvider_Prometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	mp, err := NewMetricProvider(context.Background(),
		WithServiceName("arbgraph-test"),
		WithRegisterer(reg),
		WithProviderConfig(ProviderCfg{Provider: PrometheusProvider}),
	)
	if err != nil {
		t.Fatalf("NewMetricProvider: %v", err)
	}
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	counter, err := otel.Meter("test").Int64Counter("arbitrage.cycles")
	if err != nil {
		t.Fatal(err)
	}
	counter.Add(context.Background(), 3)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "arbitrage_cycles_total") {
		t.Errorf("scrape missing counter:\n%s", body)
	}
}

func TestNewMetricProvider_NoProviders(t *testing.T) {
	mp, err := NewMetricProvider(context.Background(), WithServiceName("x"))
	if err != nil || mp != nil {
		t.Fatalf("got (%v, %v), want (nil, nil)", mp, err)
	}
}

func TestNewMetricProvider_UnknownProvider(t *testing.T) {
	_, err := NewMetricProvider(context.Background(), WithProviderConfig(ProviderCfg{Provider: "statsd"}))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestNewHoneycombConfig(t *testing.T) {
	cfg := NewHoneycombConfig("https://api.honeycomb.io", "key", "arbgraph")
	if cfg.Provider != OtelCollector || cfg.Headers["x-honeycomb-dataset"] != "arbgraph_metrics" {
		t.Errorf("cfg = %+v", cfg)
	}
}
