package apm

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"

	"github.com/fd1az/arbgraph/internal/logger"
)

func TestNewTraceProvider_Console(t *testing.T) {
	var buf bytes.Buffer
	tp, err := NewTraceProvider(context.Background(), Config{
		ServiceName: "arbgraph-test",
		Provider:    ConsoleProvider,
		Writer:      &buf,
	}, logger.Nop())
	if err != nil {
		t.Fatalf("NewTraceProvider: %v", err)
	}

	ctx, span := otel.Tracer("test").Start(context.Background(), "arbitrage.break")
	if fields := TraceIDFromContext(ctx); len(fields) != 2 || fields[0] != "trace_id" {
		t.Errorf("TraceIDFromContext = %v", fields)
	}
	span.End()

	if err := tp.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !strings.Contains(buf.String(), "arbitrage.break") {
		t.Errorf("console output missing span name:\n%s", buf.String())
	}
}

func TestNewTraceProvider_EmptyAndUnknown(t *testing.T) {
	tp, err := NewTraceProvider(context.Background(), Config{Provider: EmptyProvider}, logger.Nop())
	if err != nil || tp.Stop() != nil {
		t.Fatalf("empty provider: %v", err)
	}

	if _, err := NewTraceProvider(context.Background(), Config{Provider: "jaeger"}, logger.Nop()); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		in      string
		want    map[string]string
		wantErr bool
	}{
		{"", map[string]string{}, false},
		{"x-honeycomb-team=abc", map[string]string{"x-honeycomb-team": "abc"}, false},
		{"a=1, b=2", map[string]string{"a": "1", "b": "2"}, false},
		{"novalue", nil, true},
		{"=x", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHeaders(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestTraceIDFromContext_NoSpan(t *testing.T) {
	if fields := TraceIDFromContext(context.Background()); fields != nil {
		t.Errorf("got %v, want nil", fields)
	}
}
