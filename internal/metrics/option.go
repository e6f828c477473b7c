package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Provider names a metric reader backend.
type Provider string

const (
	PrometheusProvider Provider = "prometheus"
	OtelCollector      Provider = "otlp"
)

// NewHoneycombConfig returns an OTLP reader config for Honeycomb, with the
// dataset derived from the service name.
func NewHoneycombConfig(endpoint, apiKey, serviceName string) ProviderCfg {
	return ProviderCfg{
		Provider: OtelCollector,
		Endpoint: endpoint,
		Headers: map[string]string{
			"x-honeycomb-team":    apiKey,
			"x-honeycomb-dataset": fmt.Sprintf("%s_metrics", serviceName),
		},
	}
}

// NewOtelCollectorConfig returns an OTLP gRPC reader config.
func NewOtelCollectorConfig(url string, headers map[string]string, insecure bool) ProviderCfg {
	return ProviderCfg{
		Provider: OtelCollector,
		Endpoint: url,
		Headers:  headers,
		Insecure: insecure,
	}
}

type Config struct {
	ServiceName string
	Provider    []ProviderCfg

	// Registerer receives the Prometheus collector. Defaults to the global
	// registry.
	Registerer prometheus.Registerer
}

type ProviderCfg struct {
	Provider Provider
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

type OptionFn func(config Config) Config

func WithProviderConfig(provider ProviderCfg) OptionFn {
	return func(config Config) Config {
		config.Provider = append(config.Provider, provider)
		return config
	}
}

func WithServiceName(serviceName string) OptionFn {
	return func(config Config) Config {
		config.ServiceName = serviceName
		return config
	}
}

func WithRegisterer(reg prometheus.Registerer) OptionFn {
	return func(config Config) Config {
		config.Registerer = reg
		return config
	}
}

type PromServerConfig struct {
	port     int
	gatherer prometheus.Gatherer
}

type PromOptionFn func(config PromServerConfig) PromServerConfig

func WithPort(port int) PromOptionFn {
	return func(config PromServerConfig) PromServerConfig {
		config.port = port
		return config
	}
}

// WithGatherer serves a specific registry instead of the global one.
func WithGatherer(g prometheus.Gatherer) PromOptionFn {
	return func(config PromServerConfig) PromServerConfig {
		config.gatherer = g
		return config
	}
}
