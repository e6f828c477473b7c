// Package config provides configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fd1az/arbgraph/business/arbitrage/domain"
	"github.com/fd1az/arbgraph/internal/apperror"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Input     InputConfig     `mapstructure:"input"`
	Binance   BinanceConfig   `mapstructure:"binance"`
	Graph     GraphConfig     `mapstructure:"graph"`
	Arbitrage ArbitrageConfig `mapstructure:"arbitrage"`
	Export    ExportConfig    `mapstructure:"export"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	TUIMode     bool   `mapstructure:"-"` // Set at runtime from the -tui flag
}

// Input sources.
const (
	SourceFile    = "file"
	SourceBinance = "binance"
)

// InputConfig selects where quotes and the symbol mapping come from.
type InputConfig struct {
	Source      string `mapstructure:"source"`
	MappingPath string `mapstructure:"mapping_path"`
	QuotesPath  string `mapstructure:"quotes_path"`
}

// BinanceConfig holds Binance REST API configuration.
type BinanceConfig struct {
	BaseURL           string        `mapstructure:"base_url"` // https://api.binance.com or https://api.binance.us for US
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Timeout           time.Duration `mapstructure:"timeout"`
	QuoteAssets       []string      `mapstructure:"quote_assets"`
	MappingTTL        time.Duration `mapstructure:"mapping_ttl"`
}

// GraphConfig controls subgraph sampling.
type GraphConfig struct {
	SampleRatio float64 `mapstructure:"sample_ratio"`
	SampleSeed  uint64  `mapstructure:"sample_seed"`
}

// ArbitrageConfig holds cycle detection and breaking settings.
type ArbitrageConfig struct {
	StartAsset    string  `mapstructure:"start_asset"`
	StartMode     string  `mapstructure:"start_mode"`
	RemovalPolicy string  `mapstructure:"removal_policy"`
	MaxIterations int     `mapstructure:"max_iterations"`
	Tolerance     float64 `mapstructure:"tolerance"`
}

// ExportConfig selects where iteration results go.
type ExportConfig struct {
	MetricsPath string         `mapstructure:"metrics_path"`
	DOTDir      string         `mapstructure:"dot_dir"`
	Console     bool           `mapstructure:"console"`
	Postgres    PostgresConfig `mapstructure:"postgres"`
	Redis       RedisConfig    `mapstructure:"redis"`
	S3          S3Config       `mapstructure:"s3"`
}

// PostgresConfig holds the metrics store connection.
type PostgresConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	DSN      string `mapstructure:"dsn"`
	MaxConns int    `mapstructure:"max_conns"`
}

// RedisConfig holds the iteration publisher connection.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// S3Config holds the snapshot archive bucket.
type S3Config struct {
	Enabled      bool   `mapstructure:"enabled"`
	Region       string `mapstructure:"region"`
	Bucket       string `mapstructure:"bucket"`
	Prefix       string `mapstructure:"prefix"`
	Endpoint     string `mapstructure:"endpoint"` // MinIO, R2 and other S3-compatible stores
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	Provider       string `mapstructure:"provider"` // zipkin, otlp, otlp-http, honeycomb, newrelic, console, none
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("ARB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, apperror.External(apperror.CodeConfigLoadFailed, v.ConfigFileUsed(), err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperror.External(apperror.CodeConfigLoadFailed, "unmarshal", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	_ = v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	_ = v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	_ = v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")

	// Input
	_ = v.BindEnv("input.source", "ARB_INPUT_SOURCE")
	_ = v.BindEnv("input.mapping_path", "ARB_MAPPING_PATH")
	_ = v.BindEnv("input.quotes_path", "ARB_QUOTES_PATH")

	// Binance
	_ = v.BindEnv("binance.base_url", "ARB_BINANCE_BASE_URL", "BINANCE_BASE_URL")
	_ = v.BindEnv("binance.quote_assets", "ARB_BINANCE_QUOTE_ASSETS")

	// Arbitrage
	_ = v.BindEnv("arbitrage.start_asset", "ARB_START_ASSET")
	_ = v.BindEnv("arbitrage.removal_policy", "ARB_REMOVAL_POLICY")
	_ = v.BindEnv("arbitrage.max_iterations", "ARB_MAX_ITERATIONS")

	// Export
	_ = v.BindEnv("export.postgres.dsn", "ARB_POSTGRES_DSN", "DATABASE_URL")
	_ = v.BindEnv("export.redis.addr", "ARB_REDIS_ADDR", "REDIS_ADDR")
	_ = v.BindEnv("export.redis.password", "ARB_REDIS_PASSWORD", "REDIS_PASSWORD")
	_ = v.BindEnv("export.s3.access_key", "ARB_S3_ACCESS_KEY", "AWS_ACCESS_KEY_ID")
	_ = v.BindEnv("export.s3.secret_key", "ARB_S3_SECRET_KEY", "AWS_SECRET_ACCESS_KEY")
	_ = v.BindEnv("export.s3.region", "ARB_S3_REGION", "AWS_REGION")

	// Telemetry
	_ = v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	_ = v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	_ = v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	_ = v.BindEnv("telemetry.otlp_headers", "ARB_OTEL_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "arbgraph")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Input defaults
	v.SetDefault("input.source", SourceFile)
	v.SetDefault("input.mapping_path", "data/symbols_mapping.json")
	v.SetDefault("input.quotes_path", "data/quotes.json")

	// Binance defaults
	v.SetDefault("binance.base_url", "https://api.binance.com")
	v.SetDefault("binance.requests_per_minute", 1200)
	v.SetDefault("binance.timeout", "10s")
	v.SetDefault("binance.mapping_ttl", "1h")

	// Graph defaults
	v.SetDefault("graph.sample_ratio", 1.0)
	v.SetDefault("graph.sample_seed", 1)

	// Arbitrage defaults
	v.SetDefault("arbitrage.start_asset", "")
	v.SetDefault("arbitrage.start_mode", "fixed")
	v.SetDefault("arbitrage.removal_policy", "third")
	v.SetDefault("arbitrage.max_iterations", 0) // unbounded
	v.SetDefault("arbitrage.tolerance", 0.0)

	// Export defaults
	v.SetDefault("export.metrics_path", "metrics.csv")
	v.SetDefault("export.dot_dir", "dot_files")
	v.SetDefault("export.console", true)
	v.SetDefault("export.postgres.max_conns", 4)
	v.SetDefault("export.redis.addr", "localhost:6379")
	v.SetDefault("export.redis.channel", "arbgraph:iterations")
	v.SetDefault("export.s3.region", "us-east-1")
	v.SetDefault("export.s3.prefix", "arbgraph")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "arbgraph")
	v.SetDefault("telemetry.provider", "zipkin")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration. Start mode and removal policy are
// normalised to their canonical spelling.
func (c *Config) Validate() error {
	switch c.Input.Source {
	case SourceFile:
		if c.Input.MappingPath == "" || c.Input.QuotesPath == "" {
			return invalid("input.mapping_path and input.quotes_path are required for the file source")
		}
	case SourceBinance:
		if c.Binance.BaseURL == "" {
			return invalid("binance.base_url is required for the binance source")
		}
	default:
		return invalid("unknown input.source: %q", c.Input.Source)
	}

	if math.IsNaN(c.Graph.SampleRatio) || c.Graph.SampleRatio < 0 || c.Graph.SampleRatio > 1 {
		return apperror.Validation(apperror.CodeInvalidSampleRatio,
			fmt.Sprintf("graph.sample_ratio must be in [0,1], got %v", c.Graph.SampleRatio))
	}

	mode, err := domain.ParseStartMode(c.Arbitrage.StartMode)
	if err != nil {
		return apperror.New(apperror.CodeInvalidConfig, apperror.WithContext("arbitrage.start_mode"), apperror.WithCause(err))
	}
	c.Arbitrage.StartMode = string(mode)

	policy, err := domain.ParseRemovalPolicy(c.Arbitrage.RemovalPolicy)
	if err != nil {
		return apperror.New(apperror.CodeInvalidConfig, apperror.WithContext("arbitrage.removal_policy"), apperror.WithCause(err))
	}
	c.Arbitrage.RemovalPolicy = string(policy)

	if c.Arbitrage.MaxIterations < 0 {
		return invalid("arbitrage.max_iterations cannot be negative")
	}
	if c.Arbitrage.Tolerance < 0 || math.IsNaN(c.Arbitrage.Tolerance) {
		return invalid("arbitrage.tolerance must be a non-negative number")
	}

	if c.Export.Postgres.Enabled && c.Export.Postgres.DSN == "" {
		return invalid("export.postgres.dsn is required when postgres export is enabled")
	}
	if c.Export.Redis.Enabled && (c.Export.Redis.Addr == "" || c.Export.Redis.Channel == "") {
		return invalid("export.redis.addr and export.redis.channel are required when redis export is enabled")
	}
	if c.Export.S3.Enabled && (c.Export.S3.Bucket == "" || c.Export.S3.Region == "") {
		return invalid("export.s3.bucket and export.s3.region are required when s3 export is enabled")
	}

	if c.Telemetry.Enabled {
		switch c.Telemetry.Provider {
		case "zipkin", "otlp", "otlp-http", "honeycomb", "newrelic", "console", "none":
		default:
			return invalid("unknown telemetry.provider: %q", c.Telemetry.Provider)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return apperror.Validation(apperror.CodeInvalidConfig, fmt.Sprintf(format, args...))
}
