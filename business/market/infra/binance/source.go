// Package binance loads market snapshots from the Binance spot REST API.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbgraph/business/market/domain"
	"github.com/fd1az/arbgraph/internal/apperror"
	"github.com/fd1az/arbgraph/internal/asset"
	"github.com/fd1az/arbgraph/internal/cache"
	"github.com/fd1az/arbgraph/internal/circuitbreaker"
	"github.com/fd1az/arbgraph/internal/httpclient"
	"github.com/fd1az/arbgraph/internal/logger"
	"github.com/fd1az/arbgraph/internal/ratelimit"
)

const (
	tracerName = "github.com/fd1az/arbgraph/business/market/infra/binance"

	// BaseAPIURL is the public spot API.
	BaseAPIURL = "https://api.binance.com"

	exchangeInfoEndpoint = "/api/v3/exchangeInfo"
	tickerPriceEndpoint  = "/api/v3/ticker/price"

	// Request weights as charged by Binance.
	exchangeInfoWeight = 20
	tickerPriceWeight  = 4

	statusTrading = "TRADING"
	mappingKey    = "exchangeInfo"
)

// SourceConfig holds configuration for the Binance source.
type SourceConfig struct {
	BaseURL           string        // API base URL (empty = BaseAPIURL)
	Timeout           time.Duration // per request
	RequestsPerMinute int           // request weight budget per minute, 0 = unlimited
	QuoteAssets       []string      // keep only symbols quoted in these assets, empty = all
	MappingTTL        time.Duration // how long exchangeInfo is reused, 0 = always refetch
}

// DefaultSourceConfig returns sensible defaults.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		BaseURL:           BaseAPIURL,
		Timeout:           10 * time.Second,
		RequestsPerMinute: 1200,
		MappingTTL:        time.Hour,
	}
}

// Source fetches exchangeInfo for the symbol mapping and ticker/price for quotes.
type Source struct {
	config  SourceConfig
	logger  logger.LoggerInterface
	client  httpclient.Client
	limiter *ratelimit.Limiter
	tracer  trace.Tracer

	mappingCB *circuitbreaker.CircuitBreaker[*exchangeInfoResponse]
	quotesCB  *circuitbreaker.CircuitBreaker[[]tickerPrice]
	mappings  *cache.Cache[string, *asset.Mapping]
	quoteSet  map[string]bool
}

// NewSource creates a new Binance Source.
func NewSource(cfg SourceConfig, log logger.LoggerInterface) (*Source, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseAPIURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("binance"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithTracer(tracer, false),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	s := &Source{
		config:   cfg,
		logger:   log,
		client:   client,
		limiter:  ratelimit.New(cfg.RequestsPerMinute),
		tracer:   tracer,
		mappings: cache.New[string, *asset.Mapping](cfg.MappingTTL),
		quoteSet: make(map[string]bool, len(cfg.QuoteAssets)),
	}
	for _, q := range cfg.QuoteAssets {
		s.quoteSet[strings.ToUpper(strings.TrimSpace(q))] = true
	}
	s.initCircuitBreakers()

	return s, nil
}

func (s *Source) initCircuitBreakers() {
	onChange := func(name string, from, to gobreaker.State) {
		s.logger.Warn(context.Background(), "circuit breaker state change",
			"breaker", name, "from", from.String(), "to", to.String())
	}

	mappingCfg := circuitbreaker.DefaultConfig("binance-exchange-info")
	mappingCfg.OnStateChange = onChange
	s.mappingCB = circuitbreaker.New[*exchangeInfoResponse](mappingCfg)

	quotesCfg := circuitbreaker.DefaultConfig("binance-ticker-price")
	quotesCfg.OnStateChange = onChange
	s.quotesCB = circuitbreaker.New[[]tickerPrice](quotesCfg)
}

// Name implements app.QuoteSource.
func (s *Source) Name() string {
	return "binance"
}

// Load implements app.QuoteSource.
func (s *Source) Load(ctx context.Context) (*domain.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "binance.load")
	defer span.End()

	mapping, err := s.mapping(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "exchange info failed")
		return nil, err
	}

	prices, err := s.quotesCB.Execute(func() ([]tickerPrice, error) {
		return s.fetchPrices(ctx)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ticker price failed")
		return nil, err
	}

	quotes := make([]domain.Quote, 0, len(prices))
	for _, p := range prices {
		if _, ok := mapping.Lookup(p.Symbol); !ok {
			continue
		}
		quotes = append(quotes, domain.Quote{Symbol: p.Symbol, Price: p.Price})
	}

	span.SetAttributes(
		attribute.Int("symbols", mapping.Count()),
		attribute.Int("tickers", len(prices)),
		attribute.Int("quotes", len(quotes)),
	)
	span.SetStatus(codes.Ok, "loaded")

	return domain.NewSnapshot(s.Name(), mapping, quotes), nil
}

// Close stops the mapping cache.
func (s *Source) Close() error {
	s.mappings.Close()
	return nil
}

// mapping returns the cached symbol mapping, refreshing it from exchangeInfo
// when it has expired.
func (s *Source) mapping(ctx context.Context) (*asset.Mapping, error) {
	if m, ok := s.mappings.Get(ctx, mappingKey); ok {
		return m, nil
	}

	info, err := s.mappingCB.Execute(func() (*exchangeInfoResponse, error) {
		return s.fetchExchangeInfo(ctx)
	})
	if err != nil {
		return nil, err
	}

	m := asset.NewMapping()
	skipped := 0
	for _, sym := range info.Symbols {
		if sym.Status != statusTrading {
			continue
		}
		if len(s.quoteSet) > 0 && !s.quoteSet[sym.QuoteAsset] {
			continue
		}
		if err := m.Register(sym.Symbol, asset.NewPair(asset.Symbol(sym.BaseAsset), asset.Symbol(sym.QuoteAsset))); err != nil {
			skipped++
		}
	}
	if skipped > 0 {
		s.logger.Warn(ctx, "skipped exchange info symbols", "skipped", skipped)
	}

	if s.config.MappingTTL > 0 {
		s.mappings.Set(ctx, mappingKey, m, s.config.MappingTTL)
	}
	return m, nil
}

func (s *Source) fetchExchangeInfo(ctx context.Context) (*exchangeInfoResponse, error) {
	if err := s.limiter.Wait(ctx, exchangeInfoWeight); err != nil {
		return nil, apperror.New(apperror.CodeRateLimitExceeded, apperror.WithCause(err))
	}

	var result exchangeInfoResponse
	_, err := s.client.NewRequest(
		httpclient.WithAttributes(attribute.String("endpoint", "exchangeInfo")),
		httpclient.WithResponseErrorHandler(binanceErrorHandler),
	).
		SetResult(&result).
		Get(ctx, exchangeInfoEndpoint)
	if err != nil {
		return nil, apperror.External(apperror.CodeBinanceAPIError, "fetch exchange info", err)
	}

	s.logger.Debug(ctx, "fetched exchange info", "symbols", len(result.Symbols))
	return &result, nil
}

func (s *Source) fetchPrices(ctx context.Context) ([]tickerPrice, error) {
	if err := s.limiter.Wait(ctx, tickerPriceWeight); err != nil {
		return nil, apperror.New(apperror.CodeRateLimitExceeded, apperror.WithCause(err))
	}

	var result []tickerPrice
	_, err := s.client.NewRequest(
		httpclient.WithAttributes(attribute.String("endpoint", "tickerPrice")),
		httpclient.WithResponseErrorHandler(binanceErrorHandler),
	).
		SetResult(&result).
		Get(ctx, tickerPriceEndpoint)
	if err != nil {
		return nil, apperror.External(apperror.CodeBinanceAPIError, "fetch ticker prices", err)
	}

	s.logger.Debug(ctx, "fetched ticker prices", "tickers", len(result))
	return result, nil
}

// exchangeInfoResponse is the subset of /api/v3/exchangeInfo we use.
type exchangeInfoResponse struct {
	Symbols []symbolInfo `json:"symbols"`
}

type symbolInfo struct {
	Symbol     string `json:"symbol"`
	Status     string `json:"status"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
}

// tickerPrice is one element of /api/v3/ticker/price.
type tickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// APIError represents an error response from Binance API.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance API error %d: %s", e.Code, e.Message)
}

// binanceErrorHandler parses Binance API error responses.
func binanceErrorHandler(statusCode int, body []byte) error {
	if statusCode >= 400 {
		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != 0 {
			return &apiErr
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
	return nil
}
