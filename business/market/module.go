// Package market implements the market bounded context: symbol mappings and
// quotes from files or Binance.
package market

import (
	"context"
	"io"

	"github.com/fd1az/arbgraph/business/market/app"
	marketDI "github.com/fd1az/arbgraph/business/market/di"
	"github.com/fd1az/arbgraph/business/market/infra/binance"
	"github.com/fd1az/arbgraph/business/market/infra/file"
	"github.com/fd1az/arbgraph/internal/config"
	"github.com/fd1az/arbgraph/internal/di"
	"github.com/fd1az/arbgraph/internal/logger"
	"github.com/fd1az/arbgraph/internal/monolith"
)

// Module implements the market bounded context.
type Module struct{}

// RegisterServices registers all market services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register QuoteSource - private dependency, picked by input.source
	di.RegisterToken(c, marketDI.QuoteSource, func(sr di.ServiceRegistry) app.QuoteSource {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		if cfg.Input.Source == config.SourceBinance {
			src, err := binance.NewSource(binance.SourceConfig{
				BaseURL:           cfg.Binance.BaseURL,
				Timeout:           cfg.Binance.Timeout,
				RequestsPerMinute: cfg.Binance.RequestsPerMinute,
				QuoteAssets:       cfg.Binance.QuoteAssets,
				MappingTTL:        cfg.Binance.MappingTTL,
			}, log)
			if err != nil {
				panic("failed to create binance source: " + err.Error())
			}
			return src
		}

		return file.NewSource(file.SourceConfig{
			MappingPath: cfg.Input.MappingPath,
			QuotesPath:  cfg.Input.QuotesPath,
		}, log)
	})

	// Register MarketService (public - exposed to other modules)
	di.RegisterToken(c, marketDI.MarketService, func(sr di.ServiceRegistry) *app.MarketService {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewMarketService(marketDI.GetQuoteSource(sr), log)
	})

	return nil
}

// Startup initializes the market module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	src := marketDI.GetQuoteSource(mono.Services())
	if c, ok := src.(io.Closer); ok {
		mono.AddCloser(c)
	}
	mono.Logger().Info(ctx, "market module started", "source", src.Name())
	return nil
}
