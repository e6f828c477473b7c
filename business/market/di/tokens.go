// Package di contains dependency injection tokens for the market context.
package di

import (
	"github.com/fd1az/arbgraph/business/market/app"
	"github.com/fd1az/arbgraph/internal/di"
)

// Public service tokens - exposed to other modules
var (
	MarketService = di.NewToken[*app.MarketService]("market.MarketService")
)

// Private dependency tokens - internal to market module
var (
	QuoteSource = di.NewToken[app.QuoteSource]("market:quoteSource")
)

// Helper functions for type-safe access
func GetMarketService(c di.ServiceRegistry) *app.MarketService {
	return di.GetToken(c, MarketService)
}

func GetQuoteSource(c di.ServiceRegistry) app.QuoteSource {
	return di.GetToken(c, QuoteSource)
}
