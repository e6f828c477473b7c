// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/fd1az/arbgraph/business/arbitrage/app"
	"github.com/fd1az/arbgraph/business/arbitrage/infra"
	"github.com/fd1az/arbgraph/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Runner = di.NewToken[*app.Runner]("arbitrage.Runner")
)

// Private dependency tokens - internal to arbitrage module
var (
	Detector         = di.NewToken[*app.Detector]("arbitrage:detector")
	ProfitCalculator = di.NewToken[*app.ProfitCalculator]("arbitrage:profitCalculator")
	Breaker          = di.NewToken[*app.Breaker]("arbitrage:breaker")
	Exporter         = di.NewToken[*infra.Fanout]("arbitrage:exporter")
)

// Helper functions for type-safe access
func GetRunner(c di.ServiceRegistry) *app.Runner {
	return di.GetToken(c, Runner)
}

func GetDetector(c di.ServiceRegistry) *app.Detector {
	return di.GetToken(c, Detector)
}

func GetProfitCalculator(c di.ServiceRegistry) *app.ProfitCalculator {
	return di.GetToken(c, ProfitCalculator)
}

func GetBreaker(c di.ServiceRegistry) *app.Breaker {
	return di.GetToken(c, Breaker)
}

func GetExporter(c di.ServiceRegistry) *infra.Fanout {
	return di.GetToken(c, Exporter)
}
