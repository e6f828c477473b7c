// Package arbitrage implements the arbitrage bounded context: negative cycle
// detection, the breaking loop and its exporters.
package arbitrage

import (
	"context"

	"github.com/fd1az/arbgraph/business/arbitrage/app"
	arbitrageDI "github.com/fd1az/arbgraph/business/arbitrage/di"
	"github.com/fd1az/arbgraph/business/arbitrage/domain"
	"github.com/fd1az/arbgraph/business/arbitrage/infra"
	"github.com/fd1az/arbgraph/business/arbitrage/infra/postgres"
	"github.com/fd1az/arbgraph/business/arbitrage/infra/redis"
	"github.com/fd1az/arbgraph/business/arbitrage/infra/s3"
	graphApp "github.com/fd1az/arbgraph/business/graph/app"
	marketDI "github.com/fd1az/arbgraph/business/market/di"
	"github.com/fd1az/arbgraph/internal/asset"
	"github.com/fd1az/arbgraph/internal/config"
	"github.com/fd1az/arbgraph/internal/di"
	"github.com/fd1az/arbgraph/internal/logger"
	"github.com/fd1az/arbgraph/internal/monolith"
	"github.com/fd1az/arbgraph/pkg/ui"
)

// Module implements the arbitrage bounded context.
type Module struct{}

// RegisterServices registers all arbitrage services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register Detector (private - internal dependency)
	di.RegisterToken(c, arbitrageDI.Detector, func(sr di.ServiceRegistry) *app.Detector {
		cfg := sr.Get("config").(*config.Config)

		mode, err := domain.ParseStartMode(cfg.Arbitrage.StartMode)
		if err != nil {
			panic("failed to create detector: " + err.Error())
		}
		return app.NewDetector(app.DetectorConfig{
			StartAsset: asset.Symbol(cfg.Arbitrage.StartAsset),
			StartMode:  mode,
			Tolerance:  cfg.Arbitrage.Tolerance,
		})
	})

	// Register ProfitCalculator (private - internal dependency)
	di.RegisterToken(c, arbitrageDI.ProfitCalculator, func(sr di.ServiceRegistry) *app.ProfitCalculator {
		return app.NewProfitCalculator()
	})

	// Register Exporter (private) - local exporters only, network ones join in Startup
	di.RegisterToken(c, arbitrageDI.Exporter, func(sr di.ServiceRegistry) *infra.Fanout {
		cfg := sr.Get("config").(*config.Config)

		fanout := infra.NewFanout(
			infra.NewCSVExporter(cfg.Export.MetricsPath),
			infra.NewDOTExporter(cfg.Export.DOTDir),
		)
		if cfg.App.TUIMode {
			fanout.Add(infra.NewTUIReporter(infra.SenderFunc(ui.Send), cfg.Input.Source))
		} else if cfg.Export.Console {
			fanout.Add(infra.NewConsoleReporter())
		}
		return fanout
	})

	// Register Breaker (private - internal dependency)
	di.RegisterToken(c, arbitrageDI.Breaker, func(sr di.ServiceRegistry) *app.Breaker {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		policy, err := domain.ParseRemovalPolicy(cfg.Arbitrage.RemovalPolicy)
		if err != nil {
			panic("failed to create breaker: " + err.Error())
		}
		breaker, err := app.NewBreaker(
			arbitrageDI.GetDetector(sr),
			arbitrageDI.GetProfitCalculator(sr),
			arbitrageDI.GetExporter(sr),
			app.BreakerConfig{Policy: policy, MaxIterations: cfg.Arbitrage.MaxIterations},
			log,
		)
		if err != nil {
			panic("failed to create breaker: " + err.Error())
		}
		return breaker
	})

	// Register Runner (public - exposed to cmd)
	di.RegisterToken(c, arbitrageDI.Runner, func(sr di.ServiceRegistry) *app.Runner {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewRunner(
			marketDI.GetMarketService(sr),
			graphApp.NewBuilder(),
			arbitrageDI.GetBreaker(sr),
			app.RunnerConfig{SampleRatio: cfg.Graph.SampleRatio, SampleSeed: cfg.Graph.SampleSeed},
			log,
		)
	})

	return nil
}

// Startup connects the enabled network exporters and adds them to the fanout.
// A sink that cannot be reached is logged and skipped; the run still writes
// its local outputs.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	log := mono.Logger()
	fanout := arbitrageDI.GetExporter(mono.Services())

	if pg := cfg.Export.Postgres; pg.Enabled {
		client, err := postgres.New(ctx, postgres.ClientConfig{DSN: pg.DSN, MaxConns: pg.MaxConns})
		if err != nil {
			log.Error(ctx, "failed to connect metrics store", "error", err)
		} else if err := client.RunMigrations(ctx); err != nil {
			log.Error(ctx, "failed to migrate metrics store", "error", err)
			_ = client.Close()
		} else {
			mono.AddCloser(client)
			fanout.Add(postgres.NewMetricsStore(client.Pool()))
			log.Info(ctx, "postgres exporter enabled")
		}
	}

	if rc := cfg.Export.Redis; rc.Enabled {
		client, err := redis.New(ctx, redis.ClientConfig{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
		if err != nil {
			log.Error(ctx, "failed to connect event publisher", "error", err)
		} else {
			mono.AddCloser(client)
			fanout.Add(redis.NewEventPublisher(client.Underlying(), rc.Channel))
			log.Info(ctx, "redis exporter enabled", "channel", rc.Channel)
		}
	}

	if sc := cfg.Export.S3; sc.Enabled {
		client, err := s3.New(ctx, s3.ClientConfig{
			Endpoint:       sc.Endpoint,
			Region:         sc.Region,
			Bucket:         sc.Bucket,
			AccessKey:      sc.AccessKey,
			SecretKey:      sc.SecretKey,
			ForcePathStyle: sc.UsePathStyle,
		})
		if err == nil {
			err = client.Health(ctx)
		}
		if err != nil {
			log.Error(ctx, "failed to reach snapshot archive", "error", err)
		} else {
			fanout.Add(s3.NewArchiver(client.S3(), client.Bucket(), sc.Prefix))
			log.Info(ctx, "s3 exporter enabled", "bucket", sc.Bucket)
		}
	}

	log.Info(ctx, "arbitrage module started", "exporters", fanout.Len())
	return nil
}
