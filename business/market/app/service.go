package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbgraph/business/market/domain"
	"github.com/fd1az/arbgraph/internal/apperror"
	"github.com/fd1az/arbgraph/internal/logger"
)

const tracerName = "github.com/fd1az/arbgraph/business/market/app"

// MarketService loads market snapshots from the configured source.
type MarketService struct {
	source QuoteSource
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewMarketService creates a new MarketService.
func NewMarketService(source QuoteSource, log logger.LoggerInterface) *MarketService {
	return &MarketService{
		source: source,
		logger: log,
		tracer: otel.Tracer(tracerName),
	}
}

// Load fetches a snapshot. An empty snapshot is not an error: it builds an
// empty graph, which simply has no cycles.
func (s *MarketService) Load(ctx context.Context) (*domain.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "market.load",
		trace.WithAttributes(attribute.String("source", s.source.Name())),
	)
	defer span.End()

	started := time.Now()
	snap, err := s.source.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return nil, apperror.Wrap(err, apperror.CodeQuotesLoadFailed, s.source.Name())
	}

	mapped := snap.MappedQuotes()
	span.SetAttributes(
		attribute.Int("symbols", snap.Mapping.Count()),
		attribute.Int("quotes", len(snap.Quotes)),
		attribute.Int("mapped_quotes", mapped),
	)

	if len(snap.Quotes) == 0 || mapped == 0 {
		s.logger.Warn(ctx, "market snapshot has no usable quotes",
			"source", snap.Source,
			"symbols", snap.Mapping.Count(),
			"quotes", len(snap.Quotes))
	} else {
		s.logger.Info(ctx, "market snapshot loaded",
			"source", snap.Source,
			"symbols", snap.Mapping.Count(),
			"assets", len(snap.Mapping.Assets()),
			"quotes", len(snap.Quotes),
			"mapped_quotes", mapped,
			"took", time.Since(started).String())
	}

	span.SetStatus(codes.Ok, "loaded")
	return snap, nil
}
