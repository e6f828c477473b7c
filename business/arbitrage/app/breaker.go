package app

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbgraph/business/arbitrage/domain"
	graph "github.com/fd1az/arbgraph/business/graph/domain"
	"github.com/fd1az/arbgraph/internal/apperror"
	"github.com/fd1az/arbgraph/internal/logger"
)

// BreakerConfig holds configuration for the cycle breaking loop.
type BreakerConfig struct {
	Policy        domain.RemovalPolicy
	MaxIterations int // 0 = unbounded
}

// BreakResult summarises a finished loop.
type BreakResult struct {
	Rows         []domain.MetricsRow
	Iterations   int
	FinalNodes   int
	FinalEdges   int
	Stopped      domain.StopReason
	ExportErrors int
}

// breakerMetrics holds OTEL metric instruments.
type breakerMetrics struct {
	iterations   metric.Int64Counter
	cycleProfit  metric.Float64Histogram
	cycleLength  metric.Int64Histogram
	nodes        metric.Int64Gauge
	exportErrors metric.Int64Counter
}

// Breaker repeatedly finds a negative cycle, records it and removes one of
// its nodes until no cycle is left.
type Breaker struct {
	detector   *Detector
	calculator *ProfitCalculator
	exporter   Exporter
	config     BreakerConfig
	logger     logger.LoggerInterface

	tracer  trace.Tracer
	metrics *breakerMetrics
}

// NewBreaker creates a new Breaker.
func NewBreaker(
	detector *Detector,
	calculator *ProfitCalculator,
	exporter Exporter,
	cfg BreakerConfig,
	log logger.LoggerInterface,
) (*Breaker, error) {
	if cfg.Policy == "" {
		cfg.Policy = domain.RemoveThird
	}

	b := &Breaker{
		detector:   detector,
		calculator: calculator,
		exporter:   exporter,
		config:     cfg,
		logger:     log,
		tracer:     otel.Tracer(tracerName),
	}

	if err := b.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return b, nil
}

// initMetrics initializes OTEL metric instruments.
func (b *Breaker) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	b.metrics = &breakerMetrics{}

	b.metrics.iterations, err = meter.Int64Counter(
		"arbitrage_iterations_total",
		metric.WithDescription("Negative cycles processed by the breaking loop"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return err
	}

	b.metrics.cycleProfit, err = meter.Float64Histogram(
		"arbitrage_cycle_profit",
		metric.WithDescription("Capital multiplier of detected cycles"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	b.metrics.cycleLength, err = meter.Int64Histogram(
		"arbitrage_cycle_length",
		metric.WithDescription("Edges per detected cycle"),
		metric.WithUnit("{edge}"),
	)
	if err != nil {
		return err
	}

	b.metrics.nodes, err = meter.Int64Gauge(
		"arbitrage_graph_nodes",
		metric.WithDescription("Nodes left in the graph"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return err
	}

	b.metrics.exportErrors, err = meter.Int64Counter(
		"arbitrage_export_errors_total",
		metric.WithDescription("Failed exporter calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Run mutates g until no negative cycle remains or a stop condition hits.
//
// The returned result is never nil. The error is set when the loop stopped
// for any reason other than running out of cycles, or when the exporter
// failed to finish.
func (b *Breaker) Run(ctx context.Context, g *graph.Graph) (*BreakResult, error) {
	ctx, span := b.tracer.Start(ctx, "arbitrage.break",
		trace.WithAttributes(
			attribute.String("policy", string(b.config.Policy)),
			attribute.Int("max_iterations", b.config.MaxIterations),
			attribute.Int("nodes", g.NodeCount()),
		),
	)
	defer span.End()

	res := &BreakResult{}
	b.snapshot(ctx, res, 0, g)

	stopErr := b.loop(ctx, g, res)

	res.FinalNodes = g.NodeCount()
	res.FinalEdges = g.EdgeCount()
	b.metrics.nodes.Record(ctx, int64(res.FinalNodes))

	b.logger.Info(ctx, "cycle breaking finished",
		"stopped", res.Stopped.String(),
		"iterations", res.Iterations,
		"final_nodes", res.FinalNodes,
		"export_errors", res.ExportErrors,
	)

	finishErr := b.exporter.Finish(ctx, res.Rows)
	if finishErr != nil {
		finishErr = apperror.Wrap(finishErr, apperror.CodeExportFailed, "finish export")
	}

	err := errors.Join(stopErr, finishErr)
	span.SetAttributes(
		attribute.Int("iterations", res.Iterations),
		attribute.String("stopped", res.Stopped.String()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, res.Stopped.String())
	} else {
		span.SetStatus(codes.Ok, "done")
	}
	return res, err
}

func (b *Breaker) loop(ctx context.Context, g *graph.Graph, res *BreakResult) error {
	for {
		if err := ctx.Err(); err != nil {
			res.Stopped = domain.StopCancelled
			return apperror.New(apperror.CodeRunCancelled,
				apperror.WithCause(err),
				apperror.WithContext(fmt.Sprintf("after %d iterations", res.Iterations)))
		}
		if b.config.MaxIterations > 0 && res.Iterations >= b.config.MaxIterations {
			res.Stopped = domain.StopIterationLimit
			return apperror.New(apperror.CodeIterationLimitReached,
				apperror.WithContext(fmt.Sprintf("limit %d", b.config.MaxIterations)))
		}

		cycle, found := b.detector.Find(ctx, g)
		if !found {
			res.Stopped = domain.StopNoCycle
			return nil
		}

		profit := b.calculator.Calculate(g, cycle)
		row := domain.MetricsRow{
			Iteration:    res.Iterations,
			Profit:       profit.Profit,
			CycleLength:  cycle.Len(),
			AvgOutDegree: g.AverageOutDegree(),
		}
		res.Rows = append(res.Rows, row)

		b.metrics.iterations.Add(ctx, 1)
		b.metrics.cycleProfit.Record(ctx, row.Profit)
		b.metrics.cycleLength.Record(ctx, int64(row.CycleLength))

		b.logger.Debug(ctx, "negative cycle",
			"iteration", row.Iteration,
			"cycle", cycle.String(),
			"profit", row.Profit,
			"log_weight", profit.TotalWeight,
			"skipped_pairs", profit.Skipped,
			"avg_out_degree", row.AvgOutDegree,
		)

		if err := b.exporter.Record(ctx, row, cycle); err != nil {
			b.exportFailed(ctx, res, "record", row.Iteration, err)
		}

		removed := false
		if idx, ok := b.config.Policy.Victim(cycle.Len()); ok {
			removed = g.RemoveNode(cycle.Nodes[idx])
		}

		res.Iterations++
		b.metrics.nodes.Record(ctx, int64(g.NodeCount()))
		b.snapshot(ctx, res, res.Iterations, g)

		if !removed {
			// The graph is unchanged, so the next detection would return the
			// same cycle.
			res.Stopped = domain.StopNotBreakable
			return apperror.New(apperror.CodeCycleNotBreakable,
				apperror.WithContext(fmt.Sprintf("cycle %s has %d nodes", cycle.String(), cycle.Len())))
		}
	}
}

func (b *Breaker) snapshot(ctx context.Context, res *BreakResult, iteration int, g *graph.Graph) {
	if err := b.exporter.Snapshot(ctx, iteration, g); err != nil {
		b.exportFailed(ctx, res, "snapshot", iteration, err)
	}
}

func (b *Breaker) exportFailed(ctx context.Context, res *BreakResult, op string, iteration int, err error) {
	res.ExportErrors++
	b.metrics.exportErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
	b.logger.Warn(ctx, "export failed",
		"op", op,
		"iteration", iteration,
		"error", err,
	)
}
