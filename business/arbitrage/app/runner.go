package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbgraph/business/arbitrage/domain"
	graphApp "github.com/fd1az/arbgraph/business/graph/app"
	"github.com/fd1az/arbgraph/internal/apperror"
	"github.com/fd1az/arbgraph/internal/logger"
)

// RunResult is the outcome of one end-to-end run.
type RunResult struct {
	RunID        string
	Source       string
	Build        graphApp.BuildStats
	SampledNodes int
	Rows         []domain.MetricsRow
	Iterations   int
	FinalNodes   int
	Stopped      domain.StopReason
	ExportErrors int
	Duration     time.Duration
}

// RunnerConfig holds the sampling parameters of a run.
type RunnerConfig struct {
	SampleRatio float64
	SampleSeed  uint64
}

// Runner loads market data, builds the graph and breaks its cycles.
type Runner struct {
	loader  SnapshotLoader
	builder *graphApp.Builder
	breaker *Breaker
	config  RunnerConfig
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewRunner creates a new Runner.
func NewRunner(
	loader SnapshotLoader,
	builder *graphApp.Builder,
	breaker *Breaker,
	cfg RunnerConfig,
	log logger.LoggerInterface,
) *Runner {
	return &Runner{
		loader:  loader,
		builder: builder,
		breaker: breaker,
		config:  cfg,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}
}

// Run executes one run under a fresh run id. The result is returned alongside
// any error once the graph has been built, so callers can report partial runs.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	runID := uuid.NewString()
	ctx = domain.WithRunID(ctx, runID)
	started := time.Now()

	ctx, span := r.tracer.Start(ctx, "arbitrage.run")
	defer span.End()
	span.SetAttributes(attribute.String("run_id", runID))

	snap, err := r.loader.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return nil, err
	}

	g, stats := r.builder.Build(snap.Mapping, snap.Quotes)
	r.logger.Info(ctx, "graph built",
		"source", snap.Source,
		"records", stats.Records,
		"quotes", stats.Quotes,
		"unmapped", stats.Unmapped,
		"malformed", stats.Malformed,
		"non_positive", stats.NonPositive,
		"nodes", stats.Nodes,
		"edges", stats.Edges,
	)

	if r.config.SampleRatio < 1 {
		g, err = graphApp.NewSampler(r.config.SampleSeed).Sample(g, r.config.SampleRatio)
		if err != nil {
			span.RecordError(err)
			return nil, apperror.Wrap(err, apperror.CodeInvalidSampleRatio, "sample graph")
		}
		r.logger.Info(ctx, "graph sampled",
			"ratio", r.config.SampleRatio,
			"seed", r.config.SampleSeed,
			"nodes", g.NodeCount(),
			"edges", g.EdgeCount(),
		)
	}

	res := &RunResult{
		RunID:        runID,
		Source:       snap.Source,
		Build:        stats,
		SampledNodes: g.NodeCount(),
	}

	br, err := r.breaker.Run(ctx, g)
	res.Rows = br.Rows
	res.Iterations = br.Iterations
	res.FinalNodes = br.FinalNodes
	res.Stopped = br.Stopped
	res.ExportErrors = br.ExportErrors
	res.Duration = time.Since(started)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, br.Stopped.String())
	}
	return res, err
}
