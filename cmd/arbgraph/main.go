// Package main is the entry point for arbgraph, the negative cycle
// arbitrage finder.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/fd1az/arbgraph/business/arbitrage"
	arbitrageApp "github.com/fd1az/arbgraph/business/arbitrage/app"
	arbitrageDI "github.com/fd1az/arbgraph/business/arbitrage/di"
	"github.com/fd1az/arbgraph/business/market"
	"github.com/fd1az/arbgraph/internal/apm"
	"github.com/fd1az/arbgraph/internal/config"
	"github.com/fd1az/arbgraph/internal/logger"
	"github.com/fd1az/arbgraph/internal/metrics"
	"github.com/fd1az/arbgraph/internal/monolith"
	"github.com/fd1az/arbgraph/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	tuiMode := flag.Bool("tui", false, "Show the run in an interactive terminal UI")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("arbgraph %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath, *tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.App.TUIMode = tuiMode

	// Logs would corrupt the TUI, so they are discarded there
	var out io.Writer = os.Stderr
	if tuiMode {
		out = io.Discard
	}
	log := logger.New(out, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, apm.TraceIDFromContext)
	log.Info(ctx, "starting arbgraph",
		"version", version,
		"environment", cfg.App.Environment,
		"source", cfg.Input.Source,
	)

	if cfg.Telemetry.Enabled {
		stop, err := setupTelemetry(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer stop()
	}

	mono := monolith.New(cfg, log)
	defer func() {
		if err := mono.Close(); err != nil {
			log.Error(ctx, "failed to close resources", "error", err)
		}
	}()

	// Define modules in dependency order
	modules := []monolith.Module{
		&market.Module{},    // Must be first - provides the market service
		&arbitrage.Module{}, // Depends on market
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	runFunc := func(ctx context.Context) (*arbitrageApp.RunResult, error) {
		if err := mono.StartModules(ctx, modules...); err != nil {
			return nil, fmt.Errorf("failed to start modules: %w", err)
		}
		return arbitrageDI.GetRunner(mono.Services()).Run(ctx)
	}

	if tuiMode {
		return runTUI(ctx, runFunc)
	}
	return runCLI(ctx, runFunc, log)
}

func setupTelemetry(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) (func(), error) {
	tel := cfg.Telemetry

	tp, err := apm.NewTraceProvider(ctx, apm.Config{
		ServiceName: tel.ServiceName,
		Provider:    apm.Provider(tel.Provider),
		Endpoint:    tel.OTLPEndpoint,
		Headers:     tel.OTLPHeaders,
		Writer:      os.Stderr,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}
	log.Info(ctx, "tracing initialized", "provider", tel.Provider, "endpoint", tel.OTLPEndpoint)

	opts := []metrics.OptionFn{
		metrics.WithServiceName(tel.ServiceName),
		metrics.WithProviderConfig(metrics.ProviderCfg{Provider: metrics.PrometheusProvider}),
	}
	if apm.Provider(tel.Provider) == apm.OTLPProvider && tel.OTLPEndpoint != "" {
		headers, err := apm.ParseHeaders(tel.OTLPHeaders)
		if err != nil {
			_ = tp.Stop()
			return nil, fmt.Errorf("failed to init metrics: %w", err)
		}
		opts = append(opts, metrics.WithProviderConfig(metrics.NewOtelCollectorConfig(tel.OTLPEndpoint, headers, false)))
	}
	mp, err := metrics.NewMetricProvider(ctx, opts...)
	if err != nil {
		_ = tp.Stop()
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	serveCtx, cancelServe := context.WithCancel(ctx)
	go func() {
		if err := metrics.ServePrometheusMetrics(serveCtx, log, metrics.WithPort(tel.PrometheusPort)); err != nil {
			log.Warn(ctx, "prometheus server stopped", "error", err)
		}
	}()

	return func() {
		cancelServe()
		if err := mp.Shutdown(context.Background()); err != nil {
			log.Warn(ctx, "failed to flush metrics", "error", err)
		}
		if err := tp.Stop(); err != nil {
			log.Warn(ctx, "failed to flush traces", "error", err)
		}
	}, nil
}

func runCLI(ctx context.Context, runFunc func(context.Context) (*arbitrageApp.RunResult, error), log logger.LoggerInterface) error {
	res, err := runFunc(ctx)
	if res != nil {
		log.Info(ctx, "run finished",
			"run_id", res.RunID,
			"iterations", res.Iterations,
			"stopped", res.Stopped.String(),
			"final_nodes", res.FinalNodes,
			"export_errors", res.ExportErrors,
			"duration", res.Duration,
		)
	}
	return err
}

func runTUI(ctx context.Context, runFunc func(context.Context) (*arbitrageApp.RunResult, error)) error {
	run := newTUIRun(ctx, runFunc)

	// The welcome screen triggers the run once the user confirms
	ui.OnStartRun = run.start

	p := tea.NewProgram(ui.New(), tea.WithAltScreen(), tea.WithContext(ctx))
	ui.Program = p

	_, uiErr := p.Run()

	// Quitting mid-run cancels the run and waits for it to flush its exports
	// before the deferred close tears the sinks down.
	runErr := run.stop()

	if uiErr != nil && ctx.Err() == nil {
		return errors.Join(fmt.Errorf("TUI error: %w", uiErr), runErr)
	}
	return runErr
}

// tuiRun owns the run started from the TUI welcome screen.
type tuiRun struct {
	ctx     context.Context
	cancel  context.CancelFunc
	runFunc func(context.Context) (*arbitrageApp.RunResult, error)
	done    chan error

	mu      sync.Mutex
	started bool
	stopped bool
}

func newTUIRun(parent context.Context, runFunc func(context.Context) (*arbitrageApp.RunResult, error)) *tuiRun {
	ctx, cancel := context.WithCancel(parent)
	return &tuiRun{
		ctx:     ctx,
		cancel:  cancel,
		runFunc: runFunc,
		done:    make(chan error, 1),
	}
}

// start runs once; a start after stop is ignored.
func (r *tuiRun) start() {
	r.mu.Lock()
	if r.started || r.stopped {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()

	res, err := r.runFunc(r.ctx)

	msg := ui.RunFinishedMsg{Err: err}
	if res != nil {
		msg.Iterations = res.Iterations
		msg.Stopped = res.Stopped.String()
		msg.ExportErrors = res.ExportErrors
		msg.Duration = res.Duration
	}
	ui.Send(msg)
	r.done <- err
}

// stop cancels the run and, if it was started, waits for it to return.
func (r *tuiRun) stop() error {
	r.mu.Lock()
	r.stopped = true
	started := r.started
	r.mu.Unlock()

	r.cancel()
	if !started {
		return nil
	}
	return <-r.done
}
