// Package runner provides the polling loop that drives running jobs to
// completion via the analysis backend.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cardano-insights/agent-service/config"
	"github.com/cardano-insights/agent-service/internal/adapters/analyzer"
	"github.com/cardano-insights/agent-service/internal/domain/model"
	"github.com/cardano-insights/agent-service/internal/observability/metrics"
	"github.com/cardano-insights/agent-service/internal/observability/statsd"
	"github.com/cardano-insights/agent-service/internal/service"
)

// maxConcurrentAnalyses bounds how many backend calls run in parallel per tick.
const maxConcurrentAnalyses = 4

// Runner polls the registry for running jobs and resolves each one through
// the configured analyzer.
type Runner struct {
	jobs     *service.JobService
	analyzer analyzer.Analyzer
	config   config.RunnerConfig
	logger   *slog.Logger
	metrics  statsd.Sink
}

// Options holds the dependencies for creating a Runner.
type Options struct {
	Jobs     *service.JobService
	Analyzer analyzer.Analyzer
	Config   config.RunnerConfig
	Logger   *slog.Logger
	Metrics  statsd.Sink
}

// New creates a runner with the given options.
func New(opts Options) (*Runner, error) {
	if opts.Jobs == nil {
		return nil, errors.New("job service is required")
	}
	if opts.Analyzer == nil {
		return nil, errors.New("analyzer is required")
	}
	opts.Config.Sanitize()
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Runner{
		jobs:     opts.Jobs,
		analyzer: opts.Analyzer,
		config:   opts.Config,
		logger:   opts.Logger.With("component", "analysis_runner"),
		metrics:  opts.Metrics,
	}, nil
}

// Run starts the polling loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting analysis runner",
		"interval", r.config.Interval,
		"batch_size", r.config.BatchSize,
	)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "analysis runner stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			if err := r.tick(ctx); err != nil {
				r.logger.ErrorContext(ctx, "analysis tick failed", "error", err)
				// Continue running despite errors
			}
		}
	}
}

// tick processes one batch of running jobs.
func (r *Runner) tick(ctx context.Context) error {
	batch, err := r.jobs.ListRunning(ctx, r.config.BatchSize)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentAnalyses)

	for _, job := range batch {
		g.Go(func() error {
			r.processJob(gctx, job)
			return nil
		})
	}

	return g.Wait()
}

// processJob runs the analyzer for a single job and records the outcome.
// A backend failure fails the job rather than the runner.
func (r *Runner) processJob(ctx context.Context, job *model.Job) {
	actx, cancel := context.WithTimeout(ctx, r.config.RequestTimeout)
	defer cancel()

	start := time.Now()
	result, err := r.analyzer.Analyze(actx, job)
	elapsed := time.Since(start)

	if err != nil {
		r.logger.WarnContext(ctx, "analysis failed",
			"job_id", job.JobID,
			"error", err,
			"duration", elapsed,
		)
		r.emit(metrics.TransitionFail, metrics.ResultError, elapsed)
		if failErr := r.jobs.Fail(ctx, job.JobID, err.Error()); failErr != nil {
			r.logger.ErrorContext(ctx, "failed to mark job failed",
				"job_id", job.JobID, "error", failErr)
		}
		return
	}

	if err := r.jobs.Complete(ctx, job.JobID, result); err != nil {
		r.logger.ErrorContext(ctx, "failed to complete job",
			"job_id", job.JobID, "error", err)
		r.emit(metrics.TransitionComplete, metrics.ResultError, elapsed)
		return
	}

	r.logger.InfoContext(ctx, "job completed", "job_id", job.JobID, "duration", elapsed)
	r.emit(metrics.TransitionComplete, metrics.ResultSuccess, elapsed)
}

func (r *Runner) emit(transition, result string, elapsed time.Duration) {
	metrics.EmitJobLifecycle(r.metrics, metrics.JobMetric{
		Transition: transition,
		Result:     result,
		Duration:   elapsed,
	})
}
