// Package sweeper provides the retention loop that deletes old terminal jobs
// from the registry.
package sweeper

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/cardano-insights/agent-service/config"
	"github.com/cardano-insights/agent-service/internal/core"
	"github.com/cardano-insights/agent-service/internal/data"
	"github.com/cardano-insights/agent-service/internal/observability/metrics"
	"github.com/cardano-insights/agent-service/internal/observability/statsd"
)

// Sweeper deletes completed and failed jobs older than the retention window.
type Sweeper struct {
	repo    core.JobRepository
	clock   data.TimeProvider
	config  config.SweeperConfig
	logger  *slog.Logger
	metrics statsd.Sink
}

// Options holds the dependencies for creating a Sweeper.
type Options struct {
	Repo    core.JobRepository
	Clock   data.TimeProvider
	Config  config.SweeperConfig
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// New creates a sweeper with the given options.
func New(opts Options) (*Sweeper, error) {
	if opts.Repo == nil {
		return nil, errors.New("job repository is required")
	}
	if opts.Clock == nil {
		opts.Clock = &data.RealTimeProvider{}
	}
	opts.Config.Sanitize()
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Sweeper{
		repo:    opts.Repo,
		clock:   opts.Clock,
		config:  opts.Config,
		logger:  opts.Logger.With("component", "retention_sweeper"),
		metrics: opts.Metrics,
	}, nil
}

// Run starts the sweep loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting retention sweeper",
		"interval", s.config.Interval,
		"retention_max_age", s.config.RetentionMaxAge,
	)

	// Jitter so multiple instances started together don't sweep in lockstep.
	s.waitWithJitter(ctx)

	if err := s.sweep(ctx); err != nil {
		s.logger.ErrorContext(ctx, "initial sweep failed", "error", err)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "retention sweeper stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				s.logger.ErrorContext(ctx, "sweep failed", "error", err)
				// Continue running despite errors
			}
		}
	}
}

// waitWithJitter delays up to 10% of the interval before the first sweep.
func (s *Sweeper) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// If crypto/rand fails, skip jitter rather than failing startup
		s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}

// sweep deletes terminal jobs whose last update predates the retention cutoff.
func (s *Sweeper) sweep(ctx context.Context) error {
	start := time.Now()
	cutoff := s.clock.Now().Add(-s.config.RetentionMaxAge)

	deleted, err := s.repo.DeleteTerminalBefore(ctx, cutoff)
	elapsed := time.Since(start)

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.EmitJobLifecycle(s.metrics, metrics.JobMetric{
		Transition: metrics.TransitionSweep,
		Result:     result,
		Duration:   elapsed,
	})

	if err != nil {
		return err
	}

	if deleted > 0 {
		s.logger.InfoContext(ctx, "swept terminal jobs",
			"deleted", deleted,
			"cutoff", cutoff,
			"duration", elapsed,
		)
	}

	return nil
}
