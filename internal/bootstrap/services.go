package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/cardano-insights/agent-service/config"
	"github.com/cardano-insights/agent-service/internal/core"
	"github.com/cardano-insights/agent-service/internal/data"
	"github.com/cardano-insights/agent-service/internal/idgen"
	"github.com/cardano-insights/agent-service/internal/observability/statsd"
	"github.com/cardano-insights/agent-service/internal/service"
	"github.com/cardano-insights/agent-service/internal/signing"
)

// ServiceContainer holds the constructed application services and their
// shared infrastructure.
type ServiceContainer struct {
	Jobs         *service.JobService
	Availability *service.AvailabilityService
	Repo         core.JobRepository
	Metrics      *statsd.Client
	Sink         statsd.Sink
}

// ServiceDeps holds the dependencies needed to build the service container.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices builds the service container from configuration and shared
// infrastructure.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repo, err := buildRegistry(cfg, deps.RedisClient)
	if err != nil {
		return ServiceContainer{}, err
	}

	signer, err := buildSigner(cfg, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	metricsClient := buildMetrics(cfg.Observability, logger)
	// Leave the sink as a nil interface when metrics are disabled so the
	// emit helpers short-circuit.
	var sink statsd.Sink
	if metricsClient != nil {
		sink = metricsClient
	}

	jobs := service.MustNewJobService(service.JobServiceOptions{
		Repo:    repo,
		IDs:     idgen.UUIDGenerator{},
		Signer:  signer,
		Agent:   cfg.Agent,
		Logger:  logger,
		Metrics: sink,
	})

	availability := service.NewAvailabilityService(service.AvailabilityServiceOptions{
		Repo:   repo,
		Agent:  cfg.Agent,
		Logger: logger,
	})

	return ServiceContainer{
		Jobs:         jobs,
		Availability: availability,
		Repo:         repo,
		Metrics:      metricsClient,
		Sink:         sink,
	}, nil
}

// buildRegistry selects the job registry backend.
//
//nolint:ireturn // backend selection happens at runtime.
func buildRegistry(cfg *config.AppConfig, client redis.UniversalClient) (core.JobRepository, error) {
	if !cfg.Registry.UsesRedis() {
		return data.NewMemoryJobRepo(), nil
	}
	if client == nil {
		return nil, fmt.Errorf("redis registry backend selected but no redis client provided")
	}
	return data.NewRedisJobRepo(client, data.RedisJobRepoConfig{
		KeyPrefix: cfg.Registry.KeyPrefix,
		TTL:       cfg.Registry.TTL,
	}), nil
}

// buildSigner loads the configured signing key, or generates an ephemeral one
// in development mode.
//
//nolint:ireturn // signer selection happens at runtime.
func buildSigner(cfg *config.AppConfig, logger *slog.Logger) (signing.Signer, error) {
	if cfg.Agent.SigningSeed != "" {
		signer, err := signing.NewEd25519Signer(cfg.Agent.SigningSeed)
		if err != nil {
			return nil, fmt.Errorf("load signing key: %w", err)
		}
		return signer, nil
	}

	if !cfg.IsDev {
		return nil, fmt.Errorf("signing seed is required outside development mode")
	}

	signer, err := signing.GenerateEd25519Signer()
	if err != nil {
		return nil, fmt.Errorf("generate ephemeral signing key: %w", err)
	}
	logger.Warn("using ephemeral signing key; attestations will not verify across restarts")
	return signer, nil
}

// buildMetrics constructs the statsd client when metrics are enabled.
// Returns nil when disabled; callers treat a nil sink as a no-op.
func buildMetrics(cfg config.ObservabilityConfig, logger *slog.Logger) *statsd.Client {
	if !cfg.Metrics.IsEnabled() {
		return nil
	}

	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  "agent",
		Logger:  logger,
	})
	if err != nil {
		logger.Warn("statsd client unavailable, metrics disabled", "error", err)
		return nil
	}

	logger.Info("metrics enabled", "statsd_address", cfg.Metrics.StatsdAddress)
	return client
}
