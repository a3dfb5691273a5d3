package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardano-insights/agent-service/config"
	"github.com/cardano-insights/agent-service/internal/adapters/analyzer"
	"github.com/cardano-insights/agent-service/internal/adapters/runner"
	"github.com/cardano-insights/agent-service/internal/adapters/sweeper"
	"github.com/cardano-insights/agent-service/internal/observability/statsd"
)

// ServiceOrchestrationConfig contains everything needed to run the enabled
// services until shutdown.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// backgroundService pairs a named run loop with its completion channel.
type backgroundService struct {
	name string
	run  func(ctx context.Context) error
}

// RunServicesWithShutdown starts all enabled services and manages their
// lifecycle. It blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	background, err := buildBackgroundServices(cfg, enabled, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, len(background)+1)
	done := make([]<-chan struct{}, 0, len(background))
	for _, svc := range background {
		done = append(done, launchBackground(serviceCtx, svc, errCh, logger))
	}

	var httpServer *http.Server
	if enabled[config.ServiceModeHTTP] {
		httpServer = StartHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		})
	}

	return waitForShutdown(shutdownDeps{
		cancel:     cancel,
		errCh:      errCh,
		httpServer: httpServer,
		done:       done,
		metrics:    cfg.Services.Metrics,
		logger:     logger,
	})
}

// defaultDevResult is returned by the development analyzer stand-in when no
// analysis backend is configured.
var defaultDevResult = json.RawMessage(
	`{"keyInsights":[],"alerts":[],"suggestions":[],"note":"development analyzer stub"}`,
)

func buildBackgroundServices(
	cfg *ServiceOrchestrationConfig,
	enabled map[config.ServiceMode]bool,
	logger *slog.Logger,
) ([]backgroundService, error) {
	var services []backgroundService

	if enabled[config.ServiceModeRunner] {
		r, err := buildRunner(cfg, logger)
		if err != nil {
			return nil, err
		}
		services = append(services, backgroundService{name: "runner", run: r.Run})
	}

	if enabled[config.ServiceModeSweeper] {
		s, err := sweeper.New(sweeper.Options{
			Repo:    cfg.Services.Repo,
			Config:  cfg.Config.Sweeper,
			Logger:  logger,
			Metrics: cfg.Services.Sink,
		})
		if err != nil {
			return nil, fmt.Errorf("build sweeper: %w", err)
		}
		services = append(services, backgroundService{name: "sweeper", run: s.Run})
	}

	return services, nil
}

func buildRunner(cfg *ServiceOrchestrationConfig, logger *slog.Logger) (*runner.Runner, error) {
	var backend analyzer.Analyzer
	if cfg.Config.Runner.BackendURL != "" {
		httpAnalyzer, err := analyzer.NewHTTPAnalyzer(analyzer.HTTPAnalyzerOptions{
			URL:    cfg.Config.Runner.BackendURL,
			Client: &http.Client{Timeout: cfg.Config.Runner.RequestTimeout},
		})
		if err != nil {
			return nil, fmt.Errorf("build analyzer: %w", err)
		}
		backend = httpAnalyzer
	} else {
		// Dev only; ValidateServiceConfig rejects this outside dev mode.
		logger.Warn("no analysis backend configured, using development stub")
		backend = &analyzer.StaticAnalyzer{Result: defaultDevResult}
	}

	r, err := runner.New(runner.Options{
		Jobs:     cfg.Services.Jobs,
		Analyzer: backend,
		Config:   cfg.Config.Runner,
		Logger:   logger,
		Metrics:  cfg.Services.Sink,
	})
	if err != nil {
		return nil, fmt.Errorf("build runner: %w", err)
	}
	return r, nil
}

// launchBackground starts a background service and reports a failure on errCh.
// The returned channel closes when the service loop has exited.
func launchBackground(
	ctx context.Context,
	svc backgroundService,
	errCh chan<- error,
	logger *slog.Logger,
) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("starting background service", "service", svc.name)
		if err := svc.run(ctx); err != nil {
			errCh <- fmt.Errorf("%s: %w", svc.name, err)
			return
		}
		logger.Info("background service stopped", "service", svc.name)
	}()
	return done
}

// shutdownDeps contains dependencies for graceful shutdown.
type shutdownDeps struct {
	cancel     context.CancelFunc
	errCh      <-chan error
	httpServer *http.Server
	done       []<-chan struct{}
	metrics    *statsd.Client
	logger     *slog.Logger
}

const backgroundStopTimeout = 15 * time.Second

// waitForShutdown waits for a shutdown signal or service error.
func waitForShutdown(deps shutdownDeps) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		deps.logger.Info("shutting down services...")
		deps.cancel()
		return gracefulStop(deps)
	case err := <-deps.errCh:
		deps.logger.Error("service error", "error", err)
		deps.cancel()
		if stopErr := gracefulStop(deps); stopErr != nil {
			deps.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop stops the HTTP server, waits for background loops to drain,
// and flushes shared infrastructure.
func gracefulStop(deps shutdownDeps) error {
	var firstErr error

	if err := ShutdownHTTPServer(context.Background(), deps.httpServer, deps.logger); err != nil {
		firstErr = err
	}

	deadline := time.After(backgroundStopTimeout)
	for _, done := range deps.done {
		select {
		case <-done:
		case <-deadline:
			deps.logger.Warn("timed out waiting for background services to stop")
			if firstErr == nil {
				firstErr = errors.New("background services did not stop in time")
			}
		}
	}

	if deps.metrics != nil {
		if err := deps.metrics.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
