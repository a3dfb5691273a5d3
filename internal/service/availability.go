package service

import (
	"context"
	"log/slog"

	"github.com/cardano-insights/agent-service/config"
	"github.com/cardano-insights/agent-service/internal/core"
	"github.com/cardano-insights/agent-service/internal/domain/model"
)

// AvailabilityService reports agent readiness, probing the registry backend
// rather than returning a hard-coded descriptor.
type AvailabilityService struct {
	repo   core.JobRepository
	agent  config.AgentConfig
	logger *slog.Logger
}

// AvailabilityServiceOptions groups dependencies for AvailabilityService.
type AvailabilityServiceOptions struct {
	Repo   core.JobRepository
	Agent  config.AgentConfig
	Logger *slog.Logger
}

// NewAvailabilityService constructs a new AvailabilityService.
func NewAvailabilityService(opts AvailabilityServiceOptions) *AvailabilityService {
	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "availability_service")
	}
	agent := opts.Agent
	agent.Sanitize()
	return &AvailabilityService{
		repo:   opts.Repo,
		agent:  agent,
		logger: logger,
	}
}

// Check probes the registry backend and returns the readiness descriptor.
func (s *AvailabilityService) Check(ctx context.Context) *model.AvailabilityResponse {
	if s.repo != nil {
		if err := s.repo.Ping(ctx); err != nil {
			if s.logger != nil {
				s.logger.WarnContext(ctx, "registry backend unreachable", "error", err)
			}
			return &model.AvailabilityResponse{
				Status:          model.AvailabilityUnavailable,
				AgentIdentifier: s.agent.Identifier,
				Message:         "job registry backend unreachable",
			}
		}
	}

	return &model.AvailabilityResponse{
		Status:          model.AvailabilityAvailable,
		AgentIdentifier: s.agent.Identifier,
		Message:         "agent is accepting analysis jobs",
	}
}
