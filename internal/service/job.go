// Package service contains the business logic behind the MIP-003 endpoints.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cardano-insights/agent-service/config"
	"github.com/cardano-insights/agent-service/internal/apperrors"
	"github.com/cardano-insights/agent-service/internal/core"
	"github.com/cardano-insights/agent-service/internal/data"
	"github.com/cardano-insights/agent-service/internal/domain/model"
	"github.com/cardano-insights/agent-service/internal/fingerprint"
	"github.com/cardano-insights/agent-service/internal/idgen"
	"github.com/cardano-insights/agent-service/internal/observability/metrics"
	"github.com/cardano-insights/agent-service/internal/observability/statsd"
	"github.com/cardano-insights/agent-service/internal/signing"
)

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Repo         core.JobRepository // Required: job registry
	IDs          idgen.Generator    // Required: identifier generator
	Signer       signing.Signer     // Required: attestation signer
	Agent        config.AgentConfig // Agent identity and deadline schedule
	TimeProvider data.TimeProvider  // Optional: defaults to system time
	Logger       *slog.Logger       // Optional: structured logger
	Metrics      statsd.Sink        // Optional: metrics sink (StatsD-compatible)
}

// JobService provides business logic for the job registry operations:
// creation, status projection, input provision, and the completion and
// failure transitions driven by the analysis runner.
type JobService struct {
	repo    core.JobRepository
	ids     idgen.Generator
	signer  signing.Signer
	agent   config.AgentConfig
	clock   data.TimeProvider
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.Repo == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.IDs == nil {
		return nil, errors.New("ID generator is required")
	}
	if opts.Signer == nil {
		return nil, errors.New("Signer is required")
	}

	clock := opts.TimeProvider
	if clock == nil {
		clock = &data.RealTimeProvider{}
	}

	agent := opts.Agent
	agent.Sanitize()

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "job_service")
	}

	return &JobService{
		repo:    opts.Repo,
		ids:     opts.IDs,
		signer:  opts.Signer,
		agent:   agent,
		clock:   clock,
		logger:  logger,
		metrics: opts.Metrics,
	}, nil
}

// MustNewJobService constructs a new JobService and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewJobService(opts JobServiceOptions) *JobService {
	svc, err := NewJobService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create JobService: %v", err))
	}
	return svc
}

// StartJob validates the request, registers a new job in running status, and
// returns the MIP-003 descriptor with the advisory deadline schedule.
func (s *JobService) StartJob(
	ctx context.Context,
	req *model.StartJobRequest,
) (*model.StartJobResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inputHash, err := fingerprint.Hash(req.InputData)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "fingerprint input data")
	}

	now := s.clock.Now().UTC()
	step := s.agent.DeadlineStep

	job := &model.Job{
		JobID:                   s.ids.NewJobID(),
		StatusID:                s.ids.NewStatusID(),
		Status:                  model.JobStatusRunning,
		InputData:               req.InputData,
		IdentifierFromPurchaser: req.IdentifierFromPurchaser,
		InputHash:               inputHash,
		BlockchainIdentifier:    s.ids.NewCorrelationToken(),
		Deadlines: model.Deadlines{
			PayBy:           now.Add(step),
			SubmitResultBy:  now.Add(2 * step),
			UnlockAt:        now.Add(3 * step),
			DisputeUnlockAt: now.Add(4 * step),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, job); err != nil {
		metrics.EmitJobLifecycle(s.metrics, metrics.JobMetric{
			Transition: metrics.TransitionCreate,
			Result:     metrics.ResultError,
		})
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeInternal, "register job %s", job.JobID)
	}

	if s.logger != nil {
		s.logger.DebugContext(ctx, "job created",
			"job_id", job.JobID,
			"purchaser", job.IdentifierFromPurchaser,
		)
	}
	metrics.EmitJobLifecycle(s.metrics, metrics.JobMetric{
		Transition: metrics.TransitionCreate,
		Result:     metrics.ResultSuccess,
	})

	return &model.StartJobResponse{
		Status:                  "success",
		JobID:                   job.JobID,
		StatusID:                job.StatusID,
		BlockchainIdentifier:    job.BlockchainIdentifier,
		PayBy:                   job.Deadlines.PayBy,
		SubmitResultBy:          job.Deadlines.SubmitResultBy,
		UnlockAt:                job.Deadlines.UnlockAt,
		DisputeUnlockAt:         job.Deadlines.DisputeUnlockAt,
		AgentIdentifier:         s.agent.Identifier,
		SellerVKey:              s.agent.SellerVKey,
		IdentifierFromPurchaser: job.IdentifierFromPurchaser,
		InputHash:               job.InputHash,
	}, nil
}

// GetStatus returns the status projection for a job. The result payload is
// included only when present; the input schema is included only while the job
// is awaiting additional input.
func (s *JobService) GetStatus(ctx context.Context, jobID string) (*model.StatusResponse, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, apperrors.ValidationField("job_id", "job_id is required")
	}

	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, data.ErrJobNotFound) {
			return nil, apperrors.NotFoundf("job %s not found", jobID)
		}
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeInternal, "get job %s", jobID)
	}

	resp := &model.StatusResponse{
		JobID:    job.JobID,
		StatusID: job.StatusID,
		Status:   job.Status,
		Result:   job.Result,
	}
	if job.Status == model.JobStatusAwaitingInput {
		resp.InputSchema = model.DefaultInputSchema().InputData
	}
	return resp, nil
}

// ProvideInput verifies status_id ownership, merges the supplied input into
// the stored record, resets the job to running, and returns a signed
// attestation over {job_id, status_id, timestamp}. A status_id mismatch fails
// with an Unauthorized error and leaves the record unmodified.
func (s *JobService) ProvideInput(
	ctx context.Context,
	req *model.ProvideInputRequest,
) (*model.ProvideInputResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	deltaHash, err := fingerprint.Hash(map[string]any{
		"input_data":   req.InputData,
		"input_groups": req.InputGroups,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "fingerprint input delta")
	}

	now := s.clock.Now().UTC()

	var statusID string
	_, err = s.repo.Mutate(ctx, req.JobID, func(job *model.Job) error {
		if job.StatusID != req.StatusID {
			return apperrors.Unauthorized("status_id does not match job")
		}
		if job.Status != model.JobStatusRunning &&
			!job.Status.CanTransitionTo(model.JobStatusRunning) {
			return apperrors.InvalidTransitionf(
				"job in status %s cannot accept input", job.Status)
		}

		if job.InputData == nil {
			job.InputData = make(map[string]any, len(req.InputData))
		}
		for k, v := range req.InputData {
			job.InputData[k] = v
		}
		job.InputGroups = append(job.InputGroups, req.InputGroups...)
		job.InputHash = deltaHash
		job.Status = model.JobStatusRunning
		job.UpdatedAt = now

		statusID = job.StatusID
		return nil
	})
	if err != nil {
		if errors.Is(err, data.ErrJobNotFound) {
			return nil, apperrors.NotFoundf("job %s not found", req.JobID)
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeInternal, "provide input for job %s", req.JobID)
	}

	attestation, err := s.signer.Sign(signing.Claims{
		JobID:     req.JobID,
		StatusID:  statusID,
		Timestamp: now,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "sign attestation")
	}

	if s.logger != nil {
		s.logger.DebugContext(ctx, "input provided", "job_id", req.JobID)
	}
	metrics.EmitJobLifecycle(s.metrics, metrics.JobMetric{
		Transition: metrics.TransitionProvideInput,
		Result:     metrics.ResultSuccess,
	})

	return &model.ProvideInputResponse{
		Status:      "success",
		JobID:       req.JobID,
		InputHash:   deltaHash,
		Attestation: attestation,
	}, nil
}

// Complete marks a running job as completed and stores the analysis result.
// Rejected for jobs whose status does not allow the transition.
func (s *JobService) Complete(ctx context.Context, jobID string, result json.RawMessage) error {
	now := s.clock.Now().UTC()

	_, err := s.repo.Mutate(ctx, jobID, func(job *model.Job) error {
		if !job.Status.CanTransitionTo(model.JobStatusCompleted) {
			return apperrors.InvalidTransitionf(
				"job in status %s cannot be completed", job.Status)
		}
		job.Status = model.JobStatusCompleted
		job.Result = result
		job.LastError = nil
		job.UpdatedAt = now
		return nil
	})
	if err != nil {
		return s.mapMutateError(err, jobID, "complete")
	}

	if s.logger != nil {
		s.logger.DebugContext(ctx, "job completed", "job_id", jobID)
	}
	metrics.EmitJobLifecycle(s.metrics, metrics.JobMetric{
		Transition: metrics.TransitionComplete,
		Result:     metrics.ResultSuccess,
		Duration:   0,
	})
	return nil
}

// Fail marks a job as failed with the given error message.
func (s *JobService) Fail(ctx context.Context, jobID, errMsg string) error {
	if errMsg == "" {
		return apperrors.Validation("error message required")
	}
	now := s.clock.Now().UTC()

	_, err := s.repo.Mutate(ctx, jobID, func(job *model.Job) error {
		if !job.Status.CanTransitionTo(model.JobStatusFailed) {
			return apperrors.InvalidTransitionf(
				"job in status %s cannot be failed", job.Status)
		}
		job.Status = model.JobStatusFailed
		job.LastError = &errMsg
		job.UpdatedAt = now
		return nil
	})
	if err != nil {
		return s.mapMutateError(err, jobID, "fail")
	}

	if s.logger != nil {
		s.logger.DebugContext(ctx, "job failed", "job_id", jobID, "error", errMsg)
	}
	metrics.EmitJobLifecycle(s.metrics, metrics.JobMetric{
		Transition: metrics.TransitionFail,
		Result:     metrics.ResultSuccess,
	})
	return nil
}

// ListRunning returns up to limit jobs currently running, oldest first.
// Used by the analysis runner to pick up work.
func (s *JobService) ListRunning(ctx context.Context, limit int) ([]*model.Job, error) {
	jobs, err := s.repo.ListByStatus(ctx, model.JobStatusRunning, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "list running jobs")
	}
	return jobs, nil
}

func (s *JobService) mapMutateError(err error, jobID, op string) error {
	if errors.Is(err, data.ErrJobNotFound) {
		return apperrors.NotFoundf("job %s not found", jobID)
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrapf(err, apperrors.ErrCodeInternal, "%s job %s", op, jobID)
}
