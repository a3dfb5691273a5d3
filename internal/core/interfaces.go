package core

import (
	"context"
	"time"

	"github.com/cardano-insights/agent-service/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// Service implementations should depend on these interfaces, not concrete implementations.

// JobRepository defines the interface for job registry operations.
//
// Implementations must make Insert, GetByID, and Mutate linearizable per
// job_id: concurrent mutations of the same record may not interleave.
type JobRepository interface {
	// Insert stores a new job. Fails with data.ErrJobExists when the job_id is taken.
	Insert(ctx context.Context, job *model.Job) error
	// GetByID returns a copy of the job, or data.ErrJobNotFound.
	GetByID(ctx context.Context, jobID string) (*model.Job, error)
	// Mutate applies fn to the stored job under the registry's per-job
	// exclusion discipline and persists the outcome. An error from fn aborts
	// the mutation and leaves the stored record unmodified.
	Mutate(ctx context.Context, jobID string, fn func(job *model.Job) error) (*model.Job, error)
	// ListByStatus returns up to limit jobs currently in the given status,
	// oldest first.
	ListByStatus(ctx context.Context, status model.JobStatus, limit int) ([]*model.Job, error)
	// DeleteTerminalBefore removes completed and failed jobs last updated
	// before cutoff, returning the number removed.
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int, error)
	// Ping reports whether the registry backend is reachable.
	Ping(ctx context.Context) error
}
