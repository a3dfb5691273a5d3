package data

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cardano-insights/agent-service/internal/domain/model"
)

// MemoryJobRepo is an in-memory job registry guarded by a single lock, so
// create/read/mutate operations are linearizable per job_id. It is the default
// registry backend for single-instance deployments; process restart loses all
// jobs.
type MemoryJobRepo struct {
	mu   sync.RWMutex
	jobs map[string]*model.Job
}

// NewMemoryJobRepo creates an empty in-memory job registry.
func NewMemoryJobRepo() *MemoryJobRepo {
	return &MemoryJobRepo{
		jobs: make(map[string]*model.Job),
	}
}

// Insert stores a new job, failing with ErrJobExists on a duplicate job_id.
func (r *MemoryJobRepo) Insert(_ context.Context, job *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[job.JobID]; ok {
		return ErrJobExists
	}
	r.jobs[job.JobID] = job.Clone()
	return nil
}

// GetByID returns a copy of the stored job, or ErrJobNotFound.
func (r *MemoryJobRepo) GetByID(_ context.Context, jobID string) (*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job.Clone(), nil
}

// Mutate applies fn to a copy of the stored job under the registry lock and
// persists the result. An error from fn aborts the mutation and leaves the
// stored record unmodified.
func (r *MemoryJobRepo) Mutate(
	_ context.Context,
	jobID string,
	fn func(job *model.Job) error,
) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}

	working := stored.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	r.jobs[jobID] = working
	return working.Clone(), nil
}

// ListByStatus returns up to limit jobs in the given status, oldest first.
func (r *MemoryJobRepo) ListByStatus(
	_ context.Context,
	status model.JobStatus,
	limit int,
) ([]*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*model.Job, 0)
	for _, job := range r.jobs {
		if job.Status == status {
			matched = append(matched, job)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]*model.Job, len(matched))
	for i, job := range matched {
		out[i] = job.Clone()
	}
	return out, nil
}

// DeleteTerminalBefore removes completed and failed jobs last updated before
// cutoff, returning the number removed.
func (r *MemoryJobRepo) DeleteTerminalBefore(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, job := range r.jobs {
		if job.Status.Terminal() && job.UpdatedAt.Before(cutoff) {
			delete(r.jobs, id)
			removed++
		}
	}
	return removed, nil
}

// Ping always succeeds for the in-memory registry.
func (r *MemoryJobRepo) Ping(_ context.Context) error {
	return nil
}

// Len returns the number of stored jobs. Used by availability reporting and tests.
func (r *MemoryJobRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
