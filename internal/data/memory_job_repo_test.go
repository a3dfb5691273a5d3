package data

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardano-insights/agent-service/internal/domain/model"
)

func newStoredJob(id string, status model.JobStatus, createdAt time.Time) *model.Job {
	return &model.Job{
		JobID:     id,
		StatusID:  id + "-status",
		Status:    status,
		InputData: map[string]any{"html_content": "<html></html>"},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestMemoryInsertAndGet(t *testing.T) {
	repo := NewMemoryJobRepo()
	ctx := context.Background()
	job := newStoredJob("job-1", model.JobStatusRunning, time.Now().UTC())

	require.NoError(t, repo.Insert(ctx, job))

	got, err := repo.GetByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, job.JobID, got.JobID)
	assert.Equal(t, job.Status, got.Status)
	assert.Equal(t, 1, repo.Len())
}

func TestMemoryInsertDuplicate(t *testing.T) {
	repo := NewMemoryJobRepo()
	ctx := context.Background()
	job := newStoredJob("job-1", model.JobStatusRunning, time.Now().UTC())

	require.NoError(t, repo.Insert(ctx, job))
	err := repo.Insert(ctx, job)
	assert.ErrorIs(t, err, ErrJobExists)
}

func TestMemoryGetNotFound(t *testing.T) {
	repo := NewMemoryJobRepo()
	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	repo := NewMemoryJobRepo()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, newStoredJob("job-1", model.JobStatusRunning, time.Now().UTC())))

	got, err := repo.GetByID(ctx, "job-1")
	require.NoError(t, err)
	got.InputData["html_content"] = "mutated"
	got.Status = model.JobStatusFailed

	again, err := repo.GetByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", again.InputData["html_content"])
	assert.Equal(t, model.JobStatusRunning, again.Status)
}

func TestMemoryMutatePersists(t *testing.T) {
	repo := NewMemoryJobRepo()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, newStoredJob("job-1", model.JobStatusRunning, time.Now().UTC())))

	updated, err := repo.Mutate(ctx, "job-1", func(job *model.Job) error {
		job.Status = model.JobStatusCompleted
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, updated.Status)

	got, err := repo.GetByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, got.Status)
}

func TestMemoryMutateErrorLeavesRecordUnmodified(t *testing.T) {
	repo := NewMemoryJobRepo()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, newStoredJob("job-1", model.JobStatusRunning, time.Now().UTC())))

	boom := errors.New("rejected")
	_, err := repo.Mutate(ctx, "job-1", func(job *model.Job) error {
		job.Status = model.JobStatusFailed
		job.InputData["poison"] = true
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := repo.GetByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusRunning, got.Status)
	assert.NotContains(t, got.InputData, "poison")
}

func TestMemoryMutateNotFound(t *testing.T) {
	repo := NewMemoryJobRepo()
	_, err := repo.Mutate(context.Background(), "nope", func(*model.Job) error { return nil })
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestMemoryListByStatusOrderAndLimit(t *testing.T) {
	repo := NewMemoryJobRepo()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Insert(ctx, newStoredJob("job-c", model.JobStatusRunning, base.Add(2*time.Minute))))
	require.NoError(t, repo.Insert(ctx, newStoredJob("job-a", model.JobStatusRunning, base)))
	require.NoError(t, repo.Insert(ctx, newStoredJob("job-b", model.JobStatusRunning, base.Add(time.Minute))))
	require.NoError(t, repo.Insert(ctx, newStoredJob("job-d", model.JobStatusCompleted, base)))

	jobs, err := repo.ListByStatus(ctx, model.JobStatusRunning, 2)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "job-a", jobs[0].JobID)
	assert.Equal(t, "job-b", jobs[1].JobID)

	all, err := repo.ListByStatus(ctx, model.JobStatusRunning, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryDeleteTerminalBefore(t *testing.T) {
	repo := NewMemoryJobRepo()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cutoff := base.Add(time.Hour)

	require.NoError(t, repo.Insert(ctx, newStoredJob("old-completed", model.JobStatusCompleted, base)))
	require.NoError(t, repo.Insert(ctx, newStoredJob("old-failed", model.JobStatusFailed, base)))
	require.NoError(t, repo.Insert(ctx, newStoredJob("old-running", model.JobStatusRunning, base)))
	require.NoError(t, repo.Insert(ctx, newStoredJob("fresh-completed", model.JobStatusCompleted, cutoff.Add(time.Minute))))

	removed, err := repo.DeleteTerminalBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = repo.GetByID(ctx, "old-completed")
	assert.ErrorIs(t, err, ErrJobNotFound)
	_, err = repo.GetByID(ctx, "old-running")
	assert.NoError(t, err)
	_, err = repo.GetByID(ctx, "fresh-completed")
	assert.NoError(t, err)
}

func TestMemoryPing(t *testing.T) {
	assert.NoError(t, NewMemoryJobRepo().Ping(context.Background()))
}

func TestMemoryConcurrentMutations(t *testing.T) {
	repo := NewMemoryJobRepo()
	ctx := context.Background()
	job := newStoredJob("job-1", model.JobStatusRunning, time.Now().UTC())
	job.InputData = map[string]any{}
	require.NoError(t, repo.Insert(ctx, job))

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				key := fmt.Sprintf("w%d-%d", w, i)
				_, err := repo.Mutate(ctx, "job-1", func(j *model.Job) error {
					j.InputData[key] = true
					return nil
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, "job-1")
	require.NoError(t, err)
	assert.Len(t, got.InputData, workers*perWorker)
}
