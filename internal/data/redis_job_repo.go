package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cardano-insights/agent-service/internal/domain/model"
)

const (
	defaultJobKeyPrefix = "agent:jobs:"
	scanBatchSize       = 100
	maxMutateRetries    = 5
)

// RedisJobRepo implements the job registry on Redis so job records survive
// process restarts and can be shared across instances. Records are stored as
// JSON values; per-job mutations use optimistic WATCH/MULTI transactions.
type RedisJobRepo struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// RedisJobRepoConfig holds configuration options for the Redis job registry.
type RedisJobRepoConfig struct {
	// KeyPrefix namespaces job keys. Defaults to "agent:jobs:".
	KeyPrefix string
	// TTL bounds record lifetime. Zero means records never expire.
	TTL time.Duration
}

// NewRedisJobRepo creates a new RedisJobRepo with the given Redis client.
func NewRedisJobRepo(client redis.UniversalClient, cfg RedisJobRepoConfig) *RedisJobRepo {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultJobKeyPrefix
	}
	return &RedisJobRepo{
		client: client,
		prefix: prefix,
		ttl:    cfg.TTL,
	}
}

func (r *RedisJobRepo) key(jobID string) string {
	return r.prefix + jobID
}

// Insert stores a new job, failing with ErrJobExists on a duplicate job_id.
func (r *RedisJobRepo) Insert(ctx context.Context, job *model.Job) error {
	buf, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.JobID, err)
	}

	ok, err := r.client.SetNX(ctx, r.key(job.JobID), buf, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx job %s: %w", job.JobID, err)
	}
	if !ok {
		return ErrJobExists
	}
	return nil
}

// GetByID returns the stored job, or ErrJobNotFound.
func (r *RedisJobRepo) GetByID(ctx context.Context, jobID string) (*model.Job, error) {
	raw, err := r.client.Get(ctx, r.key(jobID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("redis get job %s: %w", jobID, err)
	}

	var job model.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", jobID, err)
	}
	return &job, nil
}

// Mutate applies fn to the stored job inside a WATCH/MULTI transaction and
// retries on write conflicts, so concurrent mutations of the same job do not
// interleave. An error from fn aborts the transaction and leaves the stored
// record unmodified.
func (r *RedisJobRepo) Mutate(
	ctx context.Context,
	jobID string,
	fn func(job *model.Job) error,
) (*model.Job, error) {
	key := r.key(jobID)

	var mutated *model.Job
	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrJobNotFound
			}
			return fmt.Errorf("redis get job %s: %w", jobID, err)
		}

		var job model.Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			return fmt.Errorf("decode job %s: %w", jobID, err)
		}

		if err := fn(&job); err != nil {
			return err
		}

		buf, err := json.Marshal(&job)
		if err != nil {
			return fmt.Errorf("encode job %s: %w", jobID, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, buf, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		mutated = &job
		return nil
	}

	for attempt := 0; attempt < maxMutateRetries; attempt++ {
		err := r.client.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return mutated, nil
	}
	return nil, fmt.Errorf("mutate job %s: %w", jobID, redis.TxFailedErr)
}

// ListByStatus scans the job keyspace and returns up to limit jobs in the
// given status, oldest first. The scan is linear in registry size, which is
// acceptable for the registry volumes this agent tracks.
func (r *RedisJobRepo) ListByStatus(
	ctx context.Context,
	status model.JobStatus,
	limit int,
) ([]*model.Job, error) {
	matched := make([]*model.Job, 0)

	iter := r.client.Scan(ctx, 0, r.prefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		raw, err := r.client.Get(ctx, iter.Val()).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// Key expired between scan and get.
				continue
			}
			return nil, fmt.Errorf("redis get %s: %w", iter.Val(), err)
		}

		var job model.Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			return nil, fmt.Errorf("decode %s: %w", iter.Val(), err)
		}
		if job.Status == status {
			matched = append(matched, &job)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan jobs: %w", err)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// DeleteTerminalBefore removes completed and failed jobs last updated before
// cutoff, returning the number removed.
func (r *RedisJobRepo) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int, error) {
	removed := 0

	iter := r.client.Scan(ctx, 0, r.prefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		raw, err := r.client.Get(ctx, iter.Val()).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return removed, fmt.Errorf("redis get %s: %w", iter.Val(), err)
		}

		var job model.Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			return removed, fmt.Errorf("decode %s: %w", iter.Val(), err)
		}
		if !job.Status.Terminal() || !job.UpdatedAt.Before(cutoff) {
			continue
		}

		n, err := r.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return removed, fmt.Errorf("redis del %s: %w", iter.Val(), err)
		}
		removed += int(n)
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("redis scan jobs: %w", err)
	}
	return removed, nil
}

// Ping reports whether the Redis backend is reachable.
func (r *RedisJobRepo) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
