package runner

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardano-insights/agent-service/config"
	"github.com/cardano-insights/agent-service/internal/adapters/analyzer"
	"github.com/cardano-insights/agent-service/internal/data"
	"github.com/cardano-insights/agent-service/internal/domain/model"
	"github.com/cardano-insights/agent-service/internal/idgen"
	"github.com/cardano-insights/agent-service/internal/service"
	"github.com/cardano-insights/agent-service/internal/signing"
	"github.com/cardano-insights/agent-service/internal/testutil"
)

func newRunnerFixture(t *testing.T, backend analyzer.Analyzer) (*Runner, *service.JobService, *data.MemoryJobRepo) {
	t.Helper()
	repo := data.NewMemoryJobRepo()
	jobs := service.MustNewJobService(service.JobServiceOptions{
		Repo:   repo,
		IDs:    &idgen.SequentialGenerator{},
		Signer: &signing.StaticSigner{Signature: "sig"},
		Logger: testutil.NewTestLogger(),
	})

	r, err := New(Options{
		Jobs:     jobs,
		Analyzer: backend,
		Config: config.RunnerConfig{
			Interval:       time.Millisecond,
			BatchSize:      10,
			RequestTimeout: time.Second,
		},
		Logger: testutil.NewTestLogger(),
	})
	require.NoError(t, err)
	return r, jobs, repo
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)

	_, err = New(Options{Analyzer: &analyzer.StaticAnalyzer{}})
	require.Error(t, err)
}

func TestTickCompletesRunningJobs(t *testing.T) {
	result := json.RawMessage(`{"keyInsights":["fees trending up"],"alerts":[],"suggestions":[]}`)
	r, jobs, repo := newRunnerFixture(t, &analyzer.StaticAnalyzer{Result: result})
	ctx := context.Background()

	created, err := jobs.StartJob(ctx, testutil.NewStartJobRequest().Build())
	require.NoError(t, err)

	require.NoError(t, r.tick(ctx))

	stored, err := repo.GetByID(ctx, created.JobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, stored.Status)
	assert.JSONEq(t, string(result), string(stored.Result))
}

func TestTickFailsJobOnAnalyzerError(t *testing.T) {
	r, jobs, repo := newRunnerFixture(t, &analyzer.StaticAnalyzer{Err: errors.New("backend unreachable")})
	ctx := context.Background()

	created, err := jobs.StartJob(ctx, testutil.NewStartJobRequest().Build())
	require.NoError(t, err)

	require.NoError(t, r.tick(ctx))

	stored, err := repo.GetByID(ctx, created.JobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, stored.Status)
	require.NotNil(t, stored.LastError)
	assert.Contains(t, *stored.LastError, "backend unreachable")
}

func TestTickProcessesBatch(t *testing.T) {
	r, jobs, repo := newRunnerFixture(t, &analyzer.StaticAnalyzer{Result: json.RawMessage(`{}`)})
	ctx := context.Background()

	for range 5 {
		_, err := jobs.StartJob(ctx, testutil.NewStartJobRequest().Build())
		require.NoError(t, err)
	}

	require.NoError(t, r.tick(ctx))

	remaining, err := jobs.ListRunning(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, remaining)
	assert.Equal(t, 5, repo.Len())
}

func TestTickNoRunningJobsIsNoop(t *testing.T) {
	r, _, _ := newRunnerFixture(t, &analyzer.StaticAnalyzer{Result: json.RawMessage(`{}`)})
	require.NoError(t, r.tick(context.Background()))
}

func TestRunStopsOnCancel(t *testing.T) {
	r, _, _ := newRunnerFixture(t, &analyzer.StaticAnalyzer{Result: json.RawMessage(`{}`)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after context cancellation")
	}
}
