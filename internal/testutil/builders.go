// Package testutil provides testing utilities and helpers for the agent job registry.
package testutil

import (
	"encoding/json"
	"time"

	"github.com/cardano-insights/agent-service/internal/domain/model"
)

// StartJobRequestBuilder provides a fluent interface for building
// StartJobRequest objects for testing.
type StartJobRequestBuilder struct {
	req *model.StartJobRequest
}

// NewStartJobRequest creates a builder with a representative analysis payload.
func NewStartJobRequest() *StartJobRequestBuilder {
	return &StartJobRequestBuilder{
		req: &model.StartJobRequest{
			IdentifierFromPurchaser: "purchaser-1",
			InputData: map[string]any{
				"html_content":  "<html><body>Q3 spending summary for wallet addr1...</body></html>",
				"analysis_type": model.AnalysisTypeSpending,
			},
		},
	}
}

// WithIdentifier sets the purchaser identifier.
func (b *StartJobRequestBuilder) WithIdentifier(id string) *StartJobRequestBuilder {
	b.req.IdentifierFromPurchaser = id
	return b
}

// WithInputData replaces the input data map.
func (b *StartJobRequestBuilder) WithInputData(data map[string]any) *StartJobRequestBuilder {
	b.req.InputData = data
	return b
}

// WithInputField sets a single input data field.
func (b *StartJobRequestBuilder) WithInputField(key string, value any) *StartJobRequestBuilder {
	if b.req.InputData == nil {
		b.req.InputData = map[string]any{}
	}
	b.req.InputData[key] = value
	return b
}

// Build returns the constructed request.
func (b *StartJobRequestBuilder) Build() *model.StartJobRequest {
	return b.req
}

// JobBuilder provides a fluent interface for building stored Job records.
type JobBuilder struct {
	job *model.Job
}

// NewJob creates a builder for a job in awaiting_payment with fixed identifiers.
func NewJob() *JobBuilder {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &JobBuilder{
		job: &model.Job{
			JobID:                   "job-1",
			StatusID:                "status-1",
			Status:                  model.JobStatusAwaitingPayment,
			IdentifierFromPurchaser: "purchaser-1",
			InputData: map[string]any{
				"html_content":  "<html><body>report</body></html>",
				"analysis_type": model.AnalysisTypeSpending,
			},
			InputHash:            "deadbeef",
			BlockchainIdentifier: "chain-1",
			Deadlines: model.Deadlines{
				PayBy:           now.Add(1 * time.Hour),
				SubmitResultBy:  now.Add(2 * time.Hour),
				UnlockAt:        now.Add(3 * time.Hour),
				DisputeUnlockAt: now.Add(4 * time.Hour),
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// WithID sets the job identifier.
func (b *JobBuilder) WithID(id string) *JobBuilder {
	b.job.JobID = id
	return b
}

// WithStatusID sets the status identifier.
func (b *JobBuilder) WithStatusID(id string) *JobBuilder {
	b.job.StatusID = id
	return b
}

// WithStatus sets the lifecycle status.
func (b *JobBuilder) WithStatus(status model.JobStatus) *JobBuilder {
	b.job.Status = status
	return b
}

// WithResult sets the analysis result document.
func (b *JobBuilder) WithResult(result string) *JobBuilder {
	b.job.Result = json.RawMessage(result)
	return b
}

// WithTimestamps sets created and updated times to t.
func (b *JobBuilder) WithTimestamps(t time.Time) *JobBuilder {
	b.job.CreatedAt = t
	b.job.UpdatedAt = t
	return b
}

// WithUpdatedAt sets only the updated time.
func (b *JobBuilder) WithUpdatedAt(t time.Time) *JobBuilder {
	b.job.UpdatedAt = t
	return b
}

// Build returns the constructed job.
func (b *JobBuilder) Build() *model.Job {
	return b.job
}
