// Package model defines the core data types and structures used throughout the agent job system.
package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/cardano-insights/agent-service/internal/apperrors"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusAwaitingPayment indicates a job is waiting for on-chain payment confirmation.
	JobStatusAwaitingPayment JobStatus = "awaiting_payment"
	// JobStatusAwaitingInput indicates a job is waiting for additional purchaser input.
	JobStatusAwaitingInput JobStatus = "awaiting_input"
	// JobStatusRunning indicates a job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates a job has finished successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates a job has failed to complete.
	JobStatusFailed JobStatus = "failed"
)

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusAwaitingPayment, JobStatusAwaitingInput, JobStatusRunning,
		JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// Terminal returns true if the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// transitions is the explicit status transition table. Completed and failed
// are terminal and deliberately absent.
var transitions = map[JobStatus][]JobStatus{
	JobStatusAwaitingPayment: {JobStatusRunning, JobStatusFailed},
	JobStatusRunning:         {JobStatusAwaitingInput, JobStatusCompleted, JobStatusFailed},
	JobStatusAwaitingInput:   {JobStatusRunning},
}

// CanTransitionTo reports whether the transition table allows moving from s to next.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InputGroup is one grouped-input object supplied via provide_input.
// Groups are appended in order and never removed.
type InputGroup map[string]any

// Deadlines holds the advisory payment-coordination timestamps attached at
// job creation. They are returned to callers and never enforced by this service.
type Deadlines struct {
	PayBy           time.Time `json:"payByTime"`
	SubmitResultBy  time.Time `json:"submitResultTime"`
	UnlockAt        time.Time `json:"unlockTime"`
	DisputeUnlockAt time.Time `json:"externalDisputeUnlockTime"`
}

// Job represents one analysis request tracked by the registry.
type Job struct {
	JobID                   string          `json:"job_id"`
	StatusID                string          `json:"status_id"`
	Status                  JobStatus       `json:"status"`
	InputData               map[string]any  `json:"input_data"`
	InputGroups             []InputGroup    `json:"input_groups,omitempty"`
	IdentifierFromPurchaser string          `json:"identifierFromPurchaser"`
	InputHash               string          `json:"input_hash"`
	BlockchainIdentifier    string          `json:"blockchainIdentifier"`
	Deadlines               Deadlines       `json:"deadlines"`
	Result                  json.RawMessage `json:"result,omitempty"`
	LastError               *string         `json:"last_error,omitempty"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// Clone returns a deep copy of the job so callers cannot mutate registry state
// through shared maps or slices.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	cp := *j
	if j.InputData != nil {
		cp.InputData = make(map[string]any, len(j.InputData))
		for k, v := range j.InputData {
			cp.InputData[k] = v
		}
	}
	if j.InputGroups != nil {
		cp.InputGroups = make([]InputGroup, len(j.InputGroups))
		for i, g := range j.InputGroups {
			grp := make(InputGroup, len(g))
			for k, v := range g {
				grp[k] = v
			}
			cp.InputGroups[i] = grp
		}
	}
	if j.Result != nil {
		cp.Result = append(json.RawMessage(nil), j.Result...)
	}
	if j.LastError != nil {
		le := *j.LastError
		cp.LastError = &le
	}
	return &cp
}

// StartJobRequest represents a MIP-003 start_job request body.
type StartJobRequest struct {
	IdentifierFromPurchaser string         `json:"identifier_from_purchaser"`
	InputData               map[string]any `json:"input_data"`
}

// Validate validates the StartJobRequest fields.
func (r *StartJobRequest) Validate() error {
	if strings.TrimSpace(r.IdentifierFromPurchaser) == "" {
		return apperrors.ValidationField("identifier_from_purchaser", "identifier_from_purchaser is required")
	}
	if len(r.InputData) == 0 {
		return apperrors.ValidationField("input_data", "input_data is required")
	}
	return nil
}

// StartJobResponse is the descriptor returned from a successful start_job call.
type StartJobResponse struct {
	Status                  string    `json:"status"`
	JobID                   string    `json:"job_id"`
	StatusID                string    `json:"status_id"`
	BlockchainIdentifier    string    `json:"blockchainIdentifier"`
	PayBy                   time.Time `json:"payByTime"`
	SubmitResultBy          time.Time `json:"submitResultTime"`
	UnlockAt                time.Time `json:"unlockTime"`
	DisputeUnlockAt         time.Time `json:"externalDisputeUnlockTime"`
	AgentIdentifier         string    `json:"agentIdentifier"`
	SellerVKey              string    `json:"sellerVKey"`
	IdentifierFromPurchaser string    `json:"identifierFromPurchaser"`
	InputHash               string    `json:"input_hash"`
}

// StatusResponse is the projection of a job exposed to status-polling callers.
// Result is present only once the job completed; InputSchema is present only
// while the job is awaiting additional input.
type StatusResponse struct {
	JobID       string          `json:"job_id"`
	StatusID    string          `json:"status_id"`
	Status      JobStatus       `json:"status"`
	Result      json.RawMessage `json:"result,omitempty"`
	InputSchema []InputField    `json:"input_data,omitempty"`
}

// ProvideInputRequest represents a MIP-003 provide_input request body.
type ProvideInputRequest struct {
	JobID       string         `json:"job_id"`
	StatusID    string         `json:"status_id"`
	InputData   map[string]any `json:"input_data,omitempty"`
	InputGroups []InputGroup   `json:"input_groups,omitempty"`
}

// Validate validates the ProvideInputRequest fields.
func (r *ProvideInputRequest) Validate() error {
	if strings.TrimSpace(r.JobID) == "" {
		return apperrors.ValidationField("job_id", "job_id is required")
	}
	if strings.TrimSpace(r.StatusID) == "" {
		return apperrors.ValidationField("status_id", "status_id is required")
	}
	return nil
}

// Attestation is the signed acknowledgement returned from provide_input.
// The signature covers the canonical encoding of {job_id, status_id, timestamp}.
type Attestation struct {
	Signature string    `json:"signature"`
	PublicKey string    `json:"public_key,omitempty"`
	Algorithm string    `json:"algorithm"`
	SignedAt  time.Time `json:"signed_at"`
}

// ProvideInputResponse is returned from a successful provide_input call.
type ProvideInputResponse struct {
	Status      string      `json:"status"`
	JobID       string      `json:"job_id"`
	InputHash   string      `json:"input_hash"`
	Attestation Attestation `json:"attestation"`
}

// AvailabilityResponse is the readiness descriptor returned from availability.
type AvailabilityResponse struct {
	Status          string `json:"status"`
	AgentIdentifier string `json:"agentIdentifier"`
	Message         string `json:"message"`
}

// Availability status values.
const (
	AvailabilityAvailable   = "available"
	AvailabilityUnavailable = "unavailable"
)
