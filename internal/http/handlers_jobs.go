// Package httpx provides HTTP handlers and utilities for the agent job API.
package httpx

import (
	"errors"
	"net/http"

	"github.com/cardano-insights/agent-service/internal/domain/model"
	"github.com/cardano-insights/agent-service/internal/service"
)

// JobHandlers provides HTTP handlers for job lifecycle operations.
type JobHandlers struct {
	Svc *service.JobService
}

// StartJob handles HTTP requests to register a new analysis job.
func (h *JobHandlers) StartJob(w http.ResponseWriter, r *http.Request) {
	var req model.StartJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	resp, err := h.Svc.StartJob(r.Context(), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, resp)
}

// GetStatus handles HTTP requests to look up the current state of a job.
func (h *JobHandlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("job_id")
	if jobID == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "validation",
			Err:     errors.New("job_id query parameter is required"),
		})
		return
	}

	resp, err := h.Svc.GetStatus(r.Context(), jobID)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, resp)
}

// ProvideInput handles HTTP requests to submit additional input for a job.
func (h *JobHandlers) ProvideInput(w http.ResponseWriter, r *http.Request) {
	var req model.ProvideInputRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	resp, err := h.Svc.ProvideInput(r.Context(), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, resp)
}
