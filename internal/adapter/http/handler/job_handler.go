package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/ledgerviews/internal/adapter/http/dto"
	"github.com/iho/ledgerviews/internal/usecase"
)

// JobService defines the behavior needed by JobHandler.
type JobService interface {
	RunJob(ctx context.Context, params usecase.JobParams) (*usecase.JobResult, error)
}

// JobHandler handles aggregation job requests.
type JobHandler struct {
	jobs JobService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobs JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// Run runs one taxpayer/period aggregation job synchronously and reports the
// per-stream row counts.
func (h *JobHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req dto.RunJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid job parameters", err.Error())
		return
	}

	result, err := h.jobs.RunJob(r.Context(), req.ToJobParams())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "job failed", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.JobResponseFrom(result))
}
