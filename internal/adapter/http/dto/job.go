package dto

import (
	"fmt"

	"github.com/iho/ledgerviews/internal/usecase"
)

// RunJobRequest asks the engine to aggregate one taxpayer's period.
type RunJobRequest struct {
	TaxpayerID string `json:"taxpayer_id"`
	Period     int    `json:"period"`
	FiscalYear int    `json:"fiscal_year,omitempty"`
}

// Validate rejects requests the pipeline could not act on.
func (r *RunJobRequest) Validate() error {
	if r.TaxpayerID == "" {
		return fmt.Errorf("taxpayer_id is required")
	}
	if r.Period <= 0 {
		return fmt.Errorf("period must be positive, got %d", r.Period)
	}
	if r.FiscalYear < 0 {
		return fmt.Errorf("fiscal_year must not be negative, got %d", r.FiscalYear)
	}
	return nil
}

// ToJobParams converts to pipeline parameters.
func (r *RunJobRequest) ToJobParams() usecase.JobParams {
	return usecase.JobParams{
		TaxpayerID: r.TaxpayerID,
		Period:     r.Period,
		FiscalYear: r.FiscalYear,
	}
}

// JobResponse reports a completed run.
type JobResponse struct {
	JobID      string           `json:"job_id"`
	Entries    int64            `json:"entries"`
	Skipped    int64            `json:"skipped"`
	Rows       map[string]int64 `json:"rows"`
	Warnings   int64            `json:"warnings"`
	DurationMS int64            `json:"duration_ms"`
}

// JobResponseFrom converts a pipeline result to a response.
func JobResponseFrom(result *usecase.JobResult) *JobResponse {
	return &JobResponse{
		JobID:      result.JobID,
		Entries:    result.Entries,
		Skipped:    result.Skipped,
		Rows:       result.Rows,
		Warnings:   result.Warnings,
		DurationMS: result.Duration.Milliseconds(),
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
