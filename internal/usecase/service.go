package usecase

import (
	"context"
	"fmt"
)

// EntryStreamOpener opens the sorted entry stream of one job.
type EntryStreamOpener interface {
	Open(ctx context.Context, taxpayerID string, period int) (EntryStream, error)
}

// JobService couples the pipeline with the entry source, so transports only
// need job parameters to trigger a run.
type JobService struct {
	pipeline *Pipeline
	streams  EntryStreamOpener
}

// NewJobService creates a new JobService.
func NewJobService(pipeline *Pipeline, streams EntryStreamOpener) *JobService {
	return &JobService{pipeline: pipeline, streams: streams}
}

// RunJob opens the job's entry stream and runs it through the pipeline.
func (s *JobService) RunJob(ctx context.Context, params JobParams) (*JobResult, error) {
	stream, err := s.streams.Open(ctx, params.TaxpayerID, params.Period)
	if err != nil {
		return nil, fmt.Errorf("open entry stream: %w", err)
	}
	defer stream.Close(ctx)

	return s.pipeline.Run(ctx, params, stream)
}
