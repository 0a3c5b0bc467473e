package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/ledgerviews/internal/domain"
)

// Metrics receives the pipeline's counters. Implemented by the prometheus
// metrics registry; a NopMetrics is provided for tests and one-shot CLI runs.
type Metrics interface {
	EntryProcessed()
	EntrySkipped()
	RowEmitted(stream string)
	WarningIssued()
	JobFinished(status string, seconds float64)
}

// NopMetrics discards all counters.
type NopMetrics struct{}

func (NopMetrics) EntryProcessed()             {}
func (NopMetrics) EntrySkipped()               {}
func (NopMetrics) RowEmitted(string)           {}
func (NopMetrics) WarningIssued()              {}
func (NopMetrics) JobFinished(string, float64) {}

// JobParams identifies one taxpayer/period aggregation job.
type JobParams struct {
	TaxpayerID string
	Period     int
	FiscalYear int
}

// JobResult summarizes a completed job.
type JobResult struct {
	JobID    string           `json:"job_id"`
	Entries  int64            `json:"entries"`
	Skipped  int64            `json:"skipped"`
	Rows     map[string]int64 `json:"rows"`
	Warnings int64            `json:"warnings"`
	Duration time.Duration    `json:"duration"`
}

// PipelineConfig carries the collaborators shared by every job.
type PipelineConfig struct {
	Sink     RowSink
	Warner   Warner
	Accounts AccountLookup
	Parties  PartyLookup
	Opening  OpeningBalanceLookup
	Taxonomy *domain.Taxonomy
	Locker   JobLocker
	IDs      IDGenerator
	Metrics  Metrics
	Logger   zerolog.Logger
}

// Pipeline drives one aggregation job: it streams the sorted ledger entries
// through the four aggregators, then finishes each of them. All per-job state
// lives in the aggregators, so one Pipeline can run unrelated jobs in
// parallel; runs of the same taxpayer/period are serialized by the job lock.
type Pipeline struct {
	cfg PipelineConfig
}

// NewPipeline creates a pipeline from shared collaborators.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Metrics == nil {
		cfg.Metrics = NopMetrics{}
	}
	return &Pipeline{cfg: cfg}
}

// Run executes one job to completion. Previously published rows for the
// taxpayer/period are deleted first, so re-running the same sorted input
// reproduces an identical row set. On a fatal error the job's rows are
// deleted again: partial output is never left behind.
func (p *Pipeline) Run(ctx context.Context, params JobParams, stream EntryStream) (*JobResult, error) {
	start := time.Now()
	jobID := p.cfg.IDs.Generate()
	logger := p.cfg.Logger.With().
		Str("job_id", jobID).
		Str("taxpayer_id", params.TaxpayerID).
		Int("period", params.Period).
		Logger()

	release, err := p.cfg.Locker.Acquire(ctx, params.TaxpayerID, params.Period)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(ctx); err != nil {
			logger.Error().Err(err).Msg("failed to release job lock")
		}
	}()

	result := &JobResult{JobID: jobID, Rows: make(map[string]int64)}
	sink := &countingSink{next: p.cfg.Sink, metrics: p.cfg.Metrics, result: result}
	warner := &countingWarner{next: p.cfg.Warner, metrics: p.cfg.Metrics, result: result}

	if err := p.cfg.Sink.DeleteJob(ctx, params.TaxpayerID, params.Period); err != nil {
		return nil, fmt.Errorf("clear previous rows: %w", err)
	}

	balance := NewBalanceSheetAggregator(
		sink, warner,
		domain.NewRowKey(params.TaxpayerID, params.Period),
		p.cfg.Accounts, p.cfg.Opening, p.cfg.Taxonomy,
	)
	aggregators := []Aggregator{
		NewFlowAggregator(sink, warner, domain.NewRowKey(params.TaxpayerID, params.Period)),
		balance,
		NewIncomeStatementAggregator(
			sink,
			domain.NewRowKey(params.TaxpayerID, params.Period),
			p.cfg.Accounts, p.cfg.Taxonomy, params.FiscalYear,
		),
		NewCounterpartyAggregator(
			sink,
			domain.NewRowKey(params.TaxpayerID, params.Period),
			p.cfg.Accounts, p.cfg.Parties, p.cfg.Taxonomy,
		),
	}

	run := func() error {
		if err := balance.Seed(ctx); err != nil {
			return err
		}

		for {
			entry, err := stream.Next(ctx)
			if err != nil {
				return fmt.Errorf("read entry stream: %w", err)
			}
			if entry == nil {
				break
			}

			if entry.Skippable() {
				result.Skipped++
				p.cfg.Metrics.EntrySkipped()
				continue
			}
			result.Entries++
			p.cfg.Metrics.EntryProcessed()

			for _, agg := range aggregators {
				if err := agg.Observe(ctx, entry); err != nil {
					return err
				}
			}
		}

		for _, agg := range aggregators {
			if err := agg.Finish(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	if err := run(); err != nil {
		logger.Error().Err(err).Msg("job aborted")
		if delErr := p.cfg.Sink.DeleteJob(ctx, params.TaxpayerID, params.Period); delErr != nil {
			logger.Error().Err(delErr).Msg("failed to roll back published rows")
		}
		p.cfg.Metrics.JobFinished("error", time.Since(start).Seconds())
		return nil, err
	}

	result.Duration = time.Since(start)
	p.cfg.Metrics.JobFinished("ok", result.Duration.Seconds())
	logger.Info().
		Int64("entries", result.Entries).
		Int64("skipped", result.Skipped).
		Int64("warnings", result.Warnings).
		Dur("duration", result.Duration).
		Msg("job completed")

	return result, nil
}

// countingSink forwards rows while tracking per-stream counts.
type countingSink struct {
	next    RowSink
	metrics Metrics
	result  *JobResult
}

func (s *countingSink) Emit(ctx context.Context, stream, rowID string, row any) error {
	if err := s.next.Emit(ctx, stream, rowID, row); err != nil {
		return err
	}
	s.result.Rows[stream]++
	s.metrics.RowEmitted(stream)
	return nil
}

func (s *countingSink) DeleteJob(ctx context.Context, taxpayerID string, period int) error {
	return s.next.DeleteJob(ctx, taxpayerID, period)
}

// countingWarner forwards advisories while tracking their count.
type countingWarner struct {
	next    Warner
	metrics Metrics
	result  *JobResult
}

func (w *countingWarner) Warn(msg string, fields map[string]any) {
	w.result.Warnings++
	w.metrics.WarningIssued()
	w.next.Warn(msg, fields)
}
