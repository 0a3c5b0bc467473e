package usecase

import (
	"context"

	"github.com/iho/ledgerviews/internal/domain"
)

// Output stream names, one per derived view.
const (
	StreamDailyFlows   = "daily-flows"
	StreamBalanceSheet = "monthly-balance-sheet"
	StreamIncome       = "statement-of-income"
	StreamCounterparty = "counterparty-monthly"
)

// AccountLookup resolves chart-of-accounts records. A miss returns (nil, nil).
type AccountLookup interface {
	GetByCode(ctx context.Context, code string) (*domain.AccountRecord, error)
}

// PartyLookup resolves customer/supplier registry records. A miss returns (nil, nil).
type PartyLookup interface {
	GetByID(ctx context.Context, id string) (*domain.PartyRecord, error)
}

// OpeningBalanceLookup resolves declared opening balances. A miss returns (nil, nil).
type OpeningBalanceLookup interface {
	GetByAccount(ctx context.Context, code string) (*domain.OpeningBalance, error)
	// Codes lists every account with a declared opening balance, used to seed
	// the tracked account universe before the first entry.
	Codes(ctx context.Context) ([]string, error)
}

// RowSink receives the engine's output rows. Emit failures are fatal to the job.
type RowSink interface {
	Emit(ctx context.Context, stream, rowID string, row any) error
	// DeleteJob removes every row previously published for a taxpayer/period,
	// enabling idempotent re-runs.
	DeleteJob(ctx context.Context, taxpayerID string, period int) error
}

// Warner receives non-fatal advisories (unbalanced day, missing opening
// balance). The orchestrator decides whether warnings escalate a document.
type Warner interface {
	Warn(msg string, fields map[string]any)
}

// EntryStream iterates a job's ledger entries sorted by (date, entry id).
// Next returns (nil, nil) after the last entry.
type EntryStream interface {
	Next(ctx context.Context) (*domain.LedgerEntry, error)
	Close(ctx context.Context) error
}

// JobLocker serializes runs of the same taxpayer/period job.
type JobLocker interface {
	// Acquire takes the job lock and returns a release function, or
	// domain.ErrJobLocked if another run holds it.
	Acquire(ctx context.Context, taxpayerID string, period int) (release func(context.Context) error, err error)
}

// IDGenerator generates unique job-run ids.
type IDGenerator interface {
	Generate() string
}

// Aggregator is the common lifecycle of the four view builders: Observe once
// per entry in stream order, then Finish exactly once.
type Aggregator interface {
	Observe(ctx context.Context, entry *domain.LedgerEntry) error
	Finish(ctx context.Context) error
}
