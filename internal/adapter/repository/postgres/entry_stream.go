package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerviews/internal/domain"
	"github.com/iho/ledgerviews/internal/usecase"
)

// EntryStreamFactory opens forward-only cursors over the ledger_entries table.
type EntryStreamFactory struct {
	pool *pgxpool.Pool
}

// NewEntryStreamFactory creates a new EntryStreamFactory.
func NewEntryStreamFactory(pool *pgxpool.Pool) *EntryStreamFactory {
	return &EntryStreamFactory{pool: pool}
}

// Open starts a stream over all entries of a taxpayer's period ordered by
// entry date. Callers must Close the returned stream.
func (f *EntryStreamFactory) Open(ctx context.Context, taxpayerID string, period int) (usecase.EntryStream, error) {
	rows, err := f.pool.Query(ctx,
		`SELECT id, entry_date, account_code, amount::text, is_debit,
		        coalesce(counterparty_id, ''), coalesce(counterparty_name, '')
		 FROM ledger_entries
		 WHERE taxpayer_id = $1 AND period = $2
		 ORDER BY entry_date, id`,
		taxpayerID, period,
	)
	if err != nil {
		return nil, fmt.Errorf("open entry stream: %w", err)
	}
	return &EntryStream{rows: rows}, nil
}

// EntryStream implements usecase.EntryStream over a pgx cursor.
type EntryStream struct {
	rows pgx.Rows
}

// Next returns the next entry, or (nil, nil) once the stream is exhausted.
func (s *EntryStream) Next(_ context.Context) (*domain.LedgerEntry, error) {
	if !s.rows.Next() {
		return nil, s.rows.Err()
	}

	var (
		entry  domain.LedgerEntry
		amount string
	)
	err := s.rows.Scan(
		&entry.ID,
		&entry.Date,
		&entry.AccountCode,
		&amount,
		&entry.IsDebit,
		&entry.CounterpartyID,
		&entry.CounterpartyName,
	)
	if err != nil {
		return nil, err
	}

	entry.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount of entry %s: %w", entry.ID, err)
	}
	return &entry, nil
}

// Close releases the underlying cursor.
func (s *EntryStream) Close(_ context.Context) error {
	s.rows.Close()
	return nil
}
