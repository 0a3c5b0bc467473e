package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/ledgerviews/internal/domain"
)

// AccountRepository implements usecase.AccountLookup against the
// chart-of-accounts table.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// GetByCode retrieves one chart-of-accounts record; a miss returns (nil, nil).
func (r *AccountRepository) GetByCode(ctx context.Context, code string) (*domain.AccountRecord, error) {
	var record domain.AccountRecord
	err := r.pool.QueryRow(ctx,
		`SELECT code, name, category, sub_category
		   FROM accounts
		  WHERE code = $1`,
		code,
	).Scan(&record.Code, &record.Name, &record.Category, &record.SubCategory)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
