package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerviews/internal/domain"
)

// OpeningBalanceRepository implements usecase.OpeningBalanceLookup.
type OpeningBalanceRepository struct {
	pool *pgxpool.Pool
}

// NewOpeningBalanceRepository creates a new OpeningBalanceRepository.
func NewOpeningBalanceRepository(pool *pgxpool.Pool) *OpeningBalanceRepository {
	return &OpeningBalanceRepository{pool: pool}
}

// GetByAccount retrieves the declared opening balance for an account; a miss
// returns (nil, nil).
func (r *OpeningBalanceRepository) GetByAccount(ctx context.Context, code string) (*domain.OpeningBalance, error) {
	var (
		amount  string
		isDebit bool
	)
	err := r.pool.QueryRow(ctx,
		`SELECT amount::text, is_debit FROM opening_balances WHERE account_code = $1`,
		code,
	).Scan(&amount, &isDebit)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse opening balance of %s: %w", code, err)
	}

	return &domain.OpeningBalance{AccountCode: code, Amount: value, IsDebit: isDebit}, nil
}

// Codes lists every account with a declared opening balance.
func (r *OpeningBalanceRepository) Codes(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT account_code FROM opening_balances ORDER BY account_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}
