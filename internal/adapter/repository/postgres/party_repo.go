package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/ledgerviews/internal/domain"
)

// PartyRepository implements usecase.PartyLookup against the counterparty
// registry table.
type PartyRepository struct {
	pool *pgxpool.Pool
}

// NewPartyRepository creates a new PartyRepository.
func NewPartyRepository(pool *pgxpool.Pool) *PartyRepository {
	return &PartyRepository{pool: pool}
}

// GetByID retrieves one registry record; a miss returns (nil, nil).
func (r *PartyRepository) GetByID(ctx context.Context, id string) (*domain.PartyRecord, error) {
	var record domain.PartyRecord
	err := r.pool.QueryRow(ctx,
		`SELECT id, name FROM counterparties WHERE id = $1`,
		id,
	).Scan(&record.ID, &record.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
