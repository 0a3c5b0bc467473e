package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RowSink persists derived rows into the derived_rows table. Emits are
// upserts keyed on (stream, row_id) so re-running a job after a partial
// failure converges on the same state.
type RowSink struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewRowSink creates a new RowSink.
func NewRowSink(pool *pgxpool.Pool, retrier *Retrier) *RowSink {
	return &RowSink{pool: pool, retrier: retrier}
}

// Emit stores one derived row. The row identifier carries the taxpayer and
// period as its first two dot-separated fields.
func (s *RowSink) Emit(ctx context.Context, stream, rowID string, row any) error {
	taxpayerID, period, err := splitRowID(rowID)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal row %s: %w", rowID, err)
	}

	return s.retrier.Retry(ctx, func() error {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO derived_rows (stream, row_id, taxpayer_id, period, payload)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (stream, row_id) DO UPDATE SET payload = EXCLUDED.payload`,
			stream, rowID, taxpayerID, period, payload,
		)
		return err
	})
}

// DeleteJob removes every derived row of a taxpayer's period across all
// streams, clearing the slate before a re-run.
func (s *RowSink) DeleteJob(ctx context.Context, taxpayerID string, period int) error {
	return s.retrier.Retry(ctx, func() error {
		_, err := s.pool.Exec(ctx,
			`DELETE FROM derived_rows WHERE taxpayer_id = $1 AND period = $2`,
			taxpayerID, period,
		)
		return err
	})
}

func splitRowID(rowID string) (string, int, error) {
	parts := strings.SplitN(rowID, ".", 3)
	if len(parts) != 3 {
		return "", 0, fmt.Errorf("malformed row id %q", rowID)
	}
	period, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, fmt.Errorf("malformed row id %q: %w", rowID, err)
	}
	return parts[0], period, nil
}
