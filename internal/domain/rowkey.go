package domain

import "fmt"

// RowKey produces the deterministic ids of a job's output rows:
// "{taxpayerId}.{taxPeriodNumber}.{14-digit zero-padded sequence}".
// Each output stream carries its own RowKey so re-runs emit identical ids.
type RowKey struct {
	TaxpayerID string
	Period     int
	sequence   uint64
}

// NewRowKey creates a key generator starting at sequence 1.
func NewRowKey(taxpayerID string, period int) *RowKey {
	return &RowKey{TaxpayerID: taxpayerID, Period: period}
}

// Next returns the next row id.
func (k *RowKey) Next() string {
	k.sequence++
	return fmt.Sprintf("%s.%d.%014d", k.TaxpayerID, k.Period, k.sequence)
}
