package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Epsilon is the monetary tolerance below which amounts and imbalances are
// treated as zero (half a cent, absorbs floating rounding in source ledgers).
var Epsilon = decimal.NewFromFloat(0.005)

// LedgerEntry is one posted line of the general ledger. Entries arrive
// pre-sorted by (Date, ID); the engine never re-sorts them.
type LedgerEntry struct {
	ID               string
	Date             time.Time
	AccountCode      string
	Amount           decimal.Decimal
	IsDebit          bool
	CounterpartyID   string
	CounterpartyName string
}

// Skippable reports whether the entry is ledger noise that every aggregator
// silently drops: blank account, zero date or a sub-tolerance amount.
func (e *LedgerEntry) Skippable() bool {
	if e.AccountCode == "" || e.Date.IsZero() {
		return true
	}
	return e.Amount.Abs().LessThan(Epsilon)
}

// MonthKey returns the year*100+month window key for the entry date.
func (e *LedgerEntry) MonthKey() int {
	return MonthKeyOf(e.Date)
}

// MonthKeyOf returns the year*100+month window key for a date.
func MonthKeyOf(t time.Time) int {
	return t.Year()*100 + int(t.Month())
}
