package domain

import "github.com/shopspring/decimal"

// BalanceSheet is the running monthly balance of one account, debit-positive.
// It persists for the whole job; Flip moves it into the next month.
// Invariant: FinalValue == InitialValue + Debits - Credits.
type BalanceSheet struct {
	AccountCode  string
	InitialValue decimal.Decimal
	Debits       decimal.Decimal
	Credits      decimal.Decimal
	FinalValue   decimal.Decimal
	EntryCount   int64
}

// NewBalanceSheet creates a sheet seeded with a signed opening value.
func NewBalanceSheet(accountCode string, initial decimal.Decimal) *BalanceSheet {
	return &BalanceSheet{
		AccountCode:  accountCode,
		InitialValue: initial,
		FinalValue:   initial,
	}
}

// Apply records one entry against the sheet and returns the updated sheet.
func (b *BalanceSheet) Apply(amount decimal.Decimal, isDebit bool) *BalanceSheet {
	if isDebit {
		b.Debits = b.Debits.Add(amount)
	} else {
		b.Credits = b.Credits.Add(amount)
	}
	b.FinalValue = b.InitialValue.Add(b.Debits).Sub(b.Credits)
	b.EntryCount++
	return b
}

// Flip closes the current month: the final value becomes the next month's
// initial value and the per-month counters are zeroed.
func (b *BalanceSheet) Flip() {
	b.InitialValue = b.FinalValue
	b.Debits = decimal.Zero
	b.Credits = decimal.Zero
	b.EntryCount = 0
}

// SignedValue applies the category nature to a debit-positive value so that
// vertical analysis can sum categories directly.
func SignedValue(value decimal.Decimal, debitNature bool) decimal.Decimal {
	if debitNature {
		return value
	}
	return value.Neg()
}
