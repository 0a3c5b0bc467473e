package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ManyAccounts is the sentinel account code used when a window's entries
// cannot be resolved into clean debit/credit pairs. Exact multi-account flow
// attribution is deliberately not attempted.
const ManyAccounts = "*many*"

// PartialEntry is one leg buffered inside an open consolidation window.
type PartialEntry struct {
	AccountCode string
	Amount      decimal.Decimal
}

// FlowKey identifies one daily flow inside a day's flow table.
type FlowKey struct {
	DebitedAccount  string
	CreditedAccount string
}

// DailyAccountingFlow is a consolidated money movement between a debited and
// a credited account on one day. Repeated consolidations on the same day for
// the same account pair add into Amount.
type DailyAccountingFlow struct {
	Date            time.Time
	DebitedAccount  string
	CreditedAccount string
	Amount          decimal.Decimal
}

// Add accumulates another consolidated amount into the flow.
func (f *DailyAccountingFlow) Add(amount decimal.Decimal) {
	f.Amount = f.Amount.Add(amount)
}
