package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerviews/internal/domain"
)

// FlowRow is one emitted daily-flow row.
type FlowRow struct {
	Date            string          `json:"date"`
	DebitedAccount  string          `json:"debited_account"`
	CreditedAccount string          `json:"credited_account"`
	Amount          decimal.Decimal `json:"amount"`
}

// FlowAggregator consolidates each day's debit/credit entries into money-flow
// edges between accounts.
//
// A consolidation window is not calendar-fixed: it closes when the date
// changes or as soon as the running balance returns to zero within the day,
// because one day may hold several independently balanced batches. Sub-day
// closures only clear the partial-entry buffers; the day's flow table is
// flushed when the date changes or at Finish.
type FlowAggregator struct {
	sink   RowSink
	warner Warner
	rows   *domain.RowKey

	day          time.Time
	balance      decimal.Decimal
	totalDebits  decimal.Decimal
	totalCredits decimal.Decimal
	debits       []domain.PartialEntry
	credits      []domain.PartialEntry
	flows        map[domain.FlowKey]*domain.DailyAccountingFlow
}

// NewFlowAggregator creates a daily flow consolidator for one job.
func NewFlowAggregator(sink RowSink, warner Warner, rows *domain.RowKey) *FlowAggregator {
	return &FlowAggregator{
		sink:   sink,
		warner: warner,
		rows:   rows,
		flows:  make(map[domain.FlowKey]*domain.DailyAccountingFlow),
	}
}

// Observe feeds one ledger entry into the current window.
func (f *FlowAggregator) Observe(ctx context.Context, entry *domain.LedgerEntry) error {
	if entry.Skippable() {
		return nil
	}

	day := dayOf(entry.Date)
	if !f.day.IsZero() && !day.Equal(f.day) {
		f.closeWindow(true)
		if err := f.flushDay(ctx); err != nil {
			return err
		}
	}
	f.day = day

	amount := entry.Amount.Abs()
	part := domain.PartialEntry{AccountCode: entry.AccountCode, Amount: amount}
	if entry.IsDebit {
		f.debits = append(f.debits, part)
		f.totalDebits = f.totalDebits.Add(amount)
		f.balance = f.balance.Add(amount)
	} else {
		f.credits = append(f.credits, part)
		f.totalCredits = f.totalCredits.Add(amount)
		f.balance = f.balance.Sub(amount)
	}

	// A zero running balance closes the window mid-day: the batch balanced.
	if f.balance.Abs().LessThan(domain.Epsilon) {
		f.closeWindow(false)
	}

	return nil
}

// Finish consolidates and flushes the last open day.
func (f *FlowAggregator) Finish(ctx context.Context) error {
	if f.day.IsZero() {
		return nil
	}
	f.closeWindow(true)
	return f.flushDay(ctx)
}

// closeWindow consolidates the buffered partial entries into the day's flow
// table and resets the window state. An unbalanced window at a day boundary
// is advisory: downstream consumers still get the partial flows.
func (f *FlowAggregator) closeWindow(warnIfUnbalanced bool) {
	if warnIfUnbalanced && f.balance.Abs().GreaterThanOrEqual(domain.Epsilon) {
		f.warner.Warn("day does not balance", map[string]any{
			"date":    f.day.Format("2006-01-02"),
			"balance": f.balance.String(),
		})
	}

	f.consolidate()

	f.debits = f.debits[:0]
	f.credits = f.credits[:0]
	f.balance = decimal.Zero
	f.totalDebits = decimal.Zero
	f.totalCredits = decimal.Zero
}

func (f *FlowAggregator) consolidate() {
	if len(f.debits) == 0 || len(f.credits) == 0 {
		return
	}

	debitedAccounts := distinctAccounts(f.debits)
	creditedAccounts := distinctAccounts(f.credits)

	switch {
	case len(debitedAccounts) == 1 && len(creditedAccounts) == 1:
		f.addFlow(debitedAccounts[0], creditedAccounts[0], decimal.Min(f.totalDebits, f.totalCredits))

	case len(creditedAccounts) == 1:
		// Several debited accounts feeding one credited account: each debit
		// keeps its own amount.
		for _, part := range f.debits {
			f.addFlow(part.AccountCode, creditedAccounts[0], part.Amount)
		}

	case len(debitedAccounts) == 1:
		for _, part := range f.credits {
			f.addFlow(debitedAccounts[0], part.AccountCode, part.Amount)
		}

	default:
		// Genuinely many-to-many. Exact attribution is unsolved; collapse
		// into the sentinel pair rather than guessing an allocation.
		f.addFlow(domain.ManyAccounts, domain.ManyAccounts, decimal.Min(f.totalDebits, f.totalCredits))
	}
}

func (f *FlowAggregator) addFlow(debited, credited string, amount decimal.Decimal) {
	key := domain.FlowKey{DebitedAccount: debited, CreditedAccount: credited}
	if flow, ok := f.flows[key]; ok {
		flow.Add(amount)
		return
	}
	f.flows[key] = &domain.DailyAccountingFlow{
		Date:            f.day,
		DebitedAccount:  debited,
		CreditedAccount: credited,
		Amount:          amount,
	}
}

// flushDay emits the day's flow table in deterministic order and clears it.
func (f *FlowAggregator) flushDay(ctx context.Context) error {
	if len(f.flows) == 0 {
		return nil
	}

	keys := make([]domain.FlowKey, 0, len(f.flows))
	for key := range f.flows {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].DebitedAccount != keys[j].DebitedAccount {
			return keys[i].DebitedAccount < keys[j].DebitedAccount
		}
		return keys[i].CreditedAccount < keys[j].CreditedAccount
	})

	for _, key := range keys {
		flow := f.flows[key]
		row := FlowRow{
			Date:            flow.Date.Format("2006-01-02"),
			DebitedAccount:  flow.DebitedAccount,
			CreditedAccount: flow.CreditedAccount,
			Amount:          flow.Amount,
		}
		if err := f.sink.Emit(ctx, StreamDailyFlows, f.rows.Next(), row); err != nil {
			return err
		}
	}

	f.flows = make(map[domain.FlowKey]*domain.DailyAccountingFlow)
	return nil
}

func distinctAccounts(parts []domain.PartialEntry) []string {
	seen := make(map[string]struct{}, len(parts))
	accounts := make([]string, 0, 2)
	for _, part := range parts {
		if _, ok := seen[part.AccountCode]; ok {
			continue
		}
		seen[part.AccountCode] = struct{}{}
		accounts = append(accounts, part.AccountCode)
	}
	return accounts
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
