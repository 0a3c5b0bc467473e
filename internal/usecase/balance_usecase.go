package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerviews/internal/domain"
)

// BalanceRow is one emitted monthly balance-sheet row.
type BalanceRow struct {
	Month            string          `json:"month"`
	AccountCode      string          `json:"account_code"`
	InitialValue     decimal.Decimal `json:"initial_value"`
	Debits           decimal.Decimal `json:"debits"`
	Credits          decimal.Decimal `json:"credits"`
	FinalValue       decimal.Decimal `json:"final_value"`
	FinalValueSigned decimal.Decimal `json:"final_value_signed"`
	Entries          int64           `json:"entries"`
}

// BalanceSheetAggregator maintains one running balance sheet per account and
// flushes a row per known account at every month change. After the stream
// ends it back-fills silent months so the emitted view is contiguous from the
// first to the last observed month for every tracked account.
type BalanceSheetAggregator struct {
	sink     RowSink
	warner   Warner
	rows     *domain.RowKey
	accounts AccountLookup
	opening  OpeningBalanceLookup
	taxonomy *domain.Taxonomy

	sheets     map[string]*domain.BalanceSheet
	openings   map[string]decimal.Decimal
	natures    map[string]bool
	history    map[string]map[int]decimal.Decimal
	monthKey   int
	firstMonth int
	lastMonth  int
}

// NewBalanceSheetAggregator creates a monthly balance-sheet engine for one job.
func NewBalanceSheetAggregator(
	sink RowSink,
	warner Warner,
	rows *domain.RowKey,
	accounts AccountLookup,
	opening OpeningBalanceLookup,
	taxonomy *domain.Taxonomy,
) *BalanceSheetAggregator {
	return &BalanceSheetAggregator{
		sink:     sink,
		warner:   warner,
		rows:     rows,
		accounts: accounts,
		opening:  opening,
		taxonomy: taxonomy,
		sheets:   make(map[string]*domain.BalanceSheet),
		openings: make(map[string]decimal.Decimal),
		natures:  make(map[string]bool),
		history:  make(map[string]map[int]decimal.Decimal),
	}
}

// Seed registers every account with a declared opening balance so that silent
// accounts still get a row each month.
func (b *BalanceSheetAggregator) Seed(ctx context.Context) error {
	codes, err := b.opening.Codes(ctx)
	if err != nil {
		return fmt.Errorf("seed account universe: %w", err)
	}
	for _, code := range codes {
		if _, err := b.sheet(ctx, code); err != nil {
			return err
		}
	}
	return nil
}

// Observe implements Aggregator.
func (b *BalanceSheetAggregator) Observe(ctx context.Context, entry *domain.LedgerEntry) error {
	_, err := b.Apply(ctx, entry)
	return err
}

// Apply records one entry and returns the account's running sheet so callers
// can read the post-entry balance inline. Skippable entries return (nil, nil).
func (b *BalanceSheetAggregator) Apply(ctx context.Context, entry *domain.LedgerEntry) (*domain.BalanceSheet, error) {
	if entry.Skippable() {
		return nil, nil
	}

	monthKey := entry.MonthKey()
	if b.monthKey != 0 && monthKey != b.monthKey {
		if err := b.flushMonth(ctx); err != nil {
			return nil, err
		}
	}
	b.monthKey = monthKey
	if b.firstMonth == 0 {
		b.firstMonth = monthKey
	}
	b.lastMonth = monthKey

	sheet, err := b.sheet(ctx, entry.AccountCode)
	if err != nil {
		return nil, err
	}

	return sheet.Apply(entry.Amount.Abs(), entry.IsDebit), nil
}

// Finish flushes the final open month, then synthesizes zero-activity rows
// for every tracked account and expected month without one, carrying forward
// the last known closing balance (or the opening balance, or zero).
func (b *BalanceSheetAggregator) Finish(ctx context.Context) error {
	if b.monthKey == 0 {
		return nil
	}
	if err := b.flushMonth(ctx); err != nil {
		return err
	}

	months := monthRange(b.firstMonth, b.lastMonth)
	for _, code := range b.sortedAccounts() {
		carry := b.openings[code]
		for _, month := range months {
			if closing, ok := b.history[code][month]; ok {
				carry = closing
				continue
			}
			if err := b.emitGapRow(ctx, code, month, carry); err != nil {
				return err
			}
		}
	}
	return nil
}

// sheet returns the running sheet for an account, creating and seeding it on
// first touch.
func (b *BalanceSheetAggregator) sheet(ctx context.Context, code string) (*domain.BalanceSheet, error) {
	if sheet, ok := b.sheets[code]; ok {
		return sheet, nil
	}

	initial := decimal.Zero
	ob, err := b.opening.GetByAccount(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("lookup opening balance %s: %w", code, err)
	}
	if ob != nil {
		initial = ob.Signed()
	} else {
		account, err := b.accounts.GetByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("lookup account %s: %w", code, err)
		}
		if account != nil {
			b.warner.Warn("account has no opening balance", map[string]any{
				"account": code,
			})
		}
	}

	sheet := domain.NewBalanceSheet(code, initial)
	b.sheets[code] = sheet
	b.openings[code] = initial
	b.history[code] = make(map[int]decimal.Decimal)
	return sheet, nil
}

func (b *BalanceSheetAggregator) flushMonth(ctx context.Context) error {
	for _, code := range b.sortedAccounts() {
		sheet := b.sheets[code]

		debitNature, err := b.debitNature(ctx, code)
		if err != nil {
			return err
		}

		row := BalanceRow{
			Month:            formatMonthKey(b.monthKey),
			AccountCode:      code,
			InitialValue:     sheet.InitialValue,
			Debits:           sheet.Debits,
			Credits:          sheet.Credits,
			FinalValue:       sheet.FinalValue,
			FinalValueSigned: domain.SignedValue(sheet.FinalValue, debitNature),
			Entries:          sheet.EntryCount,
		}
		if err := b.sink.Emit(ctx, StreamBalanceSheet, b.rows.Next(), row); err != nil {
			return err
		}

		b.history[code][b.monthKey] = sheet.FinalValue
		sheet.Flip()
	}
	return nil
}

func (b *BalanceSheetAggregator) emitGapRow(ctx context.Context, code string, month int, carry decimal.Decimal) error {
	debitNature, err := b.debitNature(ctx, code)
	if err != nil {
		return err
	}

	row := BalanceRow{
		Month:            formatMonthKey(month),
		AccountCode:      code,
		InitialValue:     carry,
		Debits:           decimal.Zero,
		Credits:          decimal.Zero,
		FinalValue:       carry,
		FinalValueSigned: domain.SignedValue(carry, debitNature),
		Entries:          0,
	}
	return b.sink.Emit(ctx, StreamBalanceSheet, b.rows.Next(), row)
}

// debitNature resolves and memoizes whether an account's category has debit
// nature. Accounts absent from the chart default to debit nature.
func (b *BalanceSheetAggregator) debitNature(ctx context.Context, code string) (bool, error) {
	if nature, ok := b.natures[code]; ok {
		return nature, nil
	}

	nature := true
	account, err := b.accounts.GetByCode(ctx, code)
	if err != nil {
		return false, fmt.Errorf("lookup account %s: %w", code, err)
	}
	if account != nil {
		nature = b.taxonomy.DebitNatureCategory(account.Category)
	}

	b.natures[code] = nature
	return nature, nil
}

func (b *BalanceSheetAggregator) sortedAccounts() []string {
	codes := make([]string, 0, len(b.sheets))
	for code := range b.sheets {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func monthRange(first, last int) []int {
	if first == 0 || last < first {
		return nil
	}
	months := make([]int, 0, 12)
	year, month := first/100, first%100
	for {
		key := year*100 + month
		if key > last {
			break
		}
		months = append(months, key)
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return months
}

func formatMonthKey(key int) string {
	return fmt.Sprintf("%04d-%02d", key/100, key%100)
}
