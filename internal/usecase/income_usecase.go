package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerviews/internal/domain"
)

// IncomeRow is one emitted statement-of-income row.
type IncomeRow struct {
	Year        int             `json:"year"`
	LineCode    string          `json:"line_code"`
	Description string          `json:"description"`
	Nature      string          `json:"nature"`
	Value       decimal.Decimal `json:"value"`
}

// IncomeStatementAggregator classifies accounts into statement lines via
// their sub-category and evaluates the derived-line formulas once at the end.
// Every line, active or not, is emitted tagged with the fiscal year.
type IncomeStatementAggregator struct {
	sink     RowSink
	rows     *domain.RowKey
	accounts AccountLookup
	taxonomy *domain.Taxonomy

	entries  map[string]*domain.ComputedStatementEntry
	lineMemo map[string]*domain.StatementLine
	year     int
}

// NewIncomeStatementAggregator creates a statement-of-income aggregator for
// one job. fiscalYear is the declared year; the year actually observed in the
// data takes precedence when they disagree.
func NewIncomeStatementAggregator(
	sink RowSink,
	rows *domain.RowKey,
	accounts AccountLookup,
	taxonomy *domain.Taxonomy,
	fiscalYear int,
) *IncomeStatementAggregator {
	entries := make(map[string]*domain.ComputedStatementEntry, len(taxonomy.Lines()))
	for _, line := range taxonomy.Lines() {
		entries[line.Code] = &domain.ComputedStatementEntry{Nature: line.Nature}
	}

	return &IncomeStatementAggregator{
		sink:     sink,
		rows:     rows,
		accounts: accounts,
		taxonomy: taxonomy,
		entries:  entries,
		lineMemo: make(map[string]*domain.StatementLine),
		year:     fiscalYear,
	}
}

// Observe implements Aggregator. Accounts that map to no statement line are
// ignored.
func (a *IncomeStatementAggregator) Observe(ctx context.Context, entry *domain.LedgerEntry) error {
	if entry.Skippable() {
		return nil
	}

	a.year = entry.Date.Year()

	line, err := a.lineFor(ctx, entry.AccountCode)
	if err != nil {
		return err
	}
	if line == nil {
		return nil
	}

	a.entries[line.Code].Accumulate(entry.Amount.Abs(), entry.IsDebit)
	return nil
}

// Finish evaluates the formula lines in taxonomy order and emits one row per
// statement line.
func (a *IncomeStatementAggregator) Finish(ctx context.Context) error {
	for _, line := range a.taxonomy.Lines() {
		if !line.IsFormula() {
			continue
		}

		total := decimal.Zero
		for _, term := range line.Formula {
			value, ok := a.ValueOf(term.Line)
			if !ok {
				continue
			}
			if term.Negate {
				total = total.Sub(value)
			} else {
				total = total.Add(value)
			}
		}
		a.entries[line.Code].Set(total)
	}

	for _, line := range a.taxonomy.Lines() {
		row := IncomeRow{
			Year:        a.year,
			LineCode:    line.Code,
			Description: line.Description,
			Nature:      line.Nature.String(),
			Value:       a.entries[line.Code].Value,
		}
		if err := a.sink.Emit(ctx, StreamIncome, a.rows.Next(), row); err != nil {
			return err
		}
	}
	return nil
}

// ValueOf returns the current value of a statement line, or false when the
// taxonomy declares no such line.
func (a *IncomeStatementAggregator) ValueOf(code string) (decimal.Decimal, bool) {
	entry, ok := a.entries[code]
	if !ok {
		return decimal.Zero, false
	}
	return entry.Value, true
}

// lineFor resolves and memoizes the statement line of an account, nil when
// the account's sub-category is unmapped or the account is unknown.
func (a *IncomeStatementAggregator) lineFor(ctx context.Context, code string) (*domain.StatementLine, error) {
	if line, ok := a.lineMemo[code]; ok {
		return line, nil
	}

	var resolved *domain.StatementLine
	account, err := a.accounts.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("lookup account %s: %w", code, err)
	}
	if account != nil {
		if line, ok := a.taxonomy.LineFor(account.SubCategory); ok {
			resolved = &line
		}
	}

	a.lineMemo[code] = resolved
	return resolved, nil
}
