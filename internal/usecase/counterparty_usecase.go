package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerviews/internal/domain"
)

// CounterpartyRow is one emitted monthly customer/supplier exposure row.
type CounterpartyRow struct {
	Month          string          `json:"month"`
	Kind           string          `json:"kind"`
	CounterpartyID string          `json:"counterparty_id"`
	Name           string          `json:"name"`
	Debits         decimal.Decimal `json:"debits"`
	Credits        decimal.Decimal `json:"credits"`
	Amount         decimal.Decimal `json:"amount"`
	Entries        int64           `json:"entries"`
}

// CounterpartyAggregator aggregates monthly exposure per customer and
// supplier. Accounts resolve (via sub-category) to a role fixing which entry
// direction is additive; accounts without a role are skipped.
type CounterpartyAggregator struct {
	sink     RowSink
	rows     *domain.RowKey
	accounts AccountLookup
	parties  PartyLookup
	taxonomy *domain.Taxonomy

	customers map[string]*domain.CounterpartyAggregation
	suppliers map[string]*domain.CounterpartyAggregation
	names     map[string]string
	roleMemo  map[string]domain.CounterpartyRole
	monthKey  int
}

// NewCounterpartyAggregator creates a customer/supplier aggregator for one job.
func NewCounterpartyAggregator(
	sink RowSink,
	rows *domain.RowKey,
	accounts AccountLookup,
	parties PartyLookup,
	taxonomy *domain.Taxonomy,
) *CounterpartyAggregator {
	return &CounterpartyAggregator{
		sink:      sink,
		rows:      rows,
		accounts:  accounts,
		parties:   parties,
		taxonomy:  taxonomy,
		customers: make(map[string]*domain.CounterpartyAggregation),
		suppliers: make(map[string]*domain.CounterpartyAggregation),
		names:     make(map[string]string),
		roleMemo:  make(map[string]domain.CounterpartyRole),
	}
}

// Observe implements Aggregator.
func (c *CounterpartyAggregator) Observe(ctx context.Context, entry *domain.LedgerEntry) error {
	if entry.Skippable() || entry.CounterpartyID == "" {
		return nil
	}

	role, err := c.roleFor(ctx, entry.AccountCode)
	if err != nil {
		return err
	}
	if role == domain.RoleNone {
		return nil
	}

	monthKey := entry.MonthKey()
	if c.monthKey != 0 && monthKey != c.monthKey {
		if err := c.flushMonth(ctx); err != nil {
			return err
		}
	}
	c.monthKey = monthKey

	side := c.suppliers
	if role.Customer() {
		side = c.customers
	}

	agg, ok := side[entry.CounterpartyID]
	if !ok {
		agg = &domain.CounterpartyAggregation{CounterpartyID: entry.CounterpartyID}
		side[entry.CounterpartyID] = agg
	}

	additive := entry.IsDebit == role.AdditiveOnDebit()
	agg.Observe(entry.Amount.Abs(), entry.IsDebit, additive)

	// The most recently seen non-blank display name wins.
	if entry.CounterpartyName != "" {
		c.names[entry.CounterpartyID] = entry.CounterpartyName
	}

	return nil
}

// Finish flushes the final open month.
func (c *CounterpartyAggregator) Finish(ctx context.Context) error {
	if c.monthKey == 0 {
		return nil
	}
	return c.flushMonth(ctx)
}

// flushMonth emits one row per non-empty aggregation for customers and
// suppliers, resets the aggregations for reuse and clears the name cache.
func (c *CounterpartyAggregator) flushMonth(ctx context.Context) error {
	if err := c.flushSide(ctx, "customer", c.customers); err != nil {
		return err
	}
	if err := c.flushSide(ctx, "supplier", c.suppliers); err != nil {
		return err
	}
	c.names = make(map[string]string)
	return nil
}

func (c *CounterpartyAggregator) flushSide(ctx context.Context, kind string, side map[string]*domain.CounterpartyAggregation) error {
	ids := make([]string, 0, len(side))
	for id := range side {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		agg := side[id]
		if agg.Empty() {
			continue
		}

		name, err := c.nameFor(ctx, id)
		if err != nil {
			return err
		}

		row := CounterpartyRow{
			Month:          formatMonthKey(c.monthKey),
			Kind:           kind,
			CounterpartyID: id,
			Name:           name,
			Debits:         agg.Debits,
			Credits:        agg.Credits,
			Amount:         agg.Amount,
			Entries:        agg.Entries,
		}
		if err := c.sink.Emit(ctx, StreamCounterparty, c.rows.Next(), row); err != nil {
			return err
		}

		agg.Reset()
	}
	return nil
}

// nameFor prefers the display name seen on the entries this month over the
// registry name.
func (c *CounterpartyAggregator) nameFor(ctx context.Context, id string) (string, error) {
	if name, ok := c.names[id]; ok {
		return name, nil
	}

	party, err := c.parties.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("lookup counterparty %s: %w", id, err)
	}
	if party != nil {
		return party.Name, nil
	}
	return "", nil
}

// roleFor resolves and memoizes the counterparty role of an account.
func (c *CounterpartyAggregator) roleFor(ctx context.Context, code string) (domain.CounterpartyRole, error) {
	if role, ok := c.roleMemo[code]; ok {
		return role, nil
	}

	role := domain.RoleNone
	account, err := c.accounts.GetByCode(ctx, code)
	if err != nil {
		return domain.RoleNone, fmt.Errorf("lookup account %s: %w", code, err)
	}
	if account != nil {
		role = c.taxonomy.RoleFor(account.SubCategory)
	}

	c.roleMemo[code] = role
	return role, nil
}
