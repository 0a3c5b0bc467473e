package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CounterpartyRole classifies how an account contributes to customer/supplier
// exposure. The role fixes which entry direction counts as additive.
type CounterpartyRole int

const (
	RoleNone CounterpartyRole = iota
	RoleCustomerOnDebit
	RoleCustomerOnCredit
	RoleSupplierOnDebit
	RoleSupplierOnCredit
)

// ParseCounterpartyRole parses the serialized role names used in taxonomy files.
func ParseCounterpartyRole(s string) (CounterpartyRole, error) {
	switch s {
	case "", "none":
		return RoleNone, nil
	case "customer_on_debit":
		return RoleCustomerOnDebit, nil
	case "customer_on_credit":
		return RoleCustomerOnCredit, nil
	case "supplier_on_debit":
		return RoleSupplierOnDebit, nil
	case "supplier_on_credit":
		return RoleSupplierOnCredit, nil
	default:
		return RoleNone, fmt.Errorf("unknown counterparty role %q", s)
	}
}

// Customer reports whether the role aggregates on the customer side.
func (r CounterpartyRole) Customer() bool {
	return r == RoleCustomerOnDebit || r == RoleCustomerOnCredit
}

// AdditiveOnDebit reports whether a debit entry adds to the signed amount.
func (r CounterpartyRole) AdditiveOnDebit() bool {
	return r == RoleCustomerOnDebit || r == RoleSupplierOnDebit
}

// CounterpartyAggregation is the running monthly exposure of one customer or
// supplier. The object is reused across months: Reset zeroes the counters
// after each flush instead of recreating it.
type CounterpartyAggregation struct {
	CounterpartyID string
	Debits         decimal.Decimal
	Credits        decimal.Decimal
	Amount         decimal.Decimal
	Entries        int64
}

// Observe records one entry. additive tells whether the entry direction
// matches the role's additive direction.
func (a *CounterpartyAggregation) Observe(amount decimal.Decimal, isDebit, additive bool) {
	if isDebit {
		a.Debits = a.Debits.Add(amount)
	} else {
		a.Credits = a.Credits.Add(amount)
	}
	if additive {
		a.Amount = a.Amount.Add(amount)
	} else {
		a.Amount = a.Amount.Sub(amount)
	}
	a.Entries++
}

// Empty reports whether the aggregation saw no entries this month.
func (a *CounterpartyAggregation) Empty() bool {
	return a.Entries == 0
}

// Reset zeroes the counters for the next month.
func (a *CounterpartyAggregation) Reset() {
	a.Debits = decimal.Zero
	a.Credits = decimal.Zero
	a.Amount = decimal.Zero
	a.Entries = 0
}
