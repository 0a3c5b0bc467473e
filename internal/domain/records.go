package domain

import "github.com/shopspring/decimal"

// AccountRecord is one chart-of-accounts entry.
type AccountRecord struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
}

// PartyRecord is one taxpayer-registry entry for a customer or supplier.
type PartyRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OpeningBalance is the declared balance of an account at period start.
type OpeningBalance struct {
	AccountCode string          `json:"account_code"`
	Amount      decimal.Decimal `json:"amount"`
	IsDebit     bool            `json:"is_debit"`
}

// Signed returns the debit-positive signed opening value.
func (b OpeningBalance) Signed() decimal.Decimal {
	if b.IsDebit {
		return b.Amount
	}
	return b.Amount.Neg()
}
