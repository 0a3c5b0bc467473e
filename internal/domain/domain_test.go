package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLedgerEntrySkippable(t *testing.T) {
	date := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		entry LedgerEntry
		want  bool
	}{
		{
			name:  "valid entry",
			entry: LedgerEntry{Date: date, AccountCode: "1.1", Amount: decimal.NewFromInt(10)},
			want:  false,
		},
		{
			name:  "blank account",
			entry: LedgerEntry{Date: date, Amount: decimal.NewFromInt(10)},
			want:  true,
		},
		{
			name:  "zero date",
			entry: LedgerEntry{AccountCode: "1.1", Amount: decimal.NewFromInt(10)},
			want:  true,
		},
		{
			name:  "just below tolerance",
			entry: LedgerEntry{Date: date, AccountCode: "1.1", Amount: decimal.NewFromFloat(0.0049)},
			want:  true,
		},
		{
			name:  "just above tolerance",
			entry: LedgerEntry{Date: date, AccountCode: "1.1", Amount: decimal.NewFromFloat(0.0051)},
			want:  false,
		},
		{
			name:  "negative amount above tolerance",
			entry: LedgerEntry{Date: date, AccountCode: "1.1", Amount: decimal.NewFromFloat(-1.5)},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Skippable(); got != tt.want {
				t.Fatalf("Skippable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBalanceSheetInvariantAndFlip(t *testing.T) {
	sheet := NewBalanceSheet("1.1", decimal.NewFromInt(50))

	sheet.Apply(decimal.NewFromInt(100), true)
	sheet.Apply(decimal.NewFromInt(30), false)

	want := sheet.InitialValue.Add(sheet.Debits).Sub(sheet.Credits)
	if !sheet.FinalValue.Equal(want) {
		t.Fatalf("invariant broken: %+v", sheet)
	}
	if sheet.FinalValue.String() != "120" || sheet.EntryCount != 2 {
		t.Fatalf("sheet = %+v", sheet)
	}

	sheet.Flip()
	if sheet.InitialValue.String() != "120" || sheet.FinalValue.String() != "120" {
		t.Fatalf("flip did not carry the balance: %+v", sheet)
	}
	if !sheet.Debits.IsZero() || !sheet.Credits.IsZero() || sheet.EntryCount != 0 {
		t.Fatalf("flip did not reset counters: %+v", sheet)
	}
}

func TestRowKeySequence(t *testing.T) {
	key := NewRowKey("12345678", 3)

	if got := key.Next(); got != "12345678.3.00000000000001" {
		t.Fatalf("first id = %s", got)
	}
	if got := key.Next(); got != "12345678.3.00000000000002" {
		t.Fatalf("second id = %s", got)
	}
}

func TestCounterpartyAggregationReuse(t *testing.T) {
	agg := &CounterpartyAggregation{CounterpartyID: "C1"}

	agg.Observe(decimal.NewFromInt(100), true, true)
	agg.Observe(decimal.NewFromInt(20), false, false)

	if agg.Amount.String() != "80" || agg.Debits.String() != "100" || agg.Credits.String() != "20" {
		t.Fatalf("aggregation = %+v", agg)
	}
	if agg.Empty() {
		t.Fatalf("aggregation should not be empty")
	}

	agg.Reset()
	if !agg.Empty() || !agg.Amount.IsZero() {
		t.Fatalf("reset left state behind: %+v", agg)
	}
}

func TestMonthKeyOf(t *testing.T) {
	if got := MonthKeyOf(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)); got != 202412 {
		t.Fatalf("month key = %d", got)
	}
}
