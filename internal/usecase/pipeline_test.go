package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerviews/internal/domain"
)

func pipelineFixture(t *testing.T, sink *fakeSink, locker *fakeLocker) (*Pipeline, []*domain.LedgerEntry) {
	t.Helper()

	accounts := &fakeAccounts{records: map[string]*domain.AccountRecord{
		"1.1": {Code: "1.1", Category: "assets", SubCategory: "cash"},
		"1.2": {Code: "1.2", Category: "assets", SubCategory: "receivables"},
		"3.1": {Code: "3.1", Category: "revenue", SubCategory: "sales"},
	}}
	opening := &fakeOpening{balances: map[string]*domain.OpeningBalance{
		"1.1": {AccountCode: "1.1", Amount: decimal.NewFromInt(500), IsDebit: true},
	}}

	pipeline := NewPipeline(PipelineConfig{
		Sink:     sink,
		Warner:   &fakeWarner{},
		Accounts: accounts,
		Parties:  &fakeParties{},
		Opening:  opening,
		Taxonomy: testTaxonomy(t),
		Locker:   locker,
		IDs:      &fakeIDs{},
		Logger:   zerolog.Nop(),
	})

	entries := []*domain.LedgerEntry{
		withParty(entry("1", "2024-01-05", "1.2", 100, true), "C1", "Acme"),
		entry("2", "2024-01-05", "3.1", 100, false),
		entry("3", "2024-01-20", "1.1", 0.001, true), // noise, dropped
		entry("4", "2024-02-02", "1.1", 40, true),
		entry("5", "2024-02-02", "1.2", 40, false),
	}
	return pipeline, entries
}

func TestPipelineRunProducesAllViews(t *testing.T) {
	sink := &fakeSink{}
	locker := &fakeLocker{}
	pipeline, entries := pipelineFixture(t, sink, locker)

	result, err := pipeline.Run(context.Background(),
		JobParams{TaxpayerID: "tp1", Period: 3, FiscalYear: 2024},
		&fakeStream{entries: entries},
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Entries != 4 || result.Skipped != 1 {
		t.Fatalf("result = %+v", result)
	}
	if locker.acquired != 1 || locker.released != 1 {
		t.Fatalf("lock acquired %d released %d", locker.acquired, locker.released)
	}

	for _, stream := range []string{StreamDailyFlows, StreamBalanceSheet, StreamIncome, StreamCounterparty} {
		if result.Rows[stream] == 0 {
			t.Fatalf("no rows emitted on %s", stream)
		}
		if int64(len(sink.byStream(stream))) != result.Rows[stream] {
			t.Fatalf("row count mismatch on %s", stream)
		}
	}
}

func TestPipelineRerunIsIdempotent(t *testing.T) {
	sink := &fakeSink{}
	pipeline, entries := pipelineFixture(t, sink, &fakeLocker{})

	params := JobParams{TaxpayerID: "tp1", Period: 3, FiscalYear: 2024}

	if _, err := pipeline.Run(context.Background(), params, &fakeStream{entries: entries}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := append([]emittedRow(nil), sink.rows...)

	if _, err := pipeline.Run(context.Background(), params, &fakeStream{entries: entries}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	second := sink.rows

	if len(first) != len(second) {
		t.Fatalf("row counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("row %d differs:\n%+v\n%+v", i, first[i], second[i])
		}
	}
}

func TestPipelineLockedJobFails(t *testing.T) {
	sink := &fakeSink{}
	pipeline, entries := pipelineFixture(t, sink, &fakeLocker{err: domain.ErrJobLocked})

	_, err := pipeline.Run(context.Background(),
		JobParams{TaxpayerID: "tp1", Period: 3},
		&fakeStream{entries: entries},
	)
	if !errors.Is(err, domain.ErrJobLocked) {
		t.Fatalf("expected ErrJobLocked, got %v", err)
	}
	if len(sink.rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(sink.rows))
	}
}

func TestPipelineFatalSinkErrorRollsBack(t *testing.T) {
	sink := &fakeSink{failOnRow: 3}
	pipeline, entries := pipelineFixture(t, sink, &fakeLocker{})

	_, err := pipeline.Run(context.Background(),
		JobParams{TaxpayerID: "tp1", Period: 3},
		&fakeStream{entries: entries},
	)
	if err == nil {
		t.Fatalf("expected error from sink")
	}
	if len(sink.rows) != 0 {
		t.Fatalf("expected rolled back rows, got %d", len(sink.rows))
	}
	// Run deletes once up front and once on abort.
	if len(sink.deleted) != 2 {
		t.Fatalf("deleted %d times, want 2", len(sink.deleted))
	}
}
