package usecase

import (
	"context"
	"testing"

	"github.com/iho/ledgerviews/internal/domain"
)

func newFlowAggregator(sink *fakeSink, warner *fakeWarner) *FlowAggregator {
	return NewFlowAggregator(sink, warner, domain.NewRowKey("tp1", 1))
}

func feedFlows(t *testing.T, agg *FlowAggregator, entries ...*domain.LedgerEntry) {
	t.Helper()
	ctx := context.Background()
	for _, e := range entries {
		if err := agg.Observe(ctx, e); err != nil {
			t.Fatalf("observe: %v", err)
		}
	}
	if err := agg.Finish(ctx); err != nil {
		t.Fatalf("finish: %v", err)
	}
}

func TestFlowSingleDebitSingleCredit(t *testing.T) {
	sink := &fakeSink{}
	agg := newFlowAggregator(sink, &fakeWarner{})

	feedFlows(t, agg,
		entry("1", "2024-03-05", "A", 100, true),
		entry("2", "2024-03-05", "B", 100, false),
	)

	rows := sink.byStream(StreamDailyFlows)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	want := `{"date":"2024-03-05","debited_account":"A","credited_account":"B","amount":"100"}`
	if rows[0].JSON != want {
		t.Fatalf("row = %s, want %s", rows[0].JSON, want)
	}
	if rows[0].RowID != "tp1.1.00000000000001" {
		t.Fatalf("row id = %s", rows[0].RowID)
	}
}

func TestFlowManyDebitsSingleCredit(t *testing.T) {
	sink := &fakeSink{}
	agg := newFlowAggregator(sink, &fakeWarner{})

	feedFlows(t, agg,
		entry("1", "2024-03-05", "A", 60, true),
		entry("2", "2024-03-05", "C", 40, true),
		entry("3", "2024-03-05", "B", 100, false),
	)

	rows := sink.byStream(StreamDailyFlows)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// Rows come out sorted by (debited, credited).
	wantFirst := `{"date":"2024-03-05","debited_account":"A","credited_account":"B","amount":"60"}`
	wantSecond := `{"date":"2024-03-05","debited_account":"C","credited_account":"B","amount":"40"}`
	if rows[0].JSON != wantFirst || rows[1].JSON != wantSecond {
		t.Fatalf("rows = %s / %s", rows[0].JSON, rows[1].JSON)
	}
}

func TestFlowSingleDebitManyCredits(t *testing.T) {
	sink := &fakeSink{}
	agg := newFlowAggregator(sink, &fakeWarner{})

	feedFlows(t, agg,
		entry("1", "2024-03-05", "A", 100, true),
		entry("2", "2024-03-05", "B", 30, false),
		entry("3", "2024-03-05", "C", 70, false),
	)

	rows := sink.byStream(StreamDailyFlows)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].JSON != `{"date":"2024-03-05","debited_account":"A","credited_account":"B","amount":"30"}` {
		t.Fatalf("unexpected first row %s", rows[0].JSON)
	}
	if rows[1].JSON != `{"date":"2024-03-05","debited_account":"A","credited_account":"C","amount":"70"}` {
		t.Fatalf("unexpected second row %s", rows[1].JSON)
	}
}

func TestFlowManyToManyCollapsesToSentinel(t *testing.T) {
	sink := &fakeSink{}
	agg := newFlowAggregator(sink, &fakeWarner{})

	feedFlows(t, agg,
		entry("1", "2024-03-05", "A", 60, true),
		entry("2", "2024-03-05", "B", 40, true),
		entry("3", "2024-03-05", "C", 50, false),
		entry("4", "2024-03-05", "D", 50, false),
	)

	rows := sink.byStream(StreamDailyFlows)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	want := `{"date":"2024-03-05","debited_account":"*many*","credited_account":"*many*","amount":"100"}`
	if rows[0].JSON != want {
		t.Fatalf("row = %s, want %s", rows[0].JSON, want)
	}
}

func TestFlowZeroBalanceClosesWindowMidDay(t *testing.T) {
	sink := &fakeSink{}
	agg := newFlowAggregator(sink, &fakeWarner{})

	// Two independently balanced batches inside one day: the running balance
	// returns to zero after each pair, so they never merge into one window.
	feedFlows(t, agg,
		entry("1", "2024-03-05", "A", 50, true),
		entry("2", "2024-03-05", "B", 50, false),
		entry("3", "2024-03-05", "C", 30, true),
		entry("4", "2024-03-05", "D", 30, false),
	)

	rows := sink.byStream(StreamDailyFlows)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].JSON != `{"date":"2024-03-05","debited_account":"A","credited_account":"B","amount":"50"}` {
		t.Fatalf("unexpected first row %s", rows[0].JSON)
	}
	if rows[1].JSON != `{"date":"2024-03-05","debited_account":"C","credited_account":"D","amount":"30"}` {
		t.Fatalf("unexpected second row %s", rows[1].JSON)
	}
}

func TestFlowSameDaySamePairAccumulates(t *testing.T) {
	sink := &fakeSink{}
	agg := newFlowAggregator(sink, &fakeWarner{})

	feedFlows(t, agg,
		entry("1", "2024-03-05", "A", 50, true),
		entry("2", "2024-03-05", "B", 50, false),
		entry("3", "2024-03-05", "A", 20, true),
		entry("4", "2024-03-05", "B", 20, false),
	)

	rows := sink.byStream(StreamDailyFlows)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	want := `{"date":"2024-03-05","debited_account":"A","credited_account":"B","amount":"70"}`
	if rows[0].JSON != want {
		t.Fatalf("row = %s, want %s", rows[0].JSON, want)
	}
}

func TestFlowUnbalancedDayWarnsButStillEmits(t *testing.T) {
	sink := &fakeSink{}
	warner := &fakeWarner{}
	agg := newFlowAggregator(sink, warner)

	feedFlows(t, agg,
		entry("1", "2024-03-05", "A", 100, true),
		entry("2", "2024-03-05", "B", 90, false),
		entry("3", "2024-03-06", "A", 10, true),
		entry("4", "2024-03-06", "B", 10, false),
	)

	if len(warner.warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warner.warnings))
	}
	if warner.warnings[0].Fields["date"] != "2024-03-05" {
		t.Fatalf("warning fields = %v", warner.warnings[0].Fields)
	}

	rows := sink.byStream(StreamDailyFlows)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// The unbalanced day still yields a partial flow, capped by the
	// smaller side.
	if rows[0].JSON != `{"date":"2024-03-05","debited_account":"A","credited_account":"B","amount":"90"}` {
		t.Fatalf("unexpected first row %s", rows[0].JSON)
	}
}

func TestFlowDropsSubToleranceEntries(t *testing.T) {
	sink := &fakeSink{}
	warner := &fakeWarner{}
	agg := newFlowAggregator(sink, warner)

	feedFlows(t, agg,
		entry("1", "2024-03-05", "A", 0.0049, true),
		entry("2", "2024-03-05", "B", 0.0049, false),
	)

	if len(sink.rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(sink.rows))
	}
	if len(warner.warnings) != 0 {
		t.Fatalf("expected no warnings, got %d", len(warner.warnings))
	}
}

func TestFlowKeepsAboveToleranceEntries(t *testing.T) {
	sink := &fakeSink{}
	agg := newFlowAggregator(sink, &fakeWarner{})

	feedFlows(t, agg,
		entry("1", "2024-03-05", "A", 0.0051, true),
		entry("2", "2024-03-05", "B", 0.0051, false),
	)

	rows := sink.byStream(StreamDailyFlows)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
}

func TestFlowOneSidedWindowIsDiscarded(t *testing.T) {
	sink := &fakeSink{}
	warner := &fakeWarner{}
	agg := newFlowAggregator(sink, warner)

	feedFlows(t, agg,
		entry("1", "2024-03-05", "A", 100, true),
	)

	if len(sink.rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(sink.rows))
	}
	// The day never balanced, so the advisory fires at the boundary.
	if len(warner.warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warner.warnings))
	}
}
