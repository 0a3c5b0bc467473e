package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerviews/internal/domain"
)

type emittedRow struct {
	Stream string
	RowID  string
	JSON   string
}

type fakeSink struct {
	rows       []emittedRow
	deleted    []string
	failOnRow  int
	emitCalled int
}

func (s *fakeSink) Emit(_ context.Context, stream, rowID string, row any) error {
	s.emitCalled++
	if s.failOnRow > 0 && s.emitCalled >= s.failOnRow {
		return fmt.Errorf("sink write rejected")
	}
	payload, err := json.Marshal(row)
	if err != nil {
		return err
	}
	s.rows = append(s.rows, emittedRow{Stream: stream, RowID: rowID, JSON: string(payload)})
	return nil
}

func (s *fakeSink) DeleteJob(_ context.Context, taxpayerID string, period int) error {
	s.deleted = append(s.deleted, fmt.Sprintf("%s.%d", taxpayerID, period))
	s.rows = nil
	return nil
}

func (s *fakeSink) byStream(stream string) []emittedRow {
	var out []emittedRow
	for _, row := range s.rows {
		if row.Stream == stream {
			out = append(out, row)
		}
	}
	return out
}

type warning struct {
	Msg    string
	Fields map[string]any
}

type fakeWarner struct {
	warnings []warning
}

func (w *fakeWarner) Warn(msg string, fields map[string]any) {
	w.warnings = append(w.warnings, warning{Msg: msg, Fields: fields})
}

type fakeAccounts struct {
	records map[string]*domain.AccountRecord
	err     error
	calls   int
}

func (a *fakeAccounts) GetByCode(_ context.Context, code string) (*domain.AccountRecord, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return a.records[code], nil
}

type fakeParties struct {
	records map[string]*domain.PartyRecord
}

func (p *fakeParties) GetByID(_ context.Context, id string) (*domain.PartyRecord, error) {
	return p.records[id], nil
}

type fakeOpening struct {
	balances map[string]*domain.OpeningBalance
}

func (o *fakeOpening) GetByAccount(_ context.Context, code string) (*domain.OpeningBalance, error) {
	return o.balances[code], nil
}

func (o *fakeOpening) Codes(_ context.Context) ([]string, error) {
	codes := make([]string, 0, len(o.balances))
	for code := range o.balances {
		codes = append(codes, code)
	}
	return codes, nil
}

type fakeStream struct {
	entries []*domain.LedgerEntry
	pos     int
}

func (s *fakeStream) Next(_ context.Context) (*domain.LedgerEntry, error) {
	if s.pos >= len(s.entries) {
		return nil, nil
	}
	entry := s.entries[s.pos]
	s.pos++
	return entry, nil
}

func (s *fakeStream) Close(context.Context) error {
	return nil
}

type fakeLocker struct {
	err      error
	acquired int
	released int
}

func (l *fakeLocker) Acquire(context.Context, string, int) (func(context.Context) error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired++
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

type fakeIDs struct {
	seq int
}

func (g *fakeIDs) Generate() string {
	g.seq++
	return fmt.Sprintf("job-%d", g.seq)
}

func entry(id, date, account string, amount float64, isDebit bool) *domain.LedgerEntry {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return &domain.LedgerEntry{
		ID:          id,
		Date:        day,
		AccountCode: account,
		Amount:      decimal.NewFromFloat(amount),
		IsDebit:     isDebit,
	}
}

func withParty(e *domain.LedgerEntry, partyID, name string) *domain.LedgerEntry {
	e.CounterpartyID = partyID
	e.CounterpartyName = name
	return e
}
