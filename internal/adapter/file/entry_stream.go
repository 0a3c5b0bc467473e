package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgerviews/internal/domain"
)

// entryRecord is the NDJSON line format of a ledger entry.
type entryRecord struct {
	ID               string          `json:"id"`
	Date             string          `json:"date"`
	AccountCode      string          `json:"account_code"`
	Amount           decimal.Decimal `json:"amount"`
	IsDebit          bool            `json:"is_debit"`
	CounterpartyID   string          `json:"counterparty_id,omitempty"`
	CounterpartyName string          `json:"counterparty_name,omitempty"`
}

// EntryStream reads ledger entries from an NDJSON file. Unlike the database
// path the file is not guaranteed sorted, so ordering is verified as lines are
// read and a violation aborts with domain.ErrStreamNotSorted.
type EntryStream struct {
	file    *os.File
	scanner *bufio.Scanner
	line    int

	lastDate time.Time
	lastID   string
}

// OpenEntries opens an NDJSON entries file.
func OpenEntries(path string) (*EntryStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open entries file: %w", err)
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &EntryStream{file: f, scanner: scanner}, nil
}

// Next returns the next entry, or (nil, nil) at end of file. Blank lines are
// tolerated.
func (s *EntryStream) Next(_ context.Context) (*domain.LedgerEntry, error) {
	for s.scanner.Scan() {
		s.line++
		raw := s.scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var rec entryRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", s.line, err)
		}

		entry := &domain.LedgerEntry{
			ID:               rec.ID,
			AccountCode:      rec.AccountCode,
			Amount:           rec.Amount,
			IsDebit:          rec.IsDebit,
			CounterpartyID:   rec.CounterpartyID,
			CounterpartyName: rec.CounterpartyName,
		}
		if rec.Date != "" {
			date, err := time.Parse("2006-01-02", rec.Date)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", s.line, err)
			}
			entry.Date = date
		}

		if err := s.checkOrder(entry); err != nil {
			return nil, fmt.Errorf("line %d: %w", s.line, err)
		}
		return entry, nil
	}

	if err := s.scanner.Err(); err != nil && err != io.EOF {
		return nil, err
	}
	return nil, nil
}

func (s *EntryStream) checkOrder(entry *domain.LedgerEntry) error {
	if entry.Date.IsZero() {
		// Undated entries are dropped downstream, they carry no position.
		return nil
	}
	if entry.Date.Before(s.lastDate) {
		return domain.ErrStreamNotSorted
	}
	if entry.Date.Equal(s.lastDate) && entry.ID < s.lastID {
		return domain.ErrStreamNotSorted
	}
	s.lastDate = entry.Date
	s.lastID = entry.ID
	return nil
}

// Close closes the underlying file.
func (s *EntryStream) Close(_ context.Context) error {
	return s.file.Close()
}
