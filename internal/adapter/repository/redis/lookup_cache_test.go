package redis

import (
	"context"
	"testing"
	"time"

	"github.com/iho/ledgerviews/internal/domain"
)

type stubAccounts struct {
	record *domain.AccountRecord
	calls  int
}

func (s *stubAccounts) GetByCode(_ context.Context, _ string) (*domain.AccountRecord, error) {
	s.calls++
	return s.record, nil
}

type stubParties struct {
	record *domain.PartyRecord
	calls  int
}

func (s *stubParties) GetByID(_ context.Context, _ string) (*domain.PartyRecord, error) {
	s.calls++
	return s.record, nil
}

func TestSharedAccountLookupCachesHits(t *testing.T) {
	client, _ := newTestClient(t)

	source := &stubAccounts{record: &domain.AccountRecord{
		Code:        "701",
		Name:        "Sales",
		Category:    "revenue",
		SubCategory: "sales",
	}}
	lookup := NewSharedAccountLookup(client, source, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		record, err := lookup.GetByCode(ctx, "701")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if record == nil || record.SubCategory != "sales" {
			t.Fatalf("unexpected record %+v", record)
		}
	}

	if source.calls != 1 {
		t.Fatalf("expected a single source call, got %d", source.calls)
	}
}

func TestSharedAccountLookupCachesMisses(t *testing.T) {
	client, _ := newTestClient(t)

	source := &stubAccounts{}
	lookup := NewSharedAccountLookup(client, source, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		record, err := lookup.GetByCode(ctx, "999")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if record != nil {
			t.Fatalf("expected miss, got %+v", record)
		}
	}

	if source.calls != 1 {
		t.Fatalf("expected a single source call, got %d", source.calls)
	}
}

func TestSharedPartyLookupExpires(t *testing.T) {
	client, mr := newTestClient(t)

	source := &stubParties{record: &domain.PartyRecord{ID: "C1", Name: "Acme"}}
	lookup := NewSharedPartyLookup(client, source, time.Second)
	ctx := context.Background()

	if _, err := lookup.GetByID(ctx, "C1"); err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	mr.FastForward(2 * time.Second)

	if _, err := lookup.GetByID(ctx, "C1"); err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	if source.calls != 2 {
		t.Fatalf("expected source to be consulted again after expiry, got %d calls", source.calls)
	}
}
