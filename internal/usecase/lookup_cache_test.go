package usecase

import (
	"context"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/iho/ledgerviews/internal/domain"
	"github.com/iho/ledgerviews/internal/usecase/mocks"
)

func TestCachedAccountLookupMemoizes(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockAccountLookup(ctrl)

	record := &domain.AccountRecord{Code: "1.1", Category: "assets"}
	lookup.EXPECT().GetByCode(gomock.Any(), "1.1").Return(record, nil).Times(1)

	cached := NewCachedAccountLookup(lookup, 16, time.Minute)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		got, err := cached.GetByCode(ctx, "1.1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got != record {
			t.Fatalf("got %+v, want the cached record", got)
		}
	}

	hits, misses := cached.Stats()
	if hits != 2 || misses != 1 {
		t.Fatalf("stats = (%d, %d), want (2, 1)", hits, misses)
	}
}

func TestCachedAccountLookupCachesMisses(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockAccountLookup(ctrl)
	lookup.EXPECT().GetByCode(gomock.Any(), "9.9").Return(nil, nil).Times(1)

	cached := NewCachedAccountLookup(lookup, 16, time.Minute)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		got, err := cached.GetByCode(ctx, "9.9")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got != nil {
			t.Fatalf("expected nil record, got %+v", got)
		}
	}
}

func TestCachedOpeningBalanceLookupPassesCodesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockOpeningBalanceLookup(ctrl)
	lookup.EXPECT().Codes(gomock.Any()).Return([]string{"1.1", "2.1"}, nil).Times(2)

	cached := NewCachedOpeningBalanceLookup(lookup, 16, time.Minute)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		codes, err := cached.Codes(ctx)
		if err != nil || len(codes) != 2 {
			t.Fatalf("codes = (%v, %v)", codes, err)
		}
	}
}
