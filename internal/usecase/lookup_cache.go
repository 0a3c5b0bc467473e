package usecase

import (
	"context"
	"time"

	"github.com/iho/ledgerviews/internal/cache"
	"github.com/iho/ledgerviews/internal/domain"
)

// CachedAccountLookup memoizes an AccountLookup behind a bounded TTL cache.
// Misses (nil records) are cached too: absent accounts are looked up as often
// as present ones.
type CachedAccountLookup struct {
	next  AccountLookup
	cache *cache.Cache[string, *domain.AccountRecord]
}

// NewCachedAccountLookup wraps next with a cache of the given bounds.
func NewCachedAccountLookup(next AccountLookup, capacity int, ttl time.Duration) *CachedAccountLookup {
	return &CachedAccountLookup{
		next:  next,
		cache: cache.New[string, *domain.AccountRecord](capacity, ttl),
	}
}

// GetByCode implements AccountLookup.
func (l *CachedAccountLookup) GetByCode(ctx context.Context, code string) (*domain.AccountRecord, error) {
	return l.cache.GetOrCompute(code, func() (*domain.AccountRecord, error) {
		return l.next.GetByCode(ctx, code)
	})
}

// Stats returns the cache hit and miss counters.
func (l *CachedAccountLookup) Stats() (hits, misses uint64) {
	return l.cache.Stats()
}

// CachedPartyLookup memoizes a PartyLookup behind a bounded TTL cache.
type CachedPartyLookup struct {
	next  PartyLookup
	cache *cache.Cache[string, *domain.PartyRecord]
}

// NewCachedPartyLookup wraps next with a cache of the given bounds.
func NewCachedPartyLookup(next PartyLookup, capacity int, ttl time.Duration) *CachedPartyLookup {
	return &CachedPartyLookup{
		next:  next,
		cache: cache.New[string, *domain.PartyRecord](capacity, ttl),
	}
}

// GetByID implements PartyLookup.
func (l *CachedPartyLookup) GetByID(ctx context.Context, id string) (*domain.PartyRecord, error) {
	return l.cache.GetOrCompute(id, func() (*domain.PartyRecord, error) {
		return l.next.GetByID(ctx, id)
	})
}

// CachedOpeningBalanceLookup memoizes an OpeningBalanceLookup. Codes is
// passed through: it runs once per job, before the stream.
type CachedOpeningBalanceLookup struct {
	next  OpeningBalanceLookup
	cache *cache.Cache[string, *domain.OpeningBalance]
}

// NewCachedOpeningBalanceLookup wraps next with a cache of the given bounds.
func NewCachedOpeningBalanceLookup(next OpeningBalanceLookup, capacity int, ttl time.Duration) *CachedOpeningBalanceLookup {
	return &CachedOpeningBalanceLookup{
		next:  next,
		cache: cache.New[string, *domain.OpeningBalance](capacity, ttl),
	}
}

// GetByAccount implements OpeningBalanceLookup.
func (l *CachedOpeningBalanceLookup) GetByAccount(ctx context.Context, code string) (*domain.OpeningBalance, error) {
	return l.cache.GetOrCompute(code, func() (*domain.OpeningBalance, error) {
		return l.next.GetByAccount(ctx, code)
	})
}

// Codes implements OpeningBalanceLookup.
func (l *CachedOpeningBalanceLookup) Codes(ctx context.Context) ([]string, error) {
	return l.next.Codes(ctx)
}
