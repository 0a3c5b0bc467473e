package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/ledgerviews/internal/domain"
	"github.com/iho/ledgerviews/internal/usecase"
)

// missMarker caches a registry miss so absent keys don't hit the database on
// every entry.
const missMarker = "\x00miss"

// SharedAccountLookup caches chart-of-accounts records in Redis, sharing the
// working set across engine instances.
type SharedAccountLookup struct {
	client *redis.Client
	next   usecase.AccountLookup
	ttl    time.Duration
}

// NewSharedAccountLookup creates a new SharedAccountLookup wrapping next.
func NewSharedAccountLookup(client *redis.Client, next usecase.AccountLookup, ttl time.Duration) *SharedAccountLookup {
	return &SharedAccountLookup{client: client, next: next, ttl: ttl}
}

// GetByCode resolves an account, consulting Redis before the wrapped lookup.
func (l *SharedAccountLookup) GetByCode(ctx context.Context, code string) (*domain.AccountRecord, error) {
	key := "lookup:account:" + code

	cached, err := l.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if cached == missMarker {
			return nil, nil
		}
		var record domain.AccountRecord
		if err := json.Unmarshal([]byte(cached), &record); err == nil {
			return &record, nil
		}
		// Unreadable payload, fall through to the source of truth.
	case !errors.Is(err, redis.Nil):
		return nil, err
	}

	record, err := l.next.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	l.store(ctx, key, record)
	return record, nil
}

func (l *SharedAccountLookup) store(ctx context.Context, key string, record *domain.AccountRecord) {
	value := missMarker
	if record != nil {
		payload, err := json.Marshal(record)
		if err != nil {
			return
		}
		value = string(payload)
	}
	// Cache population failures are not worth aborting a job over.
	_ = l.client.Set(ctx, key, value, l.ttl).Err()
}

// SharedPartyLookup caches counterparty registry records in Redis.
type SharedPartyLookup struct {
	client *redis.Client
	next   usecase.PartyLookup
	ttl    time.Duration
}

// NewSharedPartyLookup creates a new SharedPartyLookup wrapping next.
func NewSharedPartyLookup(client *redis.Client, next usecase.PartyLookup, ttl time.Duration) *SharedPartyLookup {
	return &SharedPartyLookup{client: client, next: next, ttl: ttl}
}

// GetByID resolves a counterparty, consulting Redis before the wrapped lookup.
func (l *SharedPartyLookup) GetByID(ctx context.Context, id string) (*domain.PartyRecord, error) {
	key := "lookup:party:" + id

	cached, err := l.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if cached == missMarker {
			return nil, nil
		}
		var record domain.PartyRecord
		if err := json.Unmarshal([]byte(cached), &record); err == nil {
			return &record, nil
		}
	case !errors.Is(err, redis.Nil):
		return nil, err
	}

	record, err := l.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	value := missMarker
	if record != nil {
		payload, err := json.Marshal(record)
		if err != nil {
			return record, nil
		}
		value = string(payload)
	}
	_ = l.client.Set(ctx, key, value, l.ttl).Err()
	return record, nil
}
