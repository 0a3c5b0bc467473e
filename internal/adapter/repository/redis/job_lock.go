package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/ledgerviews/internal/domain"
)

// JobLock serializes aggregation runs of the same taxpayer/period using a
// Redis SETNX lease. The TTL bounds how long a crashed run can block the job.
type JobLock struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewJobLock creates a new JobLock.
func NewJobLock(client *redis.Client, ttl time.Duration) *JobLock {
	return &JobLock{
		client: client,
		prefix: "joblock:",
		ttl:    ttl,
	}
}

// Acquire takes the lock for a taxpayer's period. It returns
// domain.ErrJobLocked when another run already holds it; otherwise the
// returned function releases the lock.
func (l *JobLock) Acquire(ctx context.Context, taxpayerID string, period int) (func(context.Context) error, error) {
	key := fmt.Sprintf("%s%s:%d", l.prefix, taxpayerID, period)

	set, err := l.client.SetNX(ctx, key, "running", l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire job lock: %w", err)
	}
	if !set {
		return nil, domain.ErrJobLocked
	}

	release := func(ctx context.Context) error {
		return l.client.Del(ctx, key).Err()
	}
	return release, nil
}
