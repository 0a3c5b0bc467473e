package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/ledgerviews/internal/domain"
)

func TestJobLockAcquireAndRelease(t *testing.T) {
	client, _ := newTestClient(t)

	lock := NewJobLock(client, time.Minute)
	ctx := context.Background()

	release, err := lock.Acquire(ctx, "12345678", 2024)
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	if _, err := lock.Acquire(ctx, "12345678", 2024); !errors.Is(err, domain.ErrJobLocked) {
		t.Fatalf("expected ErrJobLocked for held lock, got %v", err)
	}

	if err := release(ctx); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	if _, err := lock.Acquire(ctx, "12345678", 2024); err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
}

func TestJobLockIsScopedPerJob(t *testing.T) {
	client, _ := newTestClient(t)

	lock := NewJobLock(client, time.Minute)
	ctx := context.Background()

	if _, err := lock.Acquire(ctx, "12345678", 2024); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	// A different period of the same taxpayer is an independent job.
	if _, err := lock.Acquire(ctx, "12345678", 2023); err != nil {
		t.Fatalf("acquire of different period failed: %v", err)
	}

	if _, err := lock.Acquire(ctx, "87654321", 2024); err != nil {
		t.Fatalf("acquire of different taxpayer failed: %v", err)
	}
}

func TestJobLockExpires(t *testing.T) {
	client, mr := newTestClient(t)

	lock := NewJobLock(client, time.Second)
	ctx := context.Background()

	if _, err := lock.Acquire(ctx, "12345678", 2024); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	mr.FastForward(2 * time.Second)

	if _, err := lock.Acquire(ctx, "12345678", 2024); err != nil {
		t.Fatalf("expected lock to lapse after TTL, got %v", err)
	}
}
