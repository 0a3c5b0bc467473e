package cache

import (
	"errors"
	"testing"
	"time"
)

func TestGetOrComputeMemoizes(t *testing.T) {
	c := New[string, int](4, time.Minute)

	calls := 0
	compute := func() (int, error) {
		calls++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.GetOrCompute("k", compute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 42 {
			t.Fatalf("got %d, want 42", got)
		}
	}

	if calls != 1 {
		t.Fatalf("compute called %d times, want 1", calls)
	}

	hits, misses := c.Stats()
	if hits != 2 || misses != 1 {
		t.Fatalf("stats = (%d, %d), want (2, 1)", hits, misses)
	}
}

func TestComputeErrorsNotCached(t *testing.T) {
	c := New[string, int](4, time.Minute)

	calls := 0
	boom := errors.New("boom")
	compute := func() (int, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return 7, nil
	}

	if _, err := c.GetOrCompute("k", compute); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, err := c.GetOrCompute("k", compute)
	if err != nil || got != 7 {
		t.Fatalf("got (%d, %v), want (7, nil)", got, err)
	}
}

func TestCapacityEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, int](2, time.Minute)

	identity := func(v int) func() (int, error) {
		return func() (int, error) { return v, nil }
	}

	c.GetOrCompute(1, identity(1))
	c.GetOrCompute(2, identity(2))
	c.GetOrCompute(1, identity(1)) // 1 is now most recent
	c.GetOrCompute(3, identity(3)) // evicts 2

	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}

	calls := 0
	c.GetOrCompute(2, func() (int, error) {
		calls++
		return 2, nil
	})
	if calls != 1 {
		t.Fatalf("expected key 2 to have been evicted")
	}

	calls = 0
	c.GetOrCompute(1, func() (int, error) {
		calls++
		return 1, nil
	})
	if calls != 0 {
		t.Fatalf("expected key 1 to still be cached")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New[string, int](4, time.Minute)

	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	c.GetOrCompute("k", func() (int, error) { return 1, nil })

	current = current.Add(2 * time.Minute)

	calls := 0
	got, err := c.GetOrCompute("k", func() (int, error) {
		calls++
		return 2, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 || got != 2 {
		t.Fatalf("expected recompute after expiry, got (%d, calls=%d)", got, calls)
	}
}
