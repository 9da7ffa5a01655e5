package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestBucket(t *testing.T, capacity, refill int, interval time.Duration) (*Bucket, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb, capacity, refill, interval), mr
}

func TestAdmitConsumesCapacity(t *testing.T) {
	b, _ := newTestBucket(t, 2, 2, time.Hour)
	ctx := context.Background()

	d, err := b.Admit(ctx, "user-1", 1)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if !d.Allowed {
		t.Fatal("first call should be allowed")
	}
	if d.Remaining != 1 {
		t.Errorf("Remaining = %d, want 1", d.Remaining)
	}

	d, err = b.Admit(ctx, "user-1", 1)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if !d.Allowed {
		t.Fatal("second call should be allowed")
	}
	if d.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", d.Remaining)
	}
}

func TestAdmitDeniesWhenEmpty(t *testing.T) {
	b, _ := newTestBucket(t, 2, 2, time.Hour)
	ctx := context.Background()

	b.Admit(ctx, "user-1", 1)
	b.Admit(ctx, "user-1", 1)

	d, err := b.Admit(ctx, "user-1", 1)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if d.Allowed {
		t.Fatal("third call within the interval should be denied")
	}
	if d.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", d.Remaining)
	}
	if d.RetryAfter <= 0 || d.RetryAfter > 3600 {
		t.Errorf("RetryAfter = %d, want within (0, 3600]", d.RetryAfter)
	}
}

func TestAdmitRefillsAfterInterval(t *testing.T) {
	b, _ := newTestBucket(t, 2, 2, time.Hour)
	ctx := context.Background()

	now := time.Now()
	b.now = func() time.Time { return now }

	b.Admit(ctx, "user-1", 1)
	b.Admit(ctx, "user-1", 1)
	if d, _ := b.Admit(ctx, "user-1", 1); d.Allowed {
		t.Fatal("bucket should be empty")
	}

	// One full interval later the bucket refills to capacity.
	b.now = func() time.Time { return now.Add(time.Hour + time.Second) }
	d, err := b.Admit(ctx, "user-1", 1)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if !d.Allowed {
		t.Fatal("call after refill interval should be allowed")
	}
	if d.Remaining != 1 {
		t.Errorf("Remaining after refill = %d, want 1", d.Remaining)
	}
}

func TestAdmitKeysAreIndependent(t *testing.T) {
	b, _ := newTestBucket(t, 1, 1, time.Hour)
	ctx := context.Background()

	if d, _ := b.Admit(ctx, "user-1", 1); !d.Allowed {
		t.Fatal("user-1 first call should be allowed")
	}
	if d, _ := b.Admit(ctx, "user-1", 1); d.Allowed {
		t.Fatal("user-1 second call should be denied")
	}
	if d, _ := b.Admit(ctx, "user-2", 1); !d.Allowed {
		t.Fatal("user-2 should have a full budget of its own")
	}
}

func TestAdmitBlockedUser(t *testing.T) {
	b, _ := newTestBucket(t, 2, 2, time.Hour)
	ctx := context.Background()

	if err := b.BlockUser(ctx, "user-1", time.Hour); err != nil {
		t.Fatalf("BlockUser: %v", err)
	}

	d, err := b.Admit(ctx, "user-1", 1)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if d.Allowed {
		t.Fatal("blocked user must not be admitted")
	}
	if !d.Blocked {
		t.Fatal("denial should be a policy block, not a rate limit")
	}

	if err := b.UnblockUser(ctx, "user-1"); err != nil {
		t.Fatalf("UnblockUser: %v", err)
	}
	if d, _ := b.Admit(ctx, "user-1", 1); !d.Allowed {
		t.Fatal("unblocked user should be admitted again")
	}
}

func TestAdmitFailsOpenWhenRedisDown(t *testing.T) {
	b, mr := newTestBucket(t, 2, 2, time.Hour)
	ctx := context.Background()
	mr.Close()

	// First calls ride the in-process fallback burst.
	d, err := b.Admit(ctx, "user-1", 1)
	if err != nil {
		t.Fatalf("Admit with Redis down: %v", err)
	}
	if !d.Allowed {
		t.Fatal("fallback should admit within its burst")
	}

	b.Admit(ctx, "user-1", 1)
	if d, _ := b.Admit(ctx, "user-1", 1); d.Allowed {
		t.Fatal("fallback should still enforce the budget per process")
	}
}
