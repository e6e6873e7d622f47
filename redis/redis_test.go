package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/asavras/filelock"
	"github.com/redis/go-redis/v9"
)

func getTestClient(t *testing.T) redis.UniversalClient {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set, skipping redis lock tests")
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("failed to parse redis url: %v", err)
	}

	client := redis.NewClient(opts)
	t.Cleanup(func() {
		client.Close()
	})

	return client
}

func TestLock(t *testing.T) {
	client := getTestClient(t)
	svc := New(client)
	lock := svc.NewLock("test-key")

	ctx := context.Background()

	if err := lock.Lock(ctx); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	if err := lock.Unlock(ctx); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
}

func TestLockReentrant(t *testing.T) {
	client := getTestClient(t)
	svc := New(client)
	lock := svc.NewLock("test-key")

	ctx := context.Background()

	if err := lock.Lock(ctx); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	// Second lock on same locker should return immediately
	if err := lock.Lock(ctx); err != nil {
		t.Fatalf("Lock() second call error = %v", err)
	}

	if err := lock.Unlock(ctx); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
}

func TestTryLockFails(t *testing.T) {
	client := getTestClient(t)
	svc := New(client)
	lock1 := svc.NewLock("test-key")
	lock2 := svc.NewLock("test-key")

	ctx := context.Background()

	acquired, err := lock1.TryLock(ctx)
	if err != nil {
		t.Fatalf("TryLock() error = %v", err)
	}
	if !acquired {
		t.Fatal("TryLock() should acquire lock")
	}

	// Second locker should fail to acquire
	acquired, err = lock2.TryLock(ctx)
	if err != nil {
		t.Fatalf("TryLock() error = %v", err)
	}
	if acquired {
		t.Fatal("TryLock() should fail when lock is held")
	}

	if err := lock1.Unlock(ctx); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
}

func TestLockTimeout(t *testing.T) {
	client := getTestClient(t)
	holder := New(client).NewLock("test-key-timeout")
	waiter := New(client,
		WithTimeout(200*time.Millisecond),
		WithRetryDelay(20*time.Millisecond),
	).NewLock("test-key-timeout")

	ctx := context.Background()

	if err := holder.Lock(ctx); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	err := waiter.Lock(ctx)
	if !filelock.IsTimeout(err) {
		t.Fatalf("Lock() error = %v, want timeout", err)
	}

	if err := holder.Unlock(ctx); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	// After release the same waiter succeeds.
	if err := waiter.Lock(ctx); err != nil {
		t.Fatalf("Lock() after release error = %v", err)
	}
	if err := waiter.Unlock(ctx); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
}

func TestUnlockIdempotent(t *testing.T) {
	client := getTestClient(t)
	svc := New(client)
	lock := svc.NewLock("test-key")

	ctx := context.Background()

	// Unlock without lock should be no-op
	if err := lock.Unlock(ctx); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	if err := lock.Lock(ctx); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	if err := lock.Unlock(ctx); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	// Double unlock should be no-op
	if err := lock.Unlock(ctx); err != nil {
		t.Fatalf("Unlock() second call error = %v", err)
	}
}

func TestUnlockOnlyOwner(t *testing.T) {
	client := getTestClient(t)
	svc := New(client, WithTTL(50*time.Millisecond))
	lock1 := svc.NewLock("test-key-owner")
	lock2 := svc.NewLock("test-key-owner")

	ctx := context.Background()

	if err := lock1.Lock(ctx); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	// Let the first holder's key expire, then reacquire elsewhere.
	time.Sleep(100 * time.Millisecond)

	acquired, err := lock2.TryLock(ctx)
	if err != nil {
		t.Fatalf("TryLock() error = %v", err)
	}
	if !acquired {
		t.Fatal("TryLock() should acquire after expiry")
	}

	// The stale holder's Unlock must not delete the new owner's key.
	if err := lock1.Unlock(ctx); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	acquired, err = svc.NewLock("test-key-owner").TryLock(ctx)
	if err != nil {
		t.Fatalf("TryLock() error = %v", err)
	}
	if acquired {
		t.Fatal("TryLock() should fail, lock still owned by second holder")
	}

	if err := lock2.Unlock(ctx); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
}

func TestNamespace(t *testing.T) {
	client := getTestClient(t)
	svc1 := New(client, WithNamespace("app1"))
	svc2 := New(client, WithNamespace("app2"))

	lock1 := svc1.NewLock("same-key")
	lock2 := svc2.NewLock("same-key")

	ctx := context.Background()

	acquired1, err := lock1.TryLock(ctx)
	if err != nil {
		t.Fatalf("TryLock() error = %v", err)
	}
	if !acquired1 {
		t.Fatal("TryLock() should acquire lock in app1")
	}

	// Same key but different namespace should acquire independently
	acquired2, err := lock2.TryLock(ctx)
	if err != nil {
		t.Fatalf("TryLock() error = %v", err)
	}
	if !acquired2 {
		t.Fatal("TryLock() should acquire lock in app2")
	}

	if err := lock1.Unlock(ctx); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if err := lock2.Unlock(ctx); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
}
