package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/liamcoop/healthrisk/predict"
)

func TestInMemoryResultStore_AbsentAtStart(t *testing.T) {
	store := NewInMemoryResultStore(DefaultConfig())

	_, found, err := store.Get(context.Background(), "session-a")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if found {
		t.Error("new session should have no result")
	}
}

func TestInMemoryResultStore_SetOverwrites(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryResultStore(DefaultConfig())

	if err := store.Set(ctx, "session-a", predict.AtRisk); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := store.Set(ctx, "session-a", predict.Healthy); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	label, found, err := store.Get(ctx, "session-a")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !found || label != predict.Healthy {
		t.Errorf("expected latest label healthy, got %q (found=%v)", label, found)
	}
}

func TestInMemoryResultStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryResultStore(DefaultConfig())

	if err := store.Set(ctx, "session-a", predict.AtRisk); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := store.Set(ctx, "session-b", predict.Healthy); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	a, _, _ := store.Get(ctx, "session-a")
	b, _, _ := store.Get(ctx, "session-b")
	if a != predict.AtRisk {
		t.Errorf("session-a: expected at_risk, got %q", a)
	}
	if b != predict.Healthy {
		t.Errorf("session-b: expected healthy, got %q", b)
	}

	if _, found, _ := store.Get(ctx, "session-c"); found {
		t.Error("session-c should not see any result")
	}
}

func TestInMemoryResultStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryResultStore(DefaultConfig())

	_ = store.Set(ctx, "session-a", predict.AtRisk)
	if err := store.Delete(ctx, "session-a"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, found, _ := store.Get(ctx, "session-a"); found {
		t.Error("deleted session should have no result")
	}

	if err := store.Delete(ctx, "never-existed"); err != nil {
		t.Errorf("Delete() of unknown session should be a no-op, got %v", err)
	}
}

func TestInMemoryResultStore_RejectsInvalid(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryResultStore(DefaultConfig())

	if err := store.Set(ctx, "", predict.AtRisk); err == nil {
		t.Error("Set() should require a session ID")
	}
	if err := store.Set(ctx, "session-a", predict.Label("maybe")); err == nil {
		t.Error("Set() should reject unknown labels")
	}
	if _, _, err := store.Get(ctx, ""); err == nil {
		t.Error("Get() should require a session ID")
	}
}

func TestInMemoryResultStore_TTL(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryResultStore(Config{TTL: time.Minute})

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_ = store.Set(ctx, "old", predict.AtRisk)
	now = now.Add(45 * time.Second)
	_ = store.Set(ctx, "fresh", predict.Healthy)
	now = now.Add(30 * time.Second)

	if _, found, _ := store.Get(ctx, "old"); found {
		t.Error("expired result should not be returned")
	}
	if _, found, _ := store.Get(ctx, "fresh"); !found {
		t.Error("fresh result should still be returned")
	}

	removed, err := store.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep() failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 expired entry swept, got %d", removed)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 entry left, got %d", store.Len())
	}
}

func TestInMemoryResultStore_NoTTL(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryResultStore(Config{})

	now := time.Now()
	store.now = func() time.Time { return now }
	_ = store.Set(ctx, "session-a", predict.Healthy)
	now = now.Add(365 * 24 * time.Hour)

	if _, found, _ := store.Get(ctx, "session-a"); !found {
		t.Error("result should not expire without a TTL")
	}
	if removed, _ := store.Sweep(ctx); removed != 0 {
		t.Errorf("Sweep() without TTL should remove nothing, removed %d", removed)
	}
}

func TestInMemoryResultStore_ConcurrentSessions(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryResultStore(DefaultConfig())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			label := predict.Healthy
			if i%2 == 0 {
				label = predict.AtRisk
			}
			_ = store.Set(ctx, fmt.Sprintf("session-%d", i), label)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		want := predict.Healthy
		if i%2 == 0 {
			want = predict.AtRisk
		}
		got, found, err := store.Get(ctx, fmt.Sprintf("session-%d", i))
		if err != nil || !found || got != want {
			t.Errorf("session-%d: got %q found=%v err=%v, want %q", i, got, found, err, want)
		}
	}
}
