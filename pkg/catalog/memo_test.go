package catalog

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/matzehuels/heightcompare/pkg/cache"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// countingSource serves a fixed snapshot and counts full fetches.
type countingSource struct {
	*Snapshot
	fetches atomic.Int32
	fail    atomic.Bool
	gate    chan struct{} // when non-nil, Characters blocks until closed
}

func newCountingSource() *countingSource {
	return &countingSource{Snapshot: NewSnapshot(testCharacters(), testCategories)}
}

func (s *countingSource) Characters(ctx context.Context) ([]Character, error) {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.fetches.Add(1)
	if s.fail.Load() {
		return nil, errors.New("backend down")
	}
	return s.Snapshot.Characters(ctx)
}

func TestMemoCachesWithinTTL(t *testing.T) {
	ctx := context.Background()
	clock := cache.NewManualClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	src := newCountingSource()
	m := NewMemo(src, "test", WithClock(clock))

	for i := 0; i < 3; i++ {
		if _, err := m.Characters(ctx); err != nil {
			t.Fatal(err)
		}
		if _, err := m.Search(ctx, "bu", 0); err != nil {
			t.Fatal(err)
		}
		clock.Advance(time.Minute)
	}
	if n := src.fetches.Load(); n != 1 {
		t.Errorf("fetches within TTL = %d, want 1", n)
	}

	clock.Advance(2 * time.Minute) // 5 minutes after the fetch
	if _, err := m.Stats(ctx); err != nil {
		t.Fatal(err)
	}
	if n := src.fetches.Load(); n != 2 {
		t.Errorf("fetches after expiry = %d, want 2", n)
	}
	if got := m.FetchedAt(); !got.Equal(clock.Now()) {
		t.Errorf("FetchedAt = %v, want %v", got, clock.Now())
	}
}

func TestMemoFailureDoesNotPoison(t *testing.T) {
	ctx := context.Background()
	clock := cache.NewManualClock(time.Unix(0, 0))
	src := newCountingSource()
	m := NewMemo(src, "test", WithClock(clock), WithTTL(time.Minute))

	src.fail.Store(true)
	if _, err := m.Characters(ctx); err == nil {
		t.Fatal("expected error from failing backend")
	}

	src.fail.Store(false)
	chars, err := m.Characters(ctx)
	if err != nil {
		t.Fatalf("after recovery: %v", err)
	}
	if len(chars) != 5 {
		t.Errorf("len = %d, want 5", len(chars))
	}

	// An expired snapshot with a failing refresh reports the error.
	clock.Advance(time.Hour)
	src.fail.Store(true)
	if _, err := m.ByID(ctx, "c1"); err == nil {
		t.Error("expected refresh error")
	}
}

func TestMemoCoalescesConcurrentRefresh(t *testing.T) {
	ctx := context.Background()
	src := newCountingSource()
	src.gate = make(chan struct{})
	m := NewMemo(src, "test")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Random(ctx, 2); err != nil {
				t.Error(err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	if n := src.fetches.Load(); n != 1 {
		t.Errorf("concurrent fetches = %d, want 1", n)
	}
}

func TestMemoInvalidate(t *testing.T) {
	ctx := context.Background()
	src := newCountingSource()
	m := NewMemo(src, "test")

	_, _ = m.Categories(ctx)
	if err := m.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	_, _ = m.Categories(ctx)
	if n := src.fetches.Load(); n != 2 {
		t.Errorf("fetches = %d, want 2", n)
	}
}

func TestMemoPersistsSnapshot(t *testing.T) {
	ctx := context.Background()
	clock := cache.NewManualClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	store := cache.NewMemoryCache(cache.WithClock(clock))
	src := newCountingSource()

	first := NewMemo(src, "test", WithClock(clock), WithStore(store, nil))
	if _, err := first.Characters(ctx); err != nil {
		t.Fatal(err)
	}

	// A second memo (a new CLI process) reuses the stored snapshot.
	second := NewMemo(src, "test", WithClock(clock), WithStore(store, nil))
	got, err := second.ByCategory(ctx, CategoryAnime)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("ByCategory = %d characters, want 2", len(got))
	}
	if n := src.fetches.Load(); n != 1 {
		t.Errorf("fetches = %d, want 1", n)
	}

	clock.Advance(DefaultTTL)
	third := NewMemo(src, "test", WithClock(clock), WithStore(store, nil))
	if _, err := third.Characters(ctx); err != nil {
		t.Fatal(err)
	}
	if n := src.fetches.Load(); n != 2 {
		t.Errorf("fetches after expiry = %d, want 2", n)
	}
}

func TestMemoSnapshotsShareRandSafely(t *testing.T) {
	ctx := context.Background()
	clock := cache.NewManualClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	m := NewMemo(newCountingSource(), "test", WithClock(clock), WithRand(rand.New(rand.NewPCG(1, 2))))

	old, err := m.snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	clock.Advance(DefaultTTL + time.Minute)
	fresh, err := m.snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if old == fresh {
		t.Fatal("expired snapshot was not replaced")
	}

	// Run with -race: both snapshots draw from the one generator.
	var wg sync.WaitGroup
	for _, s := range []*Snapshot{old, fresh, old, fresh} {
		wg.Add(1)
		go func(s *Snapshot) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if got, _ := s.Random(ctx, 2); len(got) != 2 {
					t.Errorf("Random(2) returned %d characters", len(got))
					return
				}
			}
		}(s)
	}
	wg.Wait()
}
