package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/heightcompare/pkg/cache"
	"github.com/matzehuels/heightcompare/pkg/observability"
)

// DefaultTTL is how long a memoized snapshot stays fresh.
const DefaultTTL = 5 * time.Minute

// Memo answers queries from a time-bounded snapshot of a backing Source.
//
// The first query, and the first one after the snapshot is older than the
// TTL, fetches characters and categories from the source; concurrent
// refreshes share one fetch. A failed fetch leaves the previous state in
// place and is returned to the caller. Memo is safe for concurrent use.
type Memo struct {
	src     Source
	backend string
	ttl     time.Duration
	clock   cache.Clock
	store   cache.Cache
	keyer   cache.Keyer
	rng     *rand.Rand

	mu        sync.Mutex
	snap      *Snapshot
	fetchedAt time.Time
	group     singleflight.Group
}

// MemoOption configures a [Memo].
type MemoOption func(*Memo)

// WithTTL sets the snapshot lifetime.
func WithTTL(d time.Duration) MemoOption {
	return func(m *Memo) { m.ttl = d }
}

// WithClock sets the clock used for expiry.
func WithClock(c cache.Clock) MemoOption {
	return func(m *Memo) { m.clock = c }
}

// WithStore persists snapshots in c so that short-lived processes (the CLI)
// share them across runs.
func WithStore(c cache.Cache, k cache.Keyer) MemoOption {
	return func(m *Memo) {
		m.store = c
		m.keyer = k
	}
}

// WithRand sets the random source used by Random. Every snapshot the memo
// builds draws from r, so access to it is serialized.
func WithRand(r *rand.Rand) MemoOption {
	return func(m *Memo) { m.rng = rand.New(&lockedSource{r: r}) }
}

// lockedSource shares one generator between snapshots whose own locks are
// independent of each other.
type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Uint64()
}

// NewMemo wraps src. backend names the source in cache keys and hooks.
func NewMemo(src Source, backend string, opts ...MemoOption) *Memo {
	m := &Memo{
		src:     src,
		backend: backend,
		ttl:     DefaultTTL,
		clock:   cache.SystemClock{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store != nil && m.keyer == nil {
		m.keyer = cache.NewDefaultKeyer()
	}
	return m
}

// Backend returns the backend name.
func (m *Memo) Backend() string { return m.backend }

// Invalidate drops the in-memory snapshot and its persisted copy.
func (m *Memo) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	m.snap = nil
	m.fetchedAt = time.Time{}
	m.mu.Unlock()
	if m.store != nil {
		return m.store.Delete(ctx, m.storeKey())
	}
	return nil
}

// FetchedAt returns when the current snapshot was fetched (zero if none).
func (m *Memo) FetchedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchedAt
}

func (m *Memo) Characters(ctx context.Context) ([]Character, error) {
	s, err := m.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Characters(ctx)
}

func (m *Memo) Categories(ctx context.Context) ([]Category, error) {
	s, err := m.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Categories(ctx)
}

func (m *Memo) ByCategory(ctx context.Context, id int) ([]Character, error) {
	s, err := m.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.ByCategory(ctx, id)
}

func (m *Memo) Search(ctx context.Context, q string, limit int) ([]Character, error) {
	s, err := m.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Search(ctx, q, limit)
}

// Filter applies an arbitrary query to the snapshot.
func (m *Memo) Filter(ctx context.Context, q Query) ([]Character, error) {
	s, err := m.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(s.characters, q), nil
}

func (m *Memo) Random(ctx context.Context, n int) ([]Character, error) {
	s, err := m.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Random(ctx, n)
}

func (m *Memo) ByID(ctx context.Context, id string) (Character, error) {
	s, err := m.snapshot(ctx)
	if err != nil {
		return Character{}, err
	}
	return s.ByID(ctx, id)
}

func (m *Memo) Stats(ctx context.Context) (Stats, error) {
	s, err := m.snapshot(ctx)
	if err != nil {
		return Stats{}, err
	}
	return s.Stats(ctx)
}

func (m *Memo) fresh(at time.Time) bool {
	return !at.IsZero() && m.clock.Now().Sub(at) < m.ttl
}

func (m *Memo) snapshot(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	if m.snap != nil && m.fresh(m.fetchedAt) {
		s := m.snap
		m.mu.Unlock()
		observability.Catalog().OnMemoHit(ctx, m.backend)
		return s, nil
	}
	m.mu.Unlock()

	v, err, _ := m.group.Do("snapshot", func() (any, error) {
		m.mu.Lock()
		if m.snap != nil && m.fresh(m.fetchedAt) {
			s := m.snap
			m.mu.Unlock()
			return s, nil
		}
		m.mu.Unlock()

		s, at, err := m.load(ctx)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.snap, m.fetchedAt = s, at
		m.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// persisted is the stored form of a snapshot.
type persisted struct {
	Characters []Character `json:"characters"`
	Categories []Category  `json:"categories"`
	FetchedAt  time.Time   `json:"fetched_at"`
}

func (m *Memo) storeKey() string {
	return m.keyer.CatalogKey(m.backend, "snapshot")
}

// load returns a persisted snapshot if one is still fresh, otherwise fetches
// from the source.
func (m *Memo) load(ctx context.Context) (*Snapshot, time.Time, error) {
	if m.store != nil {
		if data, ok, err := m.store.Get(ctx, m.storeKey()); err == nil && ok {
			var p persisted
			if json.Unmarshal(data, &p) == nil && m.fresh(p.FetchedAt) {
				observability.Cache().OnCacheHit(ctx, "catalog")
				return m.newSnapshot(p.Characters, p.Categories), p.FetchedAt, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "catalog")
	}

	start := time.Now()
	chars, cats, err := fetchAll(ctx, m.src)
	observability.Catalog().OnFetch(ctx, m.backend, len(chars), time.Since(start), err)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("fetch %s catalog: %w", m.backend, err)
	}
	at := m.clock.Now()

	if m.store != nil {
		if data, err := json.Marshal(persisted{Characters: chars, Categories: cats, FetchedAt: at}); err == nil {
			if m.store.Set(ctx, m.storeKey(), data, m.ttl) == nil {
				observability.Cache().OnCacheSet(ctx, "catalog", len(data))
			}
		}
	}
	return m.newSnapshot(chars, cats), at, nil
}

func (m *Memo) newSnapshot(chars []Character, cats []Category) *Snapshot {
	s := NewSnapshot(chars, cats)
	if m.rng != nil {
		s.WithRand(m.rng)
	}
	return s
}

// fetchAll loads characters and categories concurrently.
func fetchAll(ctx context.Context, src Source) ([]Character, []Category, error) {
	var (
		chars []Character
		cats  []Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		chars, err = src.Characters(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = src.Categories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return chars, cats, nil
}

var _ Source = (*Memo)(nil)
