package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/matzehuels/heightcompare/pkg/cache"
	"github.com/matzehuels/heightcompare/pkg/errors"
)

// MemoryStore keeps boards in process. Boards are stored as JSON so callers
// never share state with the store.
type MemoryStore struct {
	mu     sync.RWMutex
	boards map[string][]byte
	clock  cache.Clock
}

// NewMemoryStore returns an empty store. A nil clock uses the system clock.
func NewMemoryStore(clock cache.Clock) *MemoryStore {
	if clock == nil {
		clock = cache.SystemClock{}
	}
	return &MemoryStore{boards: make(map[string][]byte), clock: clock}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	data, ok := s.boards[id]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(id)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse board: %w", err)
	}
	if sess.IsExpired(s.clock.Now()) {
		_ = s.Delete(ctx, id)
		return nil, notFound(id)
	}
	return &sess, nil
}

func (s *MemoryStore) Set(ctx context.Context, sess *Session) error {
	if err := errors.ValidateBoardID(sess.ID); err != nil {
		return err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}
	s.mu.Lock()
	s.boards[sess.ID] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.boards, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*Session, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.boards))
	for id := range s.boards {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	var out []*Session
	for _, id := range ids {
		sess, err := s.Get(ctx, id)
		if errors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	sortByUpdated(out)
	return out, nil
}

// Cleanup removes expired boards.
func (s *MemoryStore) Cleanup(ctx context.Context) error {
	_, err := s.List(ctx)
	return err
}

func (s *MemoryStore) Close() error { return nil }

// Len returns the number of stored boards, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.boards)
}

var _ Store = (*MemoryStore)(nil)
