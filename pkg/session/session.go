// Package session persists boards: a named collection of people plus the
// unit mode they are charted in.
//
// Three [Store] backends are provided:
//   - [MemoryStore]: in-process map for tests and the single-node server
//   - [FileStore]: one JSON file per board, used by the CLI
//   - [RedisStore]: shared storage for multi-instance API deployments
//
// Boards may carry an expiry. Expired boards read as not found and are
// removed lazily (and by Cleanup).
//
// # Usage
//
//	store, err := session.NewFileStore("") // ~/.config/heightcompare/boards/
//	b, err := session.New("team photo", 0)
//	people, err := b.Collection()
//	people.Add(entity.Spec{Name: "Ana", Height: 168})
//	b.Save(people)
//	err = store.Set(ctx, b)
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sort"
	"time"

	"github.com/matzehuels/heightcompare/pkg/entity"
	"github.com/matzehuels/heightcompare/pkg/errors"
	"github.com/matzehuels/heightcompare/pkg/scale"
	"github.com/matzehuels/heightcompare/pkg/units"
)

// Session is a persisted board.
type Session struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Mode      units.Mode      `json:"mode"`
	People    []entity.Entity `json:"people"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// ExpiresAt is zero for boards that never expire.
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Store is the interface for board storage backends.
type Store interface {
	// Get retrieves a board by ID. Missing and expired boards return an
	// error with code BOARD_NOT_FOUND.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a board, replacing any previous version.
	Set(ctx context.Context, s *Session) error

	// Delete removes a board. Deleting a missing board is not an error.
	Delete(ctx context.Context, id string) error

	// List returns all live boards, most recently updated first.
	List(ctx context.Context) ([]*Session, error)

	Close() error
}

// Default durations.
const (
	// DefaultTTL is the lifetime of boards created through the API.
	DefaultTTL = 7 * 24 * time.Hour
)

// GenerateID creates a random URL-safe board ID.
func GenerateID() (string, error) {
	b := make([]byte, 9)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// New creates an empty board in auto mode. A ttl of zero never expires.
func New(name string, ttl time.Duration) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "generate board id")
	}
	if name == "" {
		name = "Untitled"
	}
	name = entity.SanitizeName(name)
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	s := &Session{
		ID:        id,
		Name:      name,
		Mode:      units.ModeAuto,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ttl > 0 {
		s.ExpiresAt = now.Add(ttl)
	}
	return s, nil
}

// IsExpired reports whether the board has expired at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Collection restores the board's people into a mutable collection.
func (s *Session) Collection(opts ...entity.Option) (*entity.Collection, error) {
	return entity.Restore(s.People, opts...)
}

// Save copies the collection back into the board and bumps UpdatedAt.
func (s *Session) Save(c *entity.Collection) {
	s.People = c.List()
	s.Touch()
}

// Touch bumps UpdatedAt.
func (s *Session) Touch() { s.UpdatedAt = time.Now().UTC() }

// Resolution returns the chart resolution for the board's people and mode.
func (s *Session) Resolution() scale.Resolution {
	return scale.SelectFor(s.People, s.Mode)
}

// now is the clock of stores without an injected one.
var now = time.Now

func notFound(id string) error {
	return errors.New(errors.ErrCodeBoardNotFound, "board %q not found", id)
}

func sortByUpdated(list []*Session) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		}
		return list[i].ID < list[j].ID
	})
}
