package catalog

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/matzehuels/heightcompare/pkg/errors"
)

// Snapshot is an immutable in-memory catalog that answers every [Source]
// query locally.
type Snapshot struct {
	characters []Character
	categories []Category

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// NewSnapshot copies chars and cats, sorting them by name and ID.
func NewSnapshot(chars []Character, cats []Category) *Snapshot {
	s := &Snapshot{
		characters: slices.Clone(chars),
		categories: slices.Clone(cats),
	}
	SortByName(s.characters)
	SortCategories(s.categories)
	return s
}

// WithRand makes Random deterministic for tests.
func (s *Snapshot) WithRand(r *rand.Rand) *Snapshot {
	s.rng = r
	return s
}

func (s *Snapshot) Characters(ctx context.Context) ([]Character, error) {
	return slices.Clone(s.characters), nil
}

func (s *Snapshot) Categories(ctx context.Context) ([]Category, error) {
	return slices.Clone(s.categories), nil
}

func (s *Snapshot) ByCategory(ctx context.Context, id int) ([]Character, error) {
	return Filter(s.characters, Query{Categories: []int{id}}), nil
}

func (s *Snapshot) Search(ctx context.Context, q string, limit int) ([]Character, error) {
	return Filter(s.characters, Query{Text: q, Limit: limit}), nil
}

func (s *Snapshot) Random(ctx context.Context, n int) ([]Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Sample(s.rng, s.characters, n), nil
}

func (s *Snapshot) ByID(ctx context.Context, id string) (Character, error) {
	if c, ok := FindByID(s.characters, id); ok {
		return c, nil
	}
	return Character{}, errors.New(errors.ErrCodeCharacterNotFound, "character %q not found", id)
}

func (s *Snapshot) Stats(ctx context.Context) (Stats, error) {
	return ComputeStats(s.characters), nil
}

// Len returns the number of characters.
func (s *Snapshot) Len() int { return len(s.characters) }

var _ Source = (*Snapshot)(nil)

// Celebrities returns the celebrity category of src.
func Celebrities(ctx context.Context, src Source) ([]Character, error) {
	return src.ByCategory(ctx, CategoryCelebrity)
}

// GenericHumans returns the generic people category of src.
func GenericHumans(ctx context.Context, src Source) ([]Character, error) {
	return src.ByCategory(ctx, CategoryGeneric)
}
