package entity

import (
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/matzehuels/heightcompare/pkg/errors"
	"github.com/matzehuels/heightcompare/pkg/scale"
	"github.com/matzehuels/heightcompare/pkg/units"
)

var namePolicy = bluemonday.StrictPolicy()

// Collection is the ordered set of entities on one chart.
type Collection struct {
	people []Entity
	newID  func() string
}

// Option configures a [Collection].
type Option func(*Collection)

// WithIDFunc replaces the uuid generator.
func WithIDFunc(fn func() string) Option {
	return func(c *Collection) { c.newID = fn }
}

// NewCollection returns an empty collection.
func NewCollection(opts ...Option) *Collection {
	c := &Collection{newID: uuid.NewString}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Restore builds a collection from previously stored entities, keeping their
// IDs. Entities are re-validated; entries without an ID get a fresh one.
func Restore(people []Entity, opts ...Option) (*Collection, error) {
	c := NewCollection(opts...)
	seen := make(map[string]bool, len(people))
	for _, p := range people {
		e, err := c.normalize(p)
		if err != nil {
			return nil, err
		}
		if e.ID == "" || seen[e.ID] {
			e.ID = c.newID()
		}
		seen[e.ID] = true
		c.people = append(c.people, e)
	}
	return c, nil
}

// Add validates s and appends it with a new ID.
func (c *Collection) Add(s Spec) (Entity, error) {
	color := Palette[len(c.people)%len(Palette)]
	if s.Color != nil {
		color = *s.Color
	}
	e, err := c.normalize(Entity{
		Name:     s.Name,
		Height:   s.Height,
		Gender:   s.Gender,
		Color:    color,
		ImageURL: s.ImageURL,
	})
	if err != nil {
		return Entity{}, err
	}
	e.ID = c.newID()
	c.people = append(c.people, e)
	return e, nil
}

// Remove deletes the entity with id and reports whether it existed.
func (c *Collection) Remove(id string) bool {
	for i, p := range c.people {
		if p.ID == id {
			c.people = append(c.people[:i], c.people[i+1:]...)
			return true
		}
	}
	return false
}

// Update applies patch to the entity with id. The result is validated as a
// whole; on error the entity is unchanged.
func (c *Collection) Update(id string, patch Patch) (Entity, error) {
	i := c.index(id)
	if i < 0 {
		return Entity{}, errors.New(errors.ErrCodePersonNotFound, "person %q not found", id)
	}
	e := c.people[i]
	if patch.Name != nil {
		e.Name = *patch.Name
	}
	if patch.Height != nil {
		e.Height = *patch.Height
	}
	if patch.Gender != nil {
		e.Gender = *patch.Gender
	}
	if patch.Color != nil {
		e.Color = *patch.Color
	}
	if patch.ImageURL != nil {
		e.ImageURL = *patch.ImageURL
	}
	e, err := c.normalize(e)
	if err != nil {
		return Entity{}, err
	}
	c.people[i] = e
	return e, nil
}

// Clear removes every entity.
func (c *Collection) Clear() { c.people = nil }

// List returns a copy of the entities in insertion order.
func (c *Collection) List() []Entity {
	out := make([]Entity, len(c.people))
	copy(out, c.people)
	return out
}

// Get returns the entity with id.
func (c *Collection) Get(id string) (Entity, bool) {
	if i := c.index(id); i >= 0 {
		return c.people[i], true
	}
	return Entity{}, false
}

// Len returns the number of entities.
func (c *Collection) Len() int { return len(c.people) }

// Heights returns every height in insertion order.
func (c *Collection) Heights() []float64 {
	hs := make([]float64, len(c.people))
	for i, p := range c.people {
		hs[i] = p.Height
	}
	return hs
}

// Resolution derives the display unit and window for the current entities.
// It is recomputed on every call.
func (c *Collection) Resolution(mode units.Mode) scale.Resolution {
	return scale.SelectFor(c.people, mode)
}

func (c *Collection) index(id string) int {
	for i, p := range c.people {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (c *Collection) normalize(e Entity) (Entity, error) {
	e.Name = SanitizeName(e.Name)
	if err := errors.ValidateName(e.Name); err != nil {
		return Entity{}, err
	}
	if err := errors.ValidateHeight(e.Height); err != nil {
		return Entity{}, err
	}
	e.Gender = ParseGender(string(e.Gender))
	e.ImageURL = strings.TrimSpace(e.ImageURL)
	if e.ImageURL != "" {
		if err := errors.ValidateURL(e.ImageURL); err != nil {
			return Entity{}, err
		}
	}
	return e, nil
}

// SanitizeName strips markup from a display name and trims it.
func SanitizeName(name string) string {
	return strings.TrimSpace(html.UnescapeString(namePolicy.Sanitize(name)))
}
