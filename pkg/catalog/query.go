package catalog

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/ErikKalkoken/go-set"
)

// Query filters characters locally.
type Query struct {
	// Text matches names case-insensitively by substring. Empty matches all.
	Text string
	// Categories keeps characters tagged with any of these IDs.
	Categories []int
	// Genders keeps characters with one of these (lowercase) genders.
	Genders []string
	// Limit caps the result; <= 0 means no cap.
	Limit int
}

// Filter returns the characters matching q, in input order.
func Filter(chars []Character, q Query) []Character {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	cats := set.Of(q.Categories...)
	genders := set.Of(q.Genders...)

	var out []Character
	for _, c := range chars {
		if text != "" && !strings.Contains(strings.ToLower(c.Name), text) {
			continue
		}
		if cats.Size() > 0 && !cats.ContainsAny(slices.Values(c.CategoryIDs)) {
			continue
		}
		if genders.Size() > 0 && !genders.Contains(c.Gender) {
			continue
		}
		out = append(out, c)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out
}

// SortByName sorts characters by name, keeping the input order of equal
// names.
func SortByName(chars []Character) {
	slices.SortStableFunc(chars, func(a, b Character) int {
		return cmp.Compare(a.Name, b.Name)
	})
}

// SortCategories sorts categories by ID.
func SortCategories(cats []Category) {
	slices.SortFunc(cats, func(a, b Category) int { return cmp.Compare(a.ID, b.ID) })
}

// Shuffle returns a shuffled copy of chars. A nil r uses the global source.
func Shuffle(r *rand.Rand, chars []Character) []Character {
	out := slices.Clone(chars)
	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if r == nil {
		rand.Shuffle(len(out), swap)
	} else {
		r.Shuffle(len(out), swap)
	}
	return out
}

// Sample returns up to n characters drawn uniformly without replacement.
func Sample(r *rand.Rand, chars []Character, n int) []Character {
	out := Shuffle(r, chars)
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// FindByID returns the character with id.
func FindByID(chars []Character, id string) (Character, bool) {
	i := slices.IndexFunc(chars, func(c Character) bool { return c.ID == id })
	if i < 0 {
		return Character{}, false
	}
	return chars[i], true
}

// Children groups categories by parent ID. Roots are under 0.
func Children(cats []Category) map[int][]Category {
	tree := make(map[int][]Category)
	for _, c := range cats {
		tree[c.ParentID] = append(tree[c.ParentID], c)
	}
	for _, kids := range tree {
		SortCategories(kids)
	}
	return tree
}
