package catalog

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/heightcompare/pkg/errors"
)

var testCategories = []Category{
	{ID: CategoryGeneric, Name: "Generic", Path: "generic"},
	{ID: CategoryCelebrity, Name: "Celebrities", Path: "celebrity"},
	{ID: CategoryAnime, Name: "Anime", Path: "anime"},
	{ID: 30, Name: "Dragon Ball", Path: "anime/dragon-ball", ParentID: CategoryAnime},
}

func testCharacters() []Character {
	return []Character{
		{ID: "c3", Name: "Goku", Height: 175, Gender: "male", CategoryIDs: []int{CategoryAnime, 30}},
		{ID: "c1", Name: "Average Man", Height: 175, Gender: "male", CategoryIDs: []int{CategoryGeneric}},
		{ID: "c2", Name: "Beyoncé", Height: 169, Gender: "female", CategoryIDs: []int{CategoryCelebrity}},
		{ID: "c4", Name: "Bulma", Height: 165, Gender: "female", CategoryIDs: []int{CategoryAnime, 30}},
		{ID: "c5", Name: "Mystery", Height: 200, Gender: ""},
	}
}

func TestFromRecord(t *testing.T) {
	rec := Record{
		ID:           "r1",
		Name:         "Goku",
		Height:       1.756,
		CatIDs:       []int{CategoryAnime, 30},
		MediaURL:     "https://img/goku.png",
		ThumbnailURL: "https://img/goku-t.png",
		Gender:       "Male",
		Color:        "#f0a530",
		OrderNum:     4,
	}
	got := FromRecord(rec, testCategories)
	want := Character{
		ID:           "r1",
		Name:         "Goku",
		Height:       176,
		Category:     "Anime",
		Subcategory:  "Dragon Ball",
		Gender:       "male",
		ImageURL:     "https://img/goku.png",
		ThumbnailURL: "https://img/goku-t.png",
		Color:        "#f0a530",
		CategoryIDs:  []int{CategoryAnime, 30},
		Order:        4,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromRecord mismatch (-want +got):\n%s", diff)
	}
}

func TestFromRecordDefaults(t *testing.T) {
	got := FromRecord(Record{ID: "x", Name: "x", Height: 2}, nil)
	if got.Category != UnknownCategory || got.Subcategory != "" || got.Gender != "other" || got.Height != 200 {
		t.Errorf("FromRecord defaults = %+v", got)
	}
	got = FromRecord(Record{ID: "y", Height: 1, CatIDs: []int{99}}, testCategories)
	if got.Category != UnknownCategory {
		t.Errorf("unknown category id: Category = %q", got.Category)
	}
}

func TestMetersToCm(t *testing.T) {
	tests := []struct{ m, cm float64 }{
		{1.8, 180},
		{1.756, 176},
		{828, 82800},
		{0.001, 0},
	}
	for _, tt := range tests {
		if got := MetersToCm(tt.m); got != tt.cm {
			t.Errorf("MetersToCm(%v) = %v, want %v", tt.m, got, tt.cm)
		}
	}
}

func TestFilter(t *testing.T) {
	chars := testCharacters()
	names := func(cs []Character) []string {
		var out []string
		for _, c := range cs {
			out = append(out, c.Name)
		}
		return out
	}

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"all", Query{}, []string{"Goku", "Average Man", "Beyoncé", "Bulma", "Mystery"}},
		{"text", Query{Text: "BU"}, []string{"Bulma"}},
		{"category", Query{Categories: []int{30}}, []string{"Goku", "Bulma"}},
		{"any of categories", Query{Categories: []int{CategoryGeneric, CategoryCelebrity}}, []string{"Average Man", "Beyoncé"}},
		{"gender", Query{Genders: []string{"female"}}, []string{"Beyoncé", "Bulma"}},
		{"combined", Query{Text: "u", Categories: []int{CategoryAnime}, Genders: []string{"male"}}, []string{"Goku"}},
		{"limit", Query{Limit: 2}, []string{"Goku", "Average Man"}},
		{"none", Query{Text: "zzz"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, names(Filter(chars, tt.q))); diff != "" {
				t.Errorf("Filter mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComputeStats(t *testing.T) {
	got := ComputeStats(testCharacters())
	want := Stats{
		Total:       5,
		HeightRange: HeightRange{Min: 165, Max: 200, Average: 177},
		ByGender:    map[string]int{"male": 2, "female": 2, "unknown": 1},
		ByCategory:  map[int]int{CategoryAnime: 2, CategoryGeneric: 1, CategoryCelebrity: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ComputeStats mismatch (-want +got):\n%s", diff)
	}

	empty := ComputeStats(nil)
	if empty.Total != 0 || empty.HeightRange != (HeightRange{}) {
		t.Errorf("ComputeStats(nil) = %+v", empty)
	}
}

func TestSample(t *testing.T) {
	chars := testCharacters()
	r := rand.New(rand.NewPCG(1, 1))

	got := Sample(r, chars, 3)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	seen := map[string]bool{}
	for _, c := range got {
		if seen[c.ID] {
			t.Errorf("duplicate %s", c.ID)
		}
		seen[c.ID] = true
	}
	if len(Sample(r, chars, 50)) != len(chars) {
		t.Error("Sample(n > len) should return every character")
	}
	if chars[0].ID != "c3" {
		t.Error("Sample reordered its input")
	}
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	s := NewSnapshot(testCharacters(), testCategories)

	all, _ := s.Characters(ctx)
	if all[0].Name != "Average Man" || all[len(all)-1].Name != "Mystery" {
		t.Errorf("Characters not sorted by name: %v, %v", all[0].Name, all[len(all)-1].Name)
	}

	celebs, _ := Celebrities(ctx, s)
	if len(celebs) != 1 || celebs[0].ID != "c2" {
		t.Errorf("Celebrities = %v", celebs)
	}
	generic, _ := GenericHumans(ctx, s)
	if len(generic) != 1 || generic[0].ID != "c1" {
		t.Errorf("GenericHumans = %v", generic)
	}

	hits, _ := s.Search(ctx, "b", 1)
	if len(hits) != 1 || hits[0].Name != "Beyoncé" {
		t.Errorf("Search(b, 1) = %v", hits)
	}

	if _, err := s.ByID(ctx, "nope"); !errors.Is(err, errors.ErrCodeCharacterNotFound) {
		t.Errorf("ByID(nope) error = %v", err)
	}
	if c, err := s.ByID(ctx, "c4"); err != nil || c.Name != "Bulma" {
		t.Errorf("ByID(c4) = %v, %v", c, err)
	}
}

func TestChildren(t *testing.T) {
	tree := Children(testCategories)
	if len(tree[0]) != 3 {
		t.Errorf("roots = %d, want 3", len(tree[0]))
	}
	if kids := tree[CategoryAnime]; len(kids) != 1 || kids[0].Name != "Dragon Ball" {
		t.Errorf("anime children = %v", kids)
	}
}

type recordingReplacer struct {
	chars []Character
	cats  []Category
}

func (r *recordingReplacer) Replace(_ context.Context, chars []Character, cats []Category) error {
	r.chars, r.cats = chars, cats
	return nil
}

func TestSync(t *testing.T) {
	dst := &recordingReplacer{}
	n, err := Sync(context.Background(), dst, NewSnapshot(testCharacters(), testCategories))
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 || len(dst.chars) != 5 || len(dst.cats) != len(testCategories) {
		t.Errorf("Sync = %d, replaced %d characters and %d categories", n, len(dst.chars), len(dst.cats))
	}
}
