package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/heightcompare/pkg/catalog"
	"github.com/matzehuels/heightcompare/pkg/errors"
)

var testCategories = []catalog.Category{
	{ID: catalog.CategoryGeneric, Name: "Generic", Path: "generic"},
	{ID: catalog.CategoryAnime, Name: "Anime", Path: "anime"},
	{ID: 30, Name: "Dragon Ball", Path: "anime/dragon-ball", ParentID: catalog.CategoryAnime},
}

func testCharacters() []catalog.Character {
	return []catalog.Character{
		{ID: "g", Name: "Goku", Height: 175, Gender: "male", CategoryIDs: []int{catalog.CategoryAnime, 30}, ImageURL: "https://img/goku.png"},
		{ID: "b", Name: "Bulma", Height: 165, Gender: "female", CategoryIDs: []int{30, catalog.CategoryAnime}},
		{ID: "m", Name: "Average Man", Height: 175, Gender: "male", CategoryIDs: []int{catalog.CategoryGeneric}},
		{ID: "p", Name: "100% Pure_Name", Height: 120, Gender: "other"},
	}
}

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	src := catalog.NewSnapshot(testCharacters(), testCategories)
	n, err := s.Sync(context.Background(), src)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if n != 4 {
		t.Fatalf("Sync wrote %d characters, want 4", n)
	}
	return s
}

func names(chars []catalog.Character) []string {
	var out []string
	for _, c := range chars {
		out = append(out, c.Name)
	}
	return out
}

func TestSyncRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	chars, err := s.Characters(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"100% Pure_Name", "Average Man", "Bulma", "Goku"}, names(chars)); diff != "" {
		t.Errorf("Characters order (-want +got):\n%s", diff)
	}

	goku := chars[3]
	if goku.Height != 175 || goku.Category != "Anime" || goku.Subcategory != "Dragon Ball" {
		t.Errorf("Goku = %+v", goku)
	}
	if diff := cmp.Diff([]int{catalog.CategoryAnime, 30}, goku.CategoryIDs); diff != "" {
		t.Errorf("category order (-want +got):\n%s", diff)
	}
	if bulma := chars[2]; bulma.Category != "Dragon Ball" {
		t.Errorf("Bulma primary category = %q, want Dragon Ball", bulma.Category)
	}

	cats, err := s.Categories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(testCategories, cats); diff != "" {
		t.Errorf("Categories (-want +got):\n%s", diff)
	}

	at, err := s.SyncedAt(ctx)
	if err != nil || at.IsZero() {
		t.Errorf("SyncedAt = %v, %v", at, err)
	}
}

func TestSyncReplaces(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	if _, err := s.Sync(ctx, catalog.NewSnapshot(testCharacters()[:1], testCategories)); err != nil {
		t.Fatal(err)
	}
	chars, _ := s.Characters(ctx)
	if len(chars) != 1 {
		t.Errorf("after resync %d characters, want 1", len(chars))
	}
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	tests := []struct {
		name string
		run  func() ([]catalog.Character, error)
		want []string
	}{
		{"by category", func() ([]catalog.Character, error) { return s.ByCategory(ctx, 30) }, []string{"Bulma", "Goku"}},
		{"search case-insensitive", func() ([]catalog.Character, error) { return s.Search(ctx, "GOK", 10) }, []string{"Goku"}},
		{"search escapes wildcards", func() ([]catalog.Character, error) { return s.Search(ctx, "0% p", 0) }, []string{"100% Pure_Name"}},
		{"search underscore literal", func() ([]catalog.Character, error) { return s.Search(ctx, "e_n", 0) }, []string{"100% Pure_Name"}},
		{"search limit", func() ([]catalog.Character, error) { return s.Search(ctx, "a", 2) }, []string{"100% Pure_Name", "Average Man"}},
		{"random none", func() ([]catalog.Character, error) { return s.Random(ctx, 0) }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.run()
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, names(got)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}

	random, err := s.Random(ctx, 3)
	if err != nil || len(random) != 3 {
		t.Errorf("Random(3) = %d, %v", len(random), err)
	}
}

func TestByIDAndStats(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	c, err := s.ByID(ctx, "b")
	if err != nil || c.Name != "Bulma" {
		t.Errorf("ByID(b) = %v, %v", c.Name, err)
	}
	if _, err := s.ByID(ctx, "zzz"); !errors.Is(err, errors.ErrCodeCharacterNotFound) {
		t.Errorf("ByID(zzz) error = %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 4 || stats.HeightRange.Min != 120 || stats.HeightRange.Max != 175 {
		t.Errorf("Stats = %+v", stats)
	}
}
