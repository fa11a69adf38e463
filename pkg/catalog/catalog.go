// Package catalog is the read model over the character database: people,
// animals, buildings and objects with a known height that can be dropped onto
// a chart.
//
// A [Source] answers catalog queries. Remote and local backends live in
// subpackages (sqlite, mongo, seed) and in integrations/supabase. [Memo]
// wraps any Source with a time-bounded snapshot so repeated lookups do not
// hit the backend.
//
// Stored heights are meters; [Character.Height] is centimeters.
package catalog

import (
	"context"
	"math"
	"strings"
)

// Well-known category IDs of the hosted database.
const (
	CategoryGeneric   = 1
	CategoryCelebrity = 2
	CategoryAnime     = 3
	CategoryAnimals   = 6
	CategoryObjects   = 9
)

// UnknownCategory names characters whose primary category is missing.
const UnknownCategory = "Unknown"

// Source answers catalog queries. Implementations must be safe for
// concurrent use.
type Source interface {
	// Characters returns every character ordered by name.
	Characters(ctx context.Context) ([]Character, error)
	// Categories returns every category ordered by ID.
	Categories(ctx context.Context) ([]Category, error)
	// ByCategory returns the characters tagged with category id.
	ByCategory(ctx context.Context, id int) ([]Character, error)
	// Search returns characters whose name contains q (case-insensitive),
	// ordered by name, at most limit of them (limit <= 0 means no limit).
	Search(ctx context.Context, q string, limit int) ([]Character, error)
	// Random returns up to n characters in random order.
	Random(ctx context.Context, n int) ([]Character, error)
	// ByID returns one character or an error with a CHARACTER_NOT_FOUND code.
	ByID(ctx context.Context, id string) (Character, error)
	// Stats summarizes the whole catalog.
	Stats(ctx context.Context) (Stats, error)
}

// Character is a catalog entry ready to be placed on a chart.
type Character struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Height            float64 `json:"height"`
	Category          string  `json:"category"`
	Subcategory       string  `json:"subcategory,omitempty"`
	Gender            string  `json:"gender"`
	ImageURL          string  `json:"image_url,omitempty"`
	ThumbnailURL      string  `json:"thumbnail_url,omitempty"`
	Color             string  `json:"color,omitempty"`
	ColorCustomizable bool    `json:"color_customizable"`
	Description       string  `json:"description,omitempty"`
	Source            string  `json:"source,omitempty"`
	CategoryIDs       []int   `json:"category_ids"`
	Order             int     `json:"order"`
}

// HeightCm returns the canonical height.
func (c Character) HeightCm() float64 { return c.Height }

// HasCategory reports whether the character is tagged with id.
func (c Character) HasCategory(id int) bool {
	for _, cid := range c.CategoryIDs {
		if cid == id {
			return true
		}
	}
	return false
}

// Category is a node of the category tree. ParentID 0 is a root.
type Category struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	ParentID int    `json:"parent_id,omitempty"`
}

// Record is a character row as stored by the backends: height in meters,
// nullable text columns as empty strings.
type Record struct {
	ID                string  `json:"id" yaml:"id" bson:"id"`
	Name              string  `json:"name" yaml:"name" bson:"name"`
	Height            float64 `json:"height" yaml:"height" bson:"height"`
	CatIDs            []int   `json:"cat_ids" yaml:"cat_ids" bson:"cat_ids"`
	MediaType         string  `json:"media_type" yaml:"media_type,omitempty" bson:"media_type"`
	MediaURL          string  `json:"media_url" yaml:"media_url,omitempty" bson:"media_url"`
	ThumbnailURL      string  `json:"thumbnail_url" yaml:"thumbnail_url,omitempty" bson:"thumbnail_url"`
	Color             string  `json:"color" yaml:"color,omitempty" bson:"color"`
	ColorCustomizable bool    `json:"color_customizable" yaml:"color_customizable,omitempty" bson:"color_customizable"`
	ColorProperty     string  `json:"color_property" yaml:"color_property,omitempty" bson:"color_property"`
	OrderNum          int     `json:"order_num" yaml:"order_num,omitempty" bson:"order_num"`
	Gender            string  `json:"gender" yaml:"gender,omitempty" bson:"gender"`
	Description       string  `json:"description" yaml:"description,omitempty" bson:"description"`
	Source            string  `json:"source" yaml:"source,omitempty" bson:"source"`
	CreatedAt         string  `json:"created_at" yaml:"created_at,omitempty" bson:"created_at"`
	UpdatedAt         string  `json:"updated_at" yaml:"updated_at,omitempty" bson:"updated_at"`
}

// CategoryRecord is a stored category row. PID 0 means no parent.
type CategoryRecord struct {
	ID   int    `json:"id" yaml:"id" bson:"id"`
	Name string `json:"name" yaml:"name" bson:"name"`
	Path string `json:"path" yaml:"path" bson:"path"`
	PID  int    `json:"pid" yaml:"pid,omitempty" bson:"pid"`
}

// MetersToCm converts a stored height to whole centimeters.
func MetersToCm(m float64) float64 {
	return math.Floor(m*100 + 0.5)
}

// FromRecord converts a stored row. The first category ID names the primary
// category ("Unknown" if it is missing or not in cats) and the second the
// subcategory.
func FromRecord(rec Record, cats []Category) Character {
	byID := make(map[int]string, len(cats))
	for _, c := range cats {
		byID[c.ID] = c.Name
	}

	ch := Character{
		ID:                rec.ID,
		Name:              rec.Name,
		Height:            MetersToCm(rec.Height),
		Category:          UnknownCategory,
		Gender:            strings.ToLower(rec.Gender),
		ImageURL:          rec.MediaURL,
		ThumbnailURL:      rec.ThumbnailURL,
		Color:             rec.Color,
		ColorCustomizable: rec.ColorCustomizable,
		Description:       rec.Description,
		Source:            rec.Source,
		CategoryIDs:       append([]int(nil), rec.CatIDs...),
		Order:             rec.OrderNum,
	}
	if ch.Gender == "" {
		ch.Gender = "other"
	}
	if len(rec.CatIDs) > 0 {
		if name, ok := byID[rec.CatIDs[0]]; ok && name != "" {
			ch.Category = name
		}
	}
	if len(rec.CatIDs) > 1 {
		ch.Subcategory = byID[rec.CatIDs[1]]
	}
	return ch
}

// FromRecords converts rows in order.
func FromRecords(recs []Record, cats []Category) []Character {
	out := make([]Character, len(recs))
	for i, r := range recs {
		out[i] = FromRecord(r, cats)
	}
	return out
}

// FromCategoryRecord converts a stored category row.
func FromCategoryRecord(rec CategoryRecord) Category {
	return Category{ID: rec.ID, Name: rec.Name, Path: rec.Path, ParentID: rec.PID}
}

// ToRecord converts a character back to a stored row, the inverse of
// [FromRecord] for the stored columns.
func ToRecord(c Character) Record {
	return Record{
		ID:                c.ID,
		Name:              c.Name,
		Height:            c.Height / 100,
		CatIDs:            append([]int(nil), c.CategoryIDs...),
		MediaType:         "image",
		MediaURL:          c.ImageURL,
		ThumbnailURL:      c.ThumbnailURL,
		Color:             c.Color,
		ColorCustomizable: c.ColorCustomizable,
		OrderNum:          c.Order,
		Gender:            c.Gender,
		Description:       c.Description,
		Source:            c.Source,
	}
}
