// Package entity models the people and characters placed on a height chart.
//
// A [Collection] is the single owner of its entities. It assigns IDs,
// validates input at insertion and on update, and derives the chart's
// [scale.Resolution] on demand. It is not safe for concurrent use; callers
// that share a collection guard it themselves.
package entity

import (
	"strings"

	"github.com/matzehuels/heightcompare/pkg/catalog"
)

// Gender is the figure category tag.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
	Other  Gender = "other"
)

// ParseGender lowercases s; anything other than male or female is Other.
func ParseGender(s string) Gender {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case Male, Female:
		return g
	default:
		return Other
	}
}

// Entity is one figure on the chart. Height is in centimeters.
type Entity struct {
	ID       string  `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Height   float64 `json:"height" yaml:"height"`
	Gender   Gender  `json:"gender" yaml:"gender"`
	Color    Color   `json:"color" yaml:"color"`
	ImageURL string  `json:"image_url,omitempty" yaml:"image_url,omitempty"`
}

// HeightCm returns the canonical height.
func (e Entity) HeightCm() float64 { return e.Height }

// Spec describes an entity to add. Zero Gender means Other; a nil Color is
// replaced by the next palette color. Black is a valid explicit color.
type Spec struct {
	Name     string
	Height   float64
	Gender   Gender
	Color    *Color
	ImageURL string
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Name     *string  `json:"name,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Gender   *Gender  `json:"gender,omitempty"`
	Color    *Color   `json:"color,omitempty"`
	ImageURL *string  `json:"image_url,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Height == nil && p.Gender == nil && p.Color == nil && p.ImageURL == nil
}

// FromCharacter turns a catalog character into an entity spec. Characters
// without a usable color are left to the palette.
func FromCharacter(c catalog.Character) Spec {
	s := Spec{
		Name:     c.Name,
		Height:   c.Height,
		Gender:   ParseGender(c.Gender),
		ImageURL: c.ImageURL,
	}
	if c.Color != "" {
		if parsed, err := ParseColor(c.Color); err == nil {
			s.Color = &parsed
		}
	}
	return s
}
