package entity

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/matzehuels/heightcompare/pkg/errors"
)

// Color is the RGB fill of a figure.
type Color struct {
	R, G, B uint8
}

// Palette is the set of figure colors offered for new people.
var Palette = []Color{
	{0xf0, 0xa5, 0x30}, // orange
	{0xc4, 0x41, 0x44}, // red
	{0x20, 0xaf, 0xe2}, // blue
	{0x8b, 0x5c, 0xf6}, // purple
	{0xec, 0x48, 0x99}, // pink
	{0x6b, 0x46, 0xc1}, // violet
}

// ParseColor parses "#rrggbb" or "#rgb" (the leading '#' is optional).
func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Color{}, errors.New(errors.ErrCodeInvalidColor, "invalid color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, errors.Wrap(errors.ErrCodeInvalidColor, err, "invalid color %q", s)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MustParseColor is like [ParseColor] but panics on error.
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string { return c.Hex() }

// IsZero reports whether c is the zero value. yaml omitempty relies on it;
// [Spec] uses a nil pointer for "unset" so black stays selectable.
func (c Color) IsZero() bool { return c == Color{} }

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty string leaves
// the zero color.
func (c *Color) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*c = Color{}
		return nil
	}
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// RandomColor picks a palette color. A nil r uses the global source.
func RandomColor(r *rand.Rand) Color {
	if r == nil {
		return Palette[rand.IntN(len(Palette))]
	}
	return Palette[r.IntN(len(Palette))]
}
