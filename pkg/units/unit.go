// Package units defines the display units and unit modes of the height chart,
// and the conversions and label formatting shared by the scale, ruler and
// rendering packages.
//
// All heights are canonical centimeters. [DisplayUnit] is the closed set of
// units a chart can be drawn in; [Mode] is the user's choice (automatic or a
// forced unit).
package units

import (
	"fmt"
	"strings"

	"github.com/matzehuels/heightcompare/pkg/errors"
)

// DisplayUnit is the unit a chart is displayed in.
type DisplayUnit int

const (
	Centimeter DisplayUnit = iota
	Meter
	Kilometer
	Foot
)

// All lists every display unit in ladder order.
var All = []DisplayUnit{Centimeter, Meter, Kilometer, Foot}

// String returns the unit symbol ("cm", "m", "km", "ft").
func (u DisplayUnit) String() string {
	switch u {
	case Centimeter:
		return "cm"
	case Meter:
		return "m"
	case Kilometer:
		return "km"
	case Foot:
		return "ft"
	default:
		return fmt.Sprintf("DisplayUnit(%d)", int(u))
	}
}

// Secondary returns the symbol of the unit used by the secondary ruler.
func (u DisplayUnit) Secondary() string {
	if u == Foot {
		return "cm"
	}
	return "ft"
}

// ParseDisplayUnit parses a unit symbol (case-insensitive).
func ParseDisplayUnit(s string) (DisplayUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cm", "centimeter", "centimeters":
		return Centimeter, nil
	case "m", "meter", "meters":
		return Meter, nil
	case "km", "kilometer", "kilometers":
		return Kilometer, nil
	case "ft", "foot", "feet":
		return Foot, nil
	}
	return Centimeter, errors.New(errors.ErrCodeInvalidUnit, "unknown display unit %q (want cm, m, km or ft)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (u DisplayUnit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *DisplayUnit) UnmarshalText(b []byte) error {
	v, err := ParseDisplayUnit(string(b))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// Mode is the user-selected unit intent. It is independent of the entities.
type Mode int

const (
	ModeAuto Mode = iota
	ModeCentimeter
	ModeFoot
)

// Modes lists every mode.
var Modes = []Mode{ModeAuto, ModeCentimeter, ModeFoot}

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeCentimeter:
		return "cm"
	case ModeFoot:
		return "ft"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "auto", "cm" or "ft" (case-insensitive). The empty string
// is auto.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "cm":
		return ModeCentimeter, nil
	case "ft", "feet":
		return ModeFoot, nil
	}
	return ModeAuto, errors.New(errors.ErrCodeInvalidUnit, "unknown unit mode %q (want auto, cm or ft)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
