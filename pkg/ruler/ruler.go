// Package ruler generates the tick marks drawn along the chart axes.
//
// [Generate] is a pure function of a [scale.Range] and the display unit. The
// increment ladder depends on the unit and the span of the window:
//
//	km: 1000 cm, 2000 cm above a 20000 cm span, 5000 cm above 50000; major every 5
//	m:  10 cm, 20 cm above a 200 cm span, 50 cm above 500; major every 5
//	ft: one foot (30.48 cm); major every 5 ft
//	cm: 13 cm, 25 cm above a 500 cm span, 50 cm above 1000; major every 2
//
// Marks start at the first multiple of the increment at or above the lower
// bound and continue up to and including the upper bound.
package ruler

import (
	"math"
	"strconv"

	"github.com/matzehuels/heightcompare/pkg/scale"
	"github.com/matzehuels/heightcompare/pkg/units"
)

// majorTolerance absorbs float error when testing fractional-foot positions
// against the major increment.
const majorTolerance = 1e-6

// Mark is one tick on the ruler.
type Mark struct {
	PositionCm     float64 `json:"position_cm"`
	PrimaryLabel   string  `json:"primary_label"`
	SecondaryLabel string  `json:"secondary_label"`
	IsMajor        bool    `json:"is_major"`
}

// Increments returns the minor and major tick spacing (cm) for r in unit.
func Increments(r scale.Range, unit units.DisplayUnit) (inc, major float64) {
	span := r.Span()
	switch unit {
	case units.Kilometer:
		inc = tier(span, 50000, 20000, 5000, 2000, 1000)
		return inc, inc * 5
	case units.Meter:
		inc = tier(span, 500, 200, 50, 20, 10)
		return inc, inc * 5
	case units.Foot:
		return units.CmPerFoot, 5 * units.CmPerFoot
	default:
		inc = tier(span, 1000, 500, 50, 25, 13)
		return inc, inc * 2
	}
}

func tier(span, hi, mid, big, medium, small float64) float64 {
	switch {
	case span > hi:
		return big
	case span > mid:
		return medium
	default:
		return small
	}
}

// Generate returns the ordered marks for r in unit. A window narrower than
// one increment yields at most one mark; an inverted window yields none.
func Generate(r scale.Range, unit units.DisplayUnit) []Mark {
	if !(r.Min < r.Max) {
		return nil
	}
	inc, major := Increments(r, unit)
	first := math.Ceil(r.Min / inc)

	var marks []Mark
	for i := 0; ; i++ {
		pos := (first + float64(i)) * inc
		if pos > r.Max {
			break
		}
		if pos < r.Min {
			continue
		}
		if pos == 0 {
			pos = 0 // no "-0" labels
		}
		primary, secondary := Labels(pos, unit)
		marks = append(marks, Mark{
			PositionCm:     pos,
			PrimaryLabel:   primary,
			SecondaryLabel: secondary,
			IsMajor:        isMultiple(pos, major),
		})
	}
	return marks
}

// Majors returns the major subsequence of marks.
func Majors(marks []Mark) []Mark {
	var out []Mark
	for _, m := range marks {
		if m.IsMajor {
			out = append(out, m)
		}
	}
	return out
}

// Labels formats a ruler position in the primary unit and the secondary one.
func Labels(cm float64, unit units.DisplayUnit) (primary, secondary string) {
	switch unit {
	case units.Kilometer:
		d := 1
		if cm >= units.CmPerKilometer {
			d = 0
		}
		return units.FormatFixed(cm/units.CmPerKilometer, d) + "km", units.FormatFeetInches(cm)
	case units.Meter:
		d := 1
		if cm >= 1000 {
			d = 0
		}
		return units.FormatFixed(cm/units.CmPerMeter, d) + "m", units.FormatFeetInches(cm)
	case units.Foot:
		return units.FormatFeetInchesSigned(cm), roundedCm(cm) + "cm"
	default:
		return roundedCm(cm), units.FormatFeetInchesSigned(cm)
	}
}

func roundedCm(cm float64) string {
	return strconv.Itoa(int(units.Round(cm)))
}

func isMultiple(pos, step float64) bool {
	rem := math.Mod(math.Abs(pos), step)
	return rem < majorTolerance || step-rem < majorTolerance
}
