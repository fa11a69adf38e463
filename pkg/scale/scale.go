// Package scale selects the display unit and the numeric window of a height
// chart.
//
// [SelectDisplay] is a pure function of the current heights and the unit
// mode. It is recomputed from scratch on every change of either input; there
// is no incremental state.
//
// Auto mode picks one of four tiers by the tallest height:
//
//	> 100 m  → km, window padded by 10% of the spread, snapped to 10 m
//	> 10 m   → m,  window padded by 10% of the spread, snapped to 1 m
//	> 3 m or spread < 50 cm → cm, padded by max(20 cm, 10%), capped at 1000 cm
//	otherwise → ft, padded by 10% of the spread in feet
//
// Forced modes (cm, ft) always apply a pad floor of 20 cm or 1 ft; the forced
// cm window is capped at 2000 cm instead of 1000 cm.
package scale

import (
	"fmt"
	"math"

	"github.com/matzehuels/heightcompare/pkg/units"
)

// Default is the window used when there is nothing to show: a human-scale
// range in centimeters with a little room below ground.
var Default = Resolution{
	Unit:  units.Centimeter,
	Range: Range{Min: -20, Max: 260},
}

const (
	autoCmCap   = 1000 // upper bound of the auto-selected cm window
	manualCmCap = 2000 // upper bound of the forced cm window
	cmPadFloor  = 20   // minimum cm padding
	ftPadFloor  = 1    // minimum ft padding (forced ft only)
	cmLowest    = -20  // lowest cm window bound
	ftLowest    = -1   // lowest ft window bound
	padFraction = 0.1
)

// Range is a chart window in centimeters. Min < Max always holds for ranges
// produced by this package.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Span returns Max - Min.
func (r Range) Span() float64 { return r.Max - r.Min }

// Contains reports whether cm lies within [Min, Max].
func (r Range) Contains(cm float64) bool { return cm >= r.Min && cm <= r.Max }

// Y maps a centimeter value to a vertical pixel coordinate on a chart of the
// given pixel height: Max maps to 0 and Min maps to chartHeight.
func (r Range) Y(cm, chartHeight float64) float64 {
	return chartHeight - (cm-r.Min)*chartHeight/r.Span()
}

// PixelsPerCm returns the vertical scale of a chart of the given height.
func (r Range) PixelsPerCm(chartHeight float64) float64 {
	return chartHeight / r.Span()
}

func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
}

// Resolution is the derived display state: the unit and the window.
type Resolution struct {
	Unit  units.DisplayUnit `json:"unit"`
	Range Range             `json:"range"`
}

// SelectDisplay chooses the display unit and window for the given heights
// (centimeters) under mode.
//
// Heights must be finite and positive; they are not validated here. An empty
// slice yields [Default] regardless of mode.
func SelectDisplay(heights []float64, mode units.Mode) Resolution {
	if len(heights) == 0 {
		return Default
	}

	minH, maxH := heights[0], heights[0]
	for _, h := range heights[1:] {
		minH = math.Min(minH, h)
		maxH = math.Max(maxH, h)
	}
	spread := maxH - minH

	switch mode {
	case units.ModeFoot:
		return Resolution{Unit: units.Foot, Range: feetWindow(minH, maxH, ftPadFloor)}
	case units.ModeCentimeter:
		return Resolution{Unit: units.Centimeter, Range: cmWindow(minH, maxH, manualCmCap)}
	}

	switch {
	case maxH > 10000:
		return Resolution{Unit: units.Kilometer, Range: snappedWindow(minH, maxH, spread, 1000)}
	case maxH > 1000:
		return Resolution{Unit: units.Meter, Range: snappedWindow(minH, maxH, spread, 100)}
	case maxH > 300 || spread < 50:
		return Resolution{Unit: units.Centimeter, Range: cmWindow(minH, maxH, autoCmCap)}
	default:
		return Resolution{Unit: units.Foot, Range: feetWindow(minH, maxH, 0)}
	}
}

// Measured is anything with a canonical height.
type Measured interface {
	HeightCm() float64
}

// SelectFor is [SelectDisplay] over a slice of measured items.
func SelectFor[T Measured](items []T, mode units.Mode) Resolution {
	heights := make([]float64, len(items))
	for i, it := range items {
		heights[i] = it.HeightCm()
	}
	return SelectDisplay(heights, mode)
}

// snappedWindow pads by 10% of the spread and snaps outward to step, never
// going below ground.
func snappedWindow(minH, maxH, spread, step float64) Range {
	pad := spread * padFraction
	r := Range{
		Min: math.Max(0, math.Floor((minH-pad)/step)*step),
		Max: math.Ceil((maxH+pad)/step) * step,
	}
	// A single height on a step boundary snaps both bounds to it.
	if r.Max <= r.Min {
		r.Max = r.Min + step
	}
	return r
}

func cmWindow(minH, maxH, upper float64) Range {
	pad := math.Max(cmPadFloor, (maxH-minH)*padFraction)
	r := Range{
		Min: math.Max(cmLowest, minH-pad),
		Max: math.Min(upper, maxH+pad),
	}
	// Everything is above the cap: drop the cap rather than invert the window.
	if r.Max <= r.Min {
		r.Max = maxH + pad
	}
	return r
}

// feetWindow computes the window in feet and converts it back to
// centimeters. floor is the minimum padding in feet; auto mode passes 0.
func feetWindow(minH, maxH, floor float64) Range {
	minFt, maxFt := units.CmToFeet(minH), units.CmToFeet(maxH)
	pad := math.Max(floor, (maxFt-minFt)*padFraction)
	return Range{
		Min: units.FeetToCm(math.Max(ftLowest, minFt-pad)),
		Max: units.FeetToCm(maxFt + pad),
	}
}
