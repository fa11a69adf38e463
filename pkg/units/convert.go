package units

import "math"

const (
	CmPerInch      = 2.54
	CmPerFoot      = 30.48
	CmPerMeter     = 100.0
	CmPerKilometer = 100000.0
	InchesPerFoot  = 12
)

// CmToFeet converts centimeters to (fractional) feet.
func CmToFeet(cm float64) float64 { return cm / CmPerFoot }

// FeetToCm converts (fractional) feet to centimeters.
func FeetToCm(ft float64) float64 { return ft * CmPerFoot }

// FeetInchesToCm converts a feet-and-inches measurement to whole centimeters,
// the way the person form does: round((ft·12 + in)·2.54).
func FeetInchesToCm(ft, in float64) float64 {
	return Round((ft*InchesPerFoot + in) * CmPerInch)
}

// wholeFootSlack keeps float noise just below a whole foot (e.g. 3·30.48 cm)
// from flooring to the foot below.
const wholeFootSlack = 1e-9

// FeetInches splits cm into whole feet (floored) and the rounded remainder in
// inches. The remainder can round up to 12.
func FeetInches(cm float64) (ft, in int) {
	total := CmToFeet(cm)
	f := math.Floor(total + wholeFootSlack)
	return int(f), int(Round((total - f) * InchesPerFoot))
}

// Round rounds half toward positive infinity, so that -0.5 rounds to 0.
// Ruler and height labels use it instead of [math.Round].
func Round(x float64) float64 {
	return math.Floor(x + 0.5)
}
