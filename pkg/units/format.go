package units

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatFeetInches renders cm as `5' 11"`.
func FormatFeetInches(cm float64) string {
	ft, in := FeetInches(cm)
	return fmt.Sprintf(`%d' %d"`, ft, in)
}

// FormatFeetInchesSigned renders cm like [FormatFeetInches] but writes the
// inches of negative positions with an explicit sign: `-1' -7"`.
func FormatFeetInchesSigned(cm float64) string {
	ft, in := FeetInches(cm)
	if ft >= 0 {
		return fmt.Sprintf(`%d' %d"`, ft, in)
	}
	if in < 0 {
		in = -in
	}
	return fmt.Sprintf(`%d' -%d"`, ft, in)
}

// FormatFixed formats v with a fixed number of decimals.
func FormatFixed(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// FormatCm formats a centimeter value with at most two decimals and no
// trailing zeros ("180", "180.5", "152.4").
func FormatCm(cm float64) string {
	s := strconv.FormatFloat(cm, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// FormatHeight renders a person's height label in the given display unit.
//
//	km: 0.12km (two decimals below 1 km, one above)
//	m:  1.80m  (two decimals below 10 m, one above)
//	ft: 5' 11"
//	cm: 180cm
func FormatHeight(cm float64, unit DisplayUnit) string {
	switch unit {
	case Kilometer:
		d := 2
		if cm >= CmPerKilometer {
			d = 1
		}
		return FormatFixed(cm/CmPerKilometer, d) + "km"
	case Meter:
		d := 2
		if cm >= 1000 {
			d = 1
		}
		return FormatFixed(cm/CmPerMeter, d) + "m"
	case Foot:
		return FormatFeetInches(cm)
	default:
		return FormatCm(cm) + "cm"
	}
}
