package units

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/matzehuels/heightcompare/pkg/errors"
)

var (
	heightLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Number", Pattern: `\d+(?:\.\d*)?|\.\d+`},
		{Name: "Unit", Pattern: `(?i:kilometers?|km|centimeters?|cm|millimeters?|mm|meters?|m|feet|foot|ft|inches|inch|in|′|″|''|'|")`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	heightParser = participle.MustBuild[heightExpr](
		participle.Lexer(heightLexer),
		participle.Elide("Whitespace"),
	)
)

// heightExpr is a sum of measurements, e.g. `5' 11"` or `1m 80cm`.
type heightExpr struct {
	Terms []*heightTerm `parser:"@@+"`
}

type heightTerm struct {
	Value float64 `parser:"@Number"`
	Unit  string  `parser:"@Unit?"`
}

// ParseHeight parses a height expression into centimeters.
//
// Accepted forms include plain numbers (centimeters), suffixed values
// ("180cm", "1.8m", "0.12km", "71in", "6 ft") and feet/inch combinations
// (`5'11"`, `5'11`, "5ft 11in"). A bare number directly after a feet term is
// read as inches. Feet and inches are rounded to whole centimeters, as
// [FeetInchesToCm] does, so `5'6"` is 168.
func ParseHeight(expr string) (float64, error) {
	src := strings.TrimSpace(expr)
	if src == "" {
		return 0, errors.New(errors.ErrCodeInvalidHeight, "height cannot be empty")
	}
	ast, err := heightParser.ParseString("", src)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidHeight, err, "parse height %q", expr)
	}

	var metric, inches float64
	imperial, prevFeet := false, false
	for i, t := range ast.Terms {
		factor, feet, ok := unitFactor(t.Unit)
		if !ok {
			return 0, errors.New(errors.ErrCodeInvalidHeight, "unknown unit %q in %q", t.Unit, expr)
		}
		if t.Unit == "" {
			switch {
			case prevFeet:
				factor = CmPerInch
			case len(ast.Terms) == 1:
				factor = 1
			default:
				return 0, errors.New(errors.ErrCodeInvalidHeight, "term %d of %q has no unit", i+1, expr)
			}
		}
		switch factor {
		case CmPerFoot:
			inches += t.Value * InchesPerFoot
			imperial = true
		case CmPerInch:
			inches += t.Value
			imperial = true
		default:
			metric += t.Value * factor
		}
		prevFeet = feet
	}

	total := metric
	if imperial {
		total += FeetInchesToCm(0, inches)
	}
	if err := errors.ValidateHeight(total); err != nil {
		return 0, err
	}
	return total, nil
}

// unitFactor maps a unit token to its size in centimeters. The empty token
// reports ok with a zero factor; the caller decides what a bare number means.
func unitFactor(unit string) (factor float64, feet, ok bool) {
	switch strings.ToLower(unit) {
	case "":
		return 0, false, true
	case "km", "kilometer", "kilometers":
		return CmPerKilometer, false, true
	case "m", "meter", "meters":
		return CmPerMeter, false, true
	case "cm", "centimeter", "centimeters":
		return 1, false, true
	case "mm", "millimeter", "millimeters":
		return 0.1, false, true
	case "ft", "foot", "feet", "'", "′":
		return CmPerFoot, true, true
	case "in", "inch", "inches", `"`, "″", "''":
		return CmPerInch, false, true
	}
	return 0, false, false
}
