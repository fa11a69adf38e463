package units

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/matzehuels/heightcompare/pkg/errors"
)

func TestParseDisplayUnit(t *testing.T) {
	tests := []struct {
		in      string
		want    DisplayUnit
		wantErr bool
	}{
		{"cm", Centimeter, false},
		{"M", Meter, false},
		{" km ", Kilometer, false},
		{"feet", Foot, false},
		{"yard", Centimeter, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDisplayUnit(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDisplayUnit(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidUnit) {
					t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidUnit)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseDisplayUnit(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDisplayUnitString(t *testing.T) {
	want := map[DisplayUnit]string{Centimeter: "cm", Meter: "m", Kilometer: "km", Foot: "ft"}
	for _, u := range All {
		if got := u.String(); got != want[u] {
			t.Errorf("%d.String() = %q, want %q", int(u), got, want[u])
		}
		back, err := ParseDisplayUnit(u.String())
		if err != nil || back != u {
			t.Errorf("ParseDisplayUnit(%q) = %v, %v; want %v", u.String(), back, err, u)
		}
	}
	if got := Foot.Secondary(); got != "cm" {
		t.Errorf("Foot.Secondary() = %q, want cm", got)
	}
	if got := Meter.Secondary(); got != "ft" {
		t.Errorf("Meter.Secondary() = %q, want ft", got)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeAuto, false},
		{"auto", ModeAuto, false},
		{"CM", ModeCentimeter, false},
		{"ft", ModeFoot, false},
		{"m", ModeAuto, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestModeJSON(t *testing.T) {
	type payload struct {
		Mode Mode        `json:"mode"`
		Unit DisplayUnit `json:"unit"`
	}
	data, err := json.Marshal(payload{Mode: ModeFoot, Unit: Kilometer})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"mode":"ft","unit":"km"}` {
		t.Errorf("Marshal = %s", data)
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"mode":"cm","unit":"m"}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.Mode != ModeCentimeter || p.Unit != Meter {
		t.Errorf("Unmarshal = %+v", p)
	}
	if err := json.Unmarshal([]byte(`{"mode":"yards"}`), &p); err == nil {
		t.Error("Unmarshal of unknown mode should fail")
	}
}

func TestFeetInches(t *testing.T) {
	tests := []struct {
		cm     float64
		ft, in int
	}{
		{0, 0, 0},
		{30.48, 1, 0},
		{180, 5, 11},
		{152.4, 5, 0},
		{-13, -1, 7},
	}

	for _, tt := range tests {
		ft, in := FeetInches(tt.cm)
		if ft != tt.ft || in != tt.in {
			t.Errorf("FeetInches(%v) = %d, %d; want %d, %d", tt.cm, ft, in, tt.ft, tt.in)
		}
	}
}

func TestFormatFeetInches(t *testing.T) {
	tests := []struct {
		cm     float64
		plain  string
		signed string
	}{
		{180, `5' 11"`, `5' 11"`},
		{0, `0' 0"`, `0' 0"`},
		{-13, `-1' 7"`, `-1' -7"`},
		{-30.48, `-1' 0"`, `-1' -0"`},
	}

	for _, tt := range tests {
		if got := FormatFeetInches(tt.cm); got != tt.plain {
			t.Errorf("FormatFeetInches(%v) = %q, want %q", tt.cm, got, tt.plain)
		}
		if got := FormatFeetInchesSigned(tt.cm); got != tt.signed {
			t.Errorf("FormatFeetInchesSigned(%v) = %q, want %q", tt.cm, got, tt.signed)
		}
	}
}

func TestFormatHeight(t *testing.T) {
	tests := []struct {
		cm   float64
		unit DisplayUnit
		want string
	}{
		{180, Centimeter, "180cm"},
		{180.5, Centimeter, "180.5cm"},
		{110.00000000000001, Centimeter, "110cm"},
		{167.64000000000001, Centimeter, "167.64cm"},
		{152.4, Centimeter, "152.4cm"},
		{180, Foot, `5' 11"`},
		{180, Meter, "1.80m"},
		{4500, Meter, "45.0m"},
		{12000, Kilometer, "0.12km"},
		{884900, Kilometer, "8.8km"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatHeight(tt.cm, tt.unit); got != tt.want {
				t.Errorf("FormatHeight(%v, %v) = %q, want %q", tt.cm, tt.unit, got, tt.want)
			}
		})
	}
}

func TestParsedHeightLabels(t *testing.T) {
	tests := []struct{ in, want string }{
		{`5'6"`, "168cm"},
		{"1.1m", "110cm"},
		{"1.75m", "175cm"},
		{"0.123km", "12300cm"},
		{"1805mm", "180.5cm"},
	}
	for _, tt := range tests {
		cm, err := ParseHeight(tt.in)
		if err != nil {
			t.Fatalf("ParseHeight(%q): %v", tt.in, err)
		}
		if got := FormatHeight(cm, Centimeter); got != tt.want {
			t.Errorf("FormatHeight(ParseHeight(%q)) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCm(t *testing.T) {
	tests := []struct {
		cm   float64
		want string
	}{
		{0, "0"},
		{-0.001, "0"},
		{100, "100"},
		{-30.48, "-30.48"},
		{12.346, "12.35"},
		{1.2, "1.2"},
	}
	for _, tt := range tests {
		if got := FormatCm(tt.cm); got != tt.want {
			t.Errorf("FormatCm(%v) = %q, want %q", tt.cm, got, tt.want)
		}
	}
}

func TestFeetInchesToCm(t *testing.T) {
	tests := []struct {
		ft, in float64
		want   float64
	}{
		{5, 11, 180},
		{6, 0, 183},
		{0, 0, 0},
		{5, 6, 168},
	}
	for _, tt := range tests {
		if got := FeetInchesToCm(tt.ft, tt.in); got != tt.want {
			t.Errorf("FeetInchesToCm(%v, %v) = %v, want %v", tt.ft, tt.in, got, tt.want)
		}
	}
}

func TestRound(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0.5, 1},
		{-0.5, 0},
		{1.49, 1},
		{-1.5, -1},
	}
	for _, tt := range tests {
		if got := Round(tt.in); got != tt.want {
			t.Errorf("Round(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseHeight(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"180", 180, false},
		{"180cm", 180, false},
		{"180 cm", 180, false},
		{"1.8m", 180, false},
		{"0.12km", 12000, false},
		{"1800mm", 180, false},
		{`5'11"`, 180, false},
		{`5'11`, 180, false},
		{"5ft 11in", 180, false},
		{`5'6"`, 168, false},
		{"6 ft", 183, false},
		{"71in", 180, false},
		{"5.5ft", 168, false},
		{"1m 80cm", 180, false},
		{"1.1m", 110, false},
		{"5 Feet 11 Inches", 180, false},

		{"", 0, true},
		{"tall", 0, true},
		{"0", 0, true},
		{"0.1in", 0, true},
		{"5 11", 0, true},
		{"5 miles", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHeight(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHeight(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidHeight) {
					t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidHeight)
				}
				return
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseHeight(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
