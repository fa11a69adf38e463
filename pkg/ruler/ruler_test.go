package ruler

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/heightcompare/pkg/scale"
	"github.com/matzehuels/heightcompare/pkg/units"
)

func TestIncrements(t *testing.T) {
	tests := []struct {
		name      string
		r         scale.Range
		unit      units.DisplayUnit
		inc, majr float64
	}{
		{"km small", scale.Range{Min: 0, Max: 14000}, units.Kilometer, 1000, 5000},
		{"km medium", scale.Range{Min: 0, Max: 30000}, units.Kilometer, 2000, 10000},
		{"km large", scale.Range{Min: 0, Max: 90000}, units.Kilometer, 5000, 25000},
		{"m small", scale.Range{Min: 1000, Max: 1200}, units.Meter, 10, 50},
		{"m medium", scale.Range{Min: 0, Max: 400}, units.Meter, 20, 100},
		{"m large", scale.Range{Min: 0, Max: 2200}, units.Meter, 50, 250},
		{"ft", scale.Range{Min: 140, Max: 260}, units.Foot, 30.48, 152.4},
		{"cm small", scale.Range{Min: 0, Max: 260}, units.Centimeter, 13, 26},
		{"cm boundary", scale.Range{Min: 0, Max: 500}, units.Centimeter, 13, 26},
		{"cm medium", scale.Range{Min: -20, Max: 900}, units.Centimeter, 25, 50},
		{"cm large", scale.Range{Min: -20, Max: 2000}, units.Centimeter, 50, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inc, major := Increments(tt.r, tt.unit)
			if inc != tt.inc || math.Abs(major-tt.majr) > 1e-9 {
				t.Errorf("Increments(%v, %v) = %v, %v; want %v, %v", tt.r, tt.unit, inc, major, tt.inc, tt.majr)
			}
		})
	}
}

func TestGenerateCentimeters(t *testing.T) {
	marks := Generate(scale.Range{Min: 0, Max: 260}, units.Centimeter)
	if len(marks) != 21 {
		t.Fatalf("len(marks) = %d, want 21", len(marks))
	}
	for i, m := range marks {
		if want := float64(13 * i); m.PositionCm != want {
			t.Errorf("marks[%d].PositionCm = %v, want %v", i, m.PositionCm, want)
		}
		if want := i%2 == 0; m.IsMajor != want {
			t.Errorf("marks[%d].IsMajor = %v, want %v", i, m.IsMajor, want)
		}
	}

	want := []Mark{
		{PositionCm: 0, PrimaryLabel: "0", SecondaryLabel: `0' 0"`, IsMajor: true},
		{PositionCm: 13, PrimaryLabel: "13", SecondaryLabel: `0' 5"`, IsMajor: false},
	}
	if diff := cmp.Diff(want, marks[:2]); diff != "" {
		t.Errorf("first marks mismatch (-want +got):\n%s", diff)
	}
	if got := marks[len(marks)-1]; got.PrimaryLabel != "260" || got.SecondaryLabel != `8' 6"` {
		t.Errorf("last mark = %+v", got)
	}
}

func TestGenerateDefaultWindow(t *testing.T) {
	marks := Generate(scale.Default.Range, scale.Default.Unit)
	want := Mark{PositionCm: -13, PrimaryLabel: "-13", SecondaryLabel: `-1' -7"`}
	if diff := cmp.Diff(want, marks[0]); diff != "" {
		t.Errorf("first mark mismatch (-want +got):\n%s", diff)
	}
	if marks[1].PositionCm != 0 || marks[1].PrimaryLabel != "0" || !marks[1].IsMajor {
		t.Errorf("ground mark = %+v", marks[1])
	}
}

func TestGenerateFeet(t *testing.T) {
	marks := Generate(scale.Range{Min: -30.48, Max: 160}, units.Foot)
	want := []Mark{
		{PositionCm: -30.48, PrimaryLabel: `-1' -0"`, SecondaryLabel: "-30cm"},
		{PositionCm: 0, PrimaryLabel: `0' 0"`, SecondaryLabel: "0cm", IsMajor: true},
		{PositionCm: 30.48, PrimaryLabel: `1' 0"`, SecondaryLabel: "30cm"},
		{PositionCm: 60.96, PrimaryLabel: `2' 0"`, SecondaryLabel: "61cm"},
		{PositionCm: 91.44, PrimaryLabel: `3' 0"`, SecondaryLabel: "91cm"},
		{PositionCm: 121.92, PrimaryLabel: `4' 0"`, SecondaryLabel: "122cm"},
		{PositionCm: 152.4, PrimaryLabel: `5' 0"`, SecondaryLabel: "152cm", IsMajor: true},
	}
	opt := cmp.Comparer(func(a, b float64) bool { return math.Abs(a-b) < 1e-9 })
	if diff := cmp.Diff(want, marks, opt); diff != "" {
		t.Errorf("marks mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateMeters(t *testing.T) {
	marks := Generate(scale.Range{Min: 0, Max: 2200}, units.Meter)
	byPos := map[float64]Mark{}
	for _, m := range marks {
		byPos[m.PositionCm] = m
	}
	tests := []struct {
		pos     float64
		primary string
		major   bool
	}{
		{50, "0.5m", false},
		{250, "2.5m", true},
		{1000, "10m", true},
		{2200, "22m", false},
	}
	for _, tt := range tests {
		m, ok := byPos[tt.pos]
		if !ok {
			t.Errorf("no mark at %v", tt.pos)
			continue
		}
		if m.PrimaryLabel != tt.primary || m.IsMajor != tt.major {
			t.Errorf("mark at %v = %+v, want label %q major %v", tt.pos, m, tt.primary, tt.major)
		}
	}
}

func TestGenerateKilometers(t *testing.T) {
	marks := Generate(scale.Range{Min: 0, Max: 14000}, units.Kilometer)
	if len(marks) != 15 {
		t.Fatalf("len(marks) = %d, want 15", len(marks))
	}
	got := marks[10]
	want := Mark{PositionCm: 10000, PrimaryLabel: "0.1km", SecondaryLabel: `328' 1"`, IsMajor: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mark mismatch (-want +got):\n%s", diff)
	}

	big := Generate(scale.Range{Min: 0, Max: 200000}, units.Kilometer)
	if l := big[len(big)-1]; l.PrimaryLabel != "2km" {
		t.Errorf("last label = %q, want 2km", l.PrimaryLabel)
	}
}

func TestGenerateDegenerate(t *testing.T) {
	if got := Generate(scale.Range{Min: 5, Max: 5}, units.Centimeter); got != nil {
		t.Errorf("empty window produced %d marks", len(got))
	}
	if got := Generate(scale.Range{Min: 10, Max: -10}, units.Meter); got != nil {
		t.Errorf("inverted window produced %d marks", len(got))
	}
	if got := Generate(scale.Range{Min: 1, Max: 12}, units.Centimeter); len(got) != 0 {
		t.Errorf("window between increments produced %d marks", len(got))
	}
}

func TestMajors(t *testing.T) {
	marks := Generate(scale.Range{Min: 0, Max: 260}, units.Centimeter)
	majors := Majors(marks)
	if len(majors) != 11 {
		t.Fatalf("len(Majors) = %d, want 11", len(majors))
	}
	for _, m := range majors {
		if math.Mod(m.PositionCm, 26) != 0 {
			t.Errorf("major at %v is not a multiple of 26", m.PositionCm)
		}
	}
}

func TestGenerateProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for i := 0; i < 300; i++ {
		n := 1 + rng.IntN(5)
		heights := make([]float64, n)
		for j := range heights {
			heights[j] = math.Pow(10, rng.Float64()*5)
		}
		for _, mode := range units.Modes {
			res := scale.SelectDisplay(heights, mode)
			marks := Generate(res.Range, res.Unit)
			inc, _ := Increments(res.Range, res.Unit)

			for k, m := range marks {
				if m.PositionCm < res.Range.Min || m.PositionCm > res.Range.Max {
					t.Fatalf("mark %v outside %v", m.PositionCm, res.Range)
				}
				if k > 0 && math.Abs(m.PositionCm-marks[k-1].PositionCm-inc) > 1e-6 {
					t.Fatalf("marks not evenly spaced at %d: %v", k, marks)
				}
			}
			if diff := cmp.Diff(marks, Generate(res.Range, res.Unit)); diff != "" {
				t.Fatalf("Generate is not deterministic:\n%s", diff)
			}
		}
	}
}
