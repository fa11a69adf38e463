package layout

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/heightcompare/pkg/entity"
	"github.com/matzehuels/heightcompare/pkg/ruler"
	"github.com/matzehuels/heightcompare/pkg/scale"
	"github.com/matzehuels/heightcompare/pkg/units"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func people(heights ...float64) []entity.Entity {
	out := make([]entity.Entity, len(heights))
	for i, h := range heights {
		out[i] = entity.Entity{
			ID:     string(rune('a' + i)),
			Name:   string(rune('A' + i)),
			Height: h,
			Gender: entity.Other,
			Color:  entity.Palette[i%len(entity.Palette)],
		}
	}
	return out
}

func TestBuildWidth(t *testing.T) {
	tests := []struct {
		n    int
		want float64
	}{
		{0, 800},
		{2, 800},
		{5, 800},
		{6, 900},
		{10, 1300},
	}
	for _, tt := range tests {
		hs := make([]float64, tt.n)
		for i := range hs {
			hs[i] = 170
		}
		l := Build(people(hs...), scale.Default, nil)
		if l.Width != tt.want {
			t.Errorf("n=%d: width = %v, want %v", tt.n, l.Width, tt.want)
		}
	}
}

func TestBuildFigures(t *testing.T) {
	res := scale.Default // -20..260 cm, 600px => 600/280 px per cm
	l := Build(people(140, 170), res, nil)

	if l.CanvasHeight != 640 {
		t.Errorf("CanvasHeight = %v, want 640", l.CanvasHeight)
	}
	wantGround := 600 - 20*600.0/280
	if math.Abs(l.GroundY-wantGround) > 1e-9 {
		t.Errorf("GroundY = %v, want %v", l.GroundY, wantGround)
	}

	f := l.Figures[1]
	top := wantGround - 170*600.0/280
	want := Figure{
		ID: "b", Name: "B", HeightCm: 170, Gender: "other", Color: "#c44144",
		CenterX: 200, Left: 160, Right: 240,
		Top: top, Bottom: wantGround, HeadCY: top - 8,
		HeightLabel: "170cm", HeightLabelY: top - 20, NameY: wantGround + 20,
	}
	if diff := cmp.Diff(want, f, approx); diff != "" {
		t.Errorf("figure mismatch (-want +got):\n%s", diff)
	}
	if f.Width() != FigureWidth {
		t.Errorf("Width() = %v", f.Width())
	}
	if math.Abs(f.Height()-170*600.0/280) > 1e-9 {
		t.Errorf("Height() = %v", f.Height())
	}
	if l.Figures[0].CenterX != 100 {
		t.Errorf("first figure x = %v, want 100", l.Figures[0].CenterX)
	}
}

func TestBuildHeightLabelsFollowUnit(t *testing.T) {
	tests := []struct {
		unit units.DisplayUnit
		h    float64
		want string
	}{
		{units.Kilometer, 82800, "0.83km"},
		{units.Meter, 2000, "20.0m"},
		{units.Foot, 180, `5' 11"`},
		{units.Centimeter, 175.5, "175.5cm"},
	}
	for _, tt := range tests {
		res := scale.Resolution{Unit: tt.unit, Range: scale.Range{Min: 0, Max: 100000}}
		l := Build(people(tt.h), res, nil)
		if got := l.Figures[0].HeightLabel; got != tt.want {
			t.Errorf("%v: label = %q, want %q", tt.unit, got, tt.want)
		}
	}
}

func TestBuildMarks(t *testing.T) {
	res := scale.Resolution{Unit: units.Centimeter, Range: scale.Range{Min: 0, Max: 260}}
	marks := ruler.Generate(res.Range, res.Unit)
	l := Build(people(170), res, marks)

	if len(l.Marks) != len(marks) {
		t.Fatalf("marks = %d, want %d", len(l.Marks), len(marks))
	}
	if l.Marks[0].Y != 600 || l.Marks[len(l.Marks)-1].Y != 0 {
		t.Errorf("first/last mark y = %v/%v, want 600/0", l.Marks[0].Y, l.Marks[len(l.Marks)-1].Y)
	}
	if got := len(l.Majors()); got != len(ruler.Majors(marks)) {
		t.Errorf("Majors = %d", got)
	}
	if l.PrimaryHeader != "cm" || l.SecondaryHeader != "ft" {
		t.Errorf("headers = %q/%q", l.PrimaryHeader, l.SecondaryHeader)
	}

	ft := Build(nil, scale.Resolution{Unit: units.Foot, Range: res.Range}, nil)
	if ft.PrimaryHeader != "ft" || ft.SecondaryHeader != "cm" {
		t.Errorf("ft headers = %q/%q", ft.PrimaryHeader, ft.SecondaryHeader)
	}
}

func TestBuildEmptyAndWatermark(t *testing.T) {
	empty := Build(nil, scale.Default, nil)
	if !empty.Empty || len(empty.EmptyHint) == 0 || empty.Watermark != "" {
		t.Errorf("empty layout = %+v", empty)
	}
	x, y, w, h := empty.EmptyBox()
	if x != 50 || w != 700 || h != 150 || y != empty.GroundY-200 {
		t.Errorf("EmptyBox = %v %v %v %v", x, y, w, h)
	}

	l := Build(people(170), scale.Default, nil)
	if l.Empty || l.Watermark != DefaultWatermark || l.WatermarkY != l.GroundY-50 {
		t.Errorf("watermark = %q at %v", l.Watermark, l.WatermarkY)
	}
	if none := Build(people(170), scale.Default, nil, WithWatermark("")); none.Watermark != "" {
		t.Errorf("WithWatermark(\"\") kept %q", none.Watermark)
	}
}

func TestBuildOptions(t *testing.T) {
	l := Build(people(170), scale.Default, nil, WithHeight(300), WithTitle("Team"))
	if l.Height != 300 || l.CanvasHeight != 340 || l.Title != "Team" {
		t.Errorf("options not applied: %v %v %q", l.Height, l.CanvasHeight, l.Title)
	}
	if ignored := Build(nil, scale.Default, nil, WithHeight(-1)); ignored.Height != DefaultHeight {
		t.Errorf("negative height applied: %v", ignored.Height)
	}
}

func TestRulerGeometry(t *testing.T) {
	l := Build(people(170), scale.Default, nil)
	if l.LeftRulerX() != 30 || TickEnd(true) != 50 || TickEnd(false) != 40 {
		t.Errorf("left ruler: %v %v %v", l.LeftRulerX(), TickEnd(true), TickEnd(false))
	}
	if l.RightRulerX() != 750 || l.RightTickEnd(true) != 770 || l.RightTickEnd(false) != 760 {
		t.Errorf("right ruler: %v %v %v", l.RightRulerX(), l.RightTickEnd(true), l.RightTickEnd(false))
	}
}
