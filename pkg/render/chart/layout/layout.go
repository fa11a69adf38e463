// Package layout computes chart geometry: where each figure, ruler tick and
// label goes for a resolved display window.
//
// All coordinates are pixels with the origin at the top-left. The plot area
// is [Layout.Height] tall; values map to y with [scale.Range.Y], so the
// window's Max sits at y=0 and its Min at y=Height. A footer strip below the
// plot holds the name labels of figures standing near the bottom edge.
package layout

import (
	"github.com/matzehuels/heightcompare/pkg/entity"
	"github.com/matzehuels/heightcompare/pkg/ruler"
	"github.com/matzehuels/heightcompare/pkg/scale"
	"github.com/matzehuels/heightcompare/pkg/units"
)

// Geometry constants.
const (
	DefaultHeight = 600.0 // plot height
	FooterHeight  = 40.0
	MinWidth      = 800.0
	WidthPadding  = 300.0 // room for the two rulers
	FirstFigureX  = 100.0 // center of the first figure
	FigureSpacing = 100.0
	FigureWidth   = 80.0
	HeadRadius    = 8.0
	LabelGap      = 20.0 // height label above the head, name label below ground

	// Ruler geometry, measured from the left and right canvas edges.
	RulerInset      = 30.0
	RulerMinorTick  = 10.0
	RulerMajorTick  = 20.0
	LeftLabelX      = 55.0
	RightLabelInset = 120.0
	HeaderY         = 15.0
	GroundInset     = 60.0
)

// DefaultWatermark is drawn on non-empty charts.
const DefaultWatermark = "HeightComparison.com"

// EmptyHint is the drop-zone text of an empty chart, one entry per line.
var EmptyHint = []string{
	"Drop characters here to compare heights",
	"Add people from the catalog or enter them by hand",
	"Character images are scaled to their real height",
}

// Layout is the computed chart.
type Layout struct {
	Width        float64          `json:"width"`
	Height       float64          `json:"height"`
	CanvasHeight float64          `json:"canvas_height"`
	Resolution   scale.Resolution `json:"resolution"`
	GroundY      float64          `json:"ground_y"`
	Figures      []Figure         `json:"figures"`
	Marks        []Mark           `json:"marks"`

	PrimaryHeader   string  `json:"primary_header"`
	SecondaryHeader string  `json:"secondary_header"`
	Title           string  `json:"title,omitempty"`
	Watermark       string  `json:"watermark,omitempty"`
	WatermarkY      float64 `json:"watermark_y,omitempty"`

	Empty     bool     `json:"empty"`
	EmptyHint []string `json:"empty_hint,omitempty"`
}

// Figure is one person on the chart.
type Figure struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	HeightCm float64 `json:"height_cm"`
	Gender   string  `json:"gender"`
	Color    string  `json:"color"`
	ImageURL string  `json:"image_url,omitempty"`

	CenterX float64 `json:"center_x"`
	Left    float64 `json:"left"`
	Right   float64 `json:"right"`
	Top     float64 `json:"top"`
	Bottom  float64 `json:"bottom"`
	HeadCY  float64 `json:"head_cy"`

	HeightLabel  string  `json:"height_label"`
	HeightLabelY float64 `json:"height_label_y"`
	NameY        float64 `json:"name_y"`
}

// Width returns the horizontal span of the figure.
func (f Figure) Width() float64 { return f.Right - f.Left }

// Height returns the vertical span of the figure's body.
func (f Figure) Height() float64 { return f.Bottom - f.Top }

// HasImage reports whether the figure is drawn from an image.
func (f Figure) HasImage() bool { return f.ImageURL != "" }

// Mark is a ruler mark with its pixel position.
type Mark struct {
	ruler.Mark
	Y float64 `json:"y"`
}

// Option configures [Build].
type Option func(*options)

type options struct {
	height    float64
	title     string
	watermark string
}

// WithHeight sets the plot height. Non-positive values are ignored.
func WithHeight(h float64) Option {
	return func(o *options) {
		if h > 0 {
			o.height = h
		}
	}
}

// WithTitle sets a title drawn centered above the plot.
func WithTitle(t string) Option {
	return func(o *options) { o.title = t }
}

// WithWatermark replaces the watermark text; an empty string removes it.
func WithWatermark(w string) Option {
	return func(o *options) { o.watermark = w }
}

// Build positions people, in order, on the window res with the given ruler
// marks.
func Build(people []entity.Entity, res scale.Resolution, marks []ruler.Mark, opts ...Option) Layout {
	o := options{height: DefaultHeight, watermark: DefaultWatermark}
	for _, opt := range opts {
		opt(&o)
	}

	h := o.height
	width := max(MinWidth, float64(len(people))*FigureSpacing+WidthPadding)
	ground := res.Range.Y(0, h)
	pxPerCm := res.Range.PixelsPerCm(h)

	l := Layout{
		Width:           width,
		Height:          h,
		CanvasHeight:    h + FooterHeight,
		Resolution:      res,
		GroundY:         ground,
		PrimaryHeader:   res.Unit.String(),
		SecondaryHeader: res.Unit.Secondary(),
		Title:           o.title,
		Figures:         make([]Figure, len(people)),
		Marks:           make([]Mark, len(marks)),
	}

	for i, m := range marks {
		l.Marks[i] = Mark{Mark: m, Y: res.Range.Y(m.PositionCm, h)}
	}

	for i, p := range people {
		cx := FirstFigureX + float64(i)*FigureSpacing
		top := ground - p.Height*pxPerCm
		l.Figures[i] = Figure{
			ID:           p.ID,
			Name:         p.Name,
			HeightCm:     p.Height,
			Gender:       string(p.Gender),
			Color:        p.Color.Hex(),
			ImageURL:     p.ImageURL,
			CenterX:      cx,
			Left:         cx - FigureWidth/2,
			Right:        cx + FigureWidth/2,
			Top:          top,
			Bottom:       ground,
			HeadCY:       top - HeadRadius,
			HeightLabel:  units.FormatHeight(p.Height, res.Unit),
			HeightLabelY: top - LabelGap,
			NameY:        ground + LabelGap,
		}
	}

	if len(people) == 0 {
		l.Empty = true
		l.EmptyHint = EmptyHint
	} else if o.watermark != "" {
		l.Watermark = o.watermark
		l.WatermarkY = ground - 50
	}
	return l
}

// Majors returns the major marks, the ones that carry labels.
func (l Layout) Majors() []Mark {
	var out []Mark
	for _, m := range l.Marks {
		if m.IsMajor {
			out = append(out, m)
		}
	}
	return out
}

// LeftRulerX returns the x of the left ruler's base line.
func (l Layout) LeftRulerX() float64 { return RulerInset }

// RightRulerX returns the x of the right ruler's base line.
func (l Layout) RightRulerX() float64 { return l.Width - RulerInset - RulerMajorTick }

// TickEnd returns where a tick from the left ruler ends.
func TickEnd(major bool) float64 {
	if major {
		return RulerInset + RulerMajorTick
	}
	return RulerInset + RulerMinorTick
}

// RightTickEnd returns where a tick of the right ruler ends.
func (l Layout) RightTickEnd(major bool) float64 {
	if major {
		return l.Width - RulerInset
	}
	return l.Width - RulerInset - RulerMinorTick
}

// EmptyBox returns the drop-zone rectangle of an empty chart.
func (l Layout) EmptyBox() (x, y, w, h float64) {
	return 50, l.GroundY - 200, l.Width - 100, 150
}
