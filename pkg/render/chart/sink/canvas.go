package sink

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/matzehuels/heightcompare/pkg/entity"
	"github.com/matzehuels/heightcompare/pkg/fonts"
	"github.com/matzehuels/heightcompare/pkg/render/chart/layout"
)

// Canvas units are millimeters; the layout is in CSS pixels at 96 dpi.
const (
	mmPerPx = 25.4 / 96
	ptPerPx = 0.75
)

var (
	fontFamily     *canvas.FontFamily
	fontFamilyErr  error
	fontFamilyOnce sync.Once
)

func loadFontFamily() (*canvas.FontFamily, error) {
	fontFamilyOnce.Do(func() {
		ff := canvas.NewFontFamily(fonts.FontFamily)
		if err := ff.LoadFont(fonts.Regular(), 0, canvas.FontRegular); err != nil {
			fontFamilyErr = fmt.Errorf("load regular font: %w", err)
			return
		}
		if err := ff.LoadFont(fonts.Bold(), 0, canvas.FontBold); err != nil {
			fontFamilyErr = fmt.Errorf("load bold font: %w", err)
			return
		}
		fontFamily = ff
	})
	return fontFamily, fontFamilyErr
}

// painter draws layout coordinates (origin top-left, y down) onto a canvas
// context (origin bottom-left, y up).
type painter struct {
	ctx    *canvas.Context
	height float64
	family *canvas.FontFamily
}

func (p painter) x(px float64) float64 { return px * mmPerPx }
func (p painter) y(px float64) float64 { return (p.height - px) * mmPerPx }

func (p painter) line(x1, y1, x2, y2, width float64, stroke color.Color) {
	path := &canvas.Path{}
	path.MoveTo(p.x(x1), p.y(y1))
	path.LineTo(p.x(x2), p.y(y2))
	p.ctx.SetFillColor(canvas.Transparent)
	p.ctx.SetStrokeColor(stroke)
	p.ctx.SetStrokeWidth(width * mmPerPx)
	p.ctx.DrawPath(0, 0, path)
}

// rect draws a rectangle whose top-left corner is (x, top).
func (p painter) rect(x, top, w, h, radius float64, fill, stroke color.Color, strokeWidth float64) {
	p.ctx.SetFillColor(fill)
	p.ctx.SetStrokeColor(stroke)
	p.ctx.SetStrokeWidth(strokeWidth * mmPerPx)
	p.ctx.DrawPath(p.x(x), p.y(top+h), canvas.RoundedRectangle(w*mmPerPx, h*mmPerPx, radius*mmPerPx))
}

func (p painter) circle(cx, cy, r float64, fill, stroke color.Color, strokeWidth float64) {
	p.ctx.SetFillColor(fill)
	p.ctx.SetStrokeColor(stroke)
	p.ctx.SetStrokeWidth(strokeWidth * mmPerPx)
	p.ctx.DrawPath(p.x(cx), p.y(cy), canvas.Circle(r*mmPerPx))
}

func (p painter) text(x, y, sizePx float64, s string, col color.Color, bold bool, align canvas.TextAlign) {
	style := canvas.FontRegular
	if bold {
		style = canvas.FontBold
	}
	face := p.family.Face(sizePx*ptPerPx, col, style, canvas.FontNormal)
	p.ctx.DrawText(p.x(x), p.y(y), canvas.NewTextLine(face, s, align))
}

// drawCanvas paints the layout the way RenderSVG does, with fallback figures
// in place of images.
func drawCanvas(l layout.Layout, grid, watermark bool) (*canvas.Canvas, error) {
	family, err := loadFontFamily()
	if err != nil {
		return nil, err
	}
	c := canvas.New(l.Width*mmPerPx, l.CanvasHeight*mmPerPx)
	p := painter{ctx: canvas.NewContext(c), height: l.CanvasHeight, family: family}

	p.rect(0, 0, l.Width, l.CanvasHeight, 0, color.White, canvas.Transparent, 0)
	if grid {
		gridColor := hexColor(GridColor)
		for x := 0.0; x <= l.Width; x += 20 {
			p.line(x, 0, x, l.CanvasHeight, 1, gridColor)
		}
		for y := 0.0; y <= l.CanvasHeight; y += 20 {
			p.line(0, y, l.Width, y, 1, gridColor)
		}
	}

	text, tick := hexColor(TextColor), hexColor(TickColor)
	if l.Title != "" {
		p.text(l.Width/2, layout.HeaderY, 12, l.Title, text, true, canvas.Center)
	}
	p.text(10, layout.HeaderY, 12, l.PrimaryHeader, text, true, canvas.Left)
	p.text(l.Width-layout.RulerInset, layout.HeaderY, 12, l.SecondaryHeader, text, true, canvas.Left)
	for _, m := range l.Marks {
		w := float64(tickWidth(m.IsMajor))
		p.line(l.LeftRulerX(), m.Y, layout.TickEnd(m.IsMajor), m.Y, w, tick)
		p.line(l.RightRulerX(), m.Y, l.RightTickEnd(m.IsMajor), m.Y, w, tick)
		if m.IsMajor {
			p.text(layout.LeftLabelX, m.Y+4, 12, m.PrimaryLabel, text, false, canvas.Left)
			p.text(l.Width-layout.RightLabelInset, m.Y+4, 12, m.SecondaryLabel, text, false, canvas.Left)
		}
	}

	p.line(layout.GroundInset, l.GroundY, l.Width-layout.GroundInset, l.GroundY, 3, hexColor(GroundColor))

	outline, name := hexColor(OutlineColor), hexColor(NameColor)
	for _, f := range l.Figures {
		fill := hexColor(f.Color)
		p.rect(f.Left, f.Top, f.Width(), f.Height(), 3, fill, outline, 1)
		p.circle(f.CenterX, f.HeadCY, layout.HeadRadius, fill, outline, 1)
		p.text(f.CenterX, f.HeightLabelY, 12, f.HeightLabel, text, true, canvas.Center)
		p.text(f.CenterX, f.NameY, 14, f.Name, name, false, canvas.Center)
	}

	hint := hexColor(HintColor)
	switch {
	case l.Empty:
		x, y, w, h := l.EmptyBox()
		p.ctx.SetDashes(0, 10*mmPerPx, 5*mmPerPx)
		p.rect(x, y, w, h, 10, canvas.Transparent, hexColor(HintBoxColor), 2)
		p.ctx.SetDashes(0)
		sizes := []float64{18, 14, 12}
		offsets := []float64{140, 110, 85}
		for i, line := range l.EmptyHint {
			if i >= len(sizes) {
				break
			}
			p.text(l.Width/2, l.GroundY-offsets[i], sizes[i], line, hint, false, canvas.Center)
		}
	case watermark && l.Watermark != "":
		p.text(l.Width/2, l.WatermarkY, 18, l.Watermark, hint, false, canvas.Center)
	}
	return c, nil
}

// hexColor parses a #rrggbb color, falling back to the outline gray.
func hexColor(s string) color.Color {
	c, err := entity.ParseColor(s)
	if err != nil {
		return color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	}
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}
