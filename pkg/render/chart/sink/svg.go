package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/heightcompare/pkg/fonts"
	"github.com/matzehuels/heightcompare/pkg/render/chart/layout"
)

// Chart colors.
const (
	GroundColor  = "#8B4513"
	GridColor    = "#f0f0f0"
	TickColor    = "#666"
	OutlineColor = "#333"
	TextColor    = "#374151"
	NameColor    = "#1f2937"
	HintColor    = "#9ca3af"
	HintBoxColor = "#e5e7eb"
)

const baseCSS = `
    text { font-family: %s; }
    .header { font-size: 12px; font-weight: 600; fill: %s; }
    .tick-label { font-size: 12px; fill: %s; }
    .height-label { font-size: 12px; font-weight: 600; fill: %s; }
    .name-label { font-size: 14px; font-weight: 500; fill: %s; }
    .watermark { font-size: 18px; font-weight: 500; fill: %s; }
    .hint { fill: %s; }`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	grid      bool
	watermark bool
	css       string
}

// WithGrid toggles the background grid (on by default).
func WithGrid(on bool) SVGOption { return func(r *svgRenderer) { r.grid = on } }

// WithWatermark toggles the watermark of non-empty charts (on by default).
func WithWatermark(on bool) SVGOption { return func(r *svgRenderer) { r.watermark = on } }

// WithCSS appends extra rules to the embedded stylesheet.
func WithCSS(css string) SVGOption { return func(r *svgRenderer) { r.css = css } }

// RenderSVG renders the layout as a standalone SVG document.
func RenderSVG(l layout.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{grid: true, watermark: true}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Width, l.CanvasHeight, l.Width, l.CanvasHeight)

	r.renderDefs(&buf)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="white"/>`+"\n")
	if r.grid {
		buf.WriteString(`  <rect width="100%" height="100%" fill="url(#grid)"/>` + "\n")
	}
	if l.Title != "" {
		fmt.Fprintf(&buf, `  <text class="header" x="%s" y="%s" text-anchor="middle">%s</text>`+"\n",
			num(l.Width/2), num(layout.HeaderY), escapeXML(l.Title))
	}

	renderRulers(&buf, l)
	fmt.Fprintf(&buf, `  <line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="3"/>`+"\n",
		num(layout.GroundInset), num(l.GroundY), num(l.Width-layout.GroundInset), num(l.GroundY), GroundColor)

	for _, f := range l.Figures {
		renderFigure(&buf, f)
	}

	switch {
	case l.Empty:
		renderEmpty(&buf, l)
	case r.watermark && l.Watermark != "":
		fmt.Fprintf(&buf, `  <text class="watermark" x="%s" y="%s" text-anchor="middle">%s</text>`+"\n",
			num(l.Width/2), num(l.WatermarkY), escapeXML(l.Watermark))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r svgRenderer) renderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n")
	fmt.Fprintf(buf, `    <pattern id="grid" width="20" height="20" patternUnits="userSpaceOnUse">`+"\n")
	fmt.Fprintf(buf, `      <path d="M 20 0 L 0 0 0 20" fill="none" stroke="%s" stroke-width="1"/>`+"\n", GridColor)
	buf.WriteString("    </pattern>\n")
	buf.WriteString("  </defs>\n")
	fmt.Fprintf(buf, "  <style>"+baseCSS+"%s\n  </style>\n",
		fonts.FallbackFontFamily, TextColor, TextColor, TextColor, NameColor, HintColor, HintColor, r.css)
}

func renderRulers(buf *bytes.Buffer, l layout.Layout) {
	right := l.RightRulerX()
	fmt.Fprintf(buf, `  <text class="header" x="10" y="%s">%s</text>`+"\n", num(layout.HeaderY), l.PrimaryHeader)
	fmt.Fprintf(buf, `  <text class="header" x="%s" y="%s">%s</text>`+"\n",
		num(l.Width-layout.RulerInset), num(layout.HeaderY), l.SecondaryHeader)

	buf.WriteString(`  <g class="ruler ruler-primary">` + "\n")
	for _, m := range l.Marks {
		fmt.Fprintf(buf, `    <line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%d"/>`+"\n",
			num(l.LeftRulerX()), num(m.Y), num(layout.TickEnd(m.IsMajor)), num(m.Y), TickColor, tickWidth(m.IsMajor))
		if m.IsMajor {
			fmt.Fprintf(buf, `    <text class="tick-label" x="%s" y="%s">%s</text>`+"\n",
				num(layout.LeftLabelX), num(m.Y+4), escapeXML(m.PrimaryLabel))
		}
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="ruler ruler-secondary">` + "\n")
	for _, m := range l.Marks {
		fmt.Fprintf(buf, `    <line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%d"/>`+"\n",
			num(right), num(m.Y), num(l.RightTickEnd(m.IsMajor)), num(m.Y), TickColor, tickWidth(m.IsMajor))
		if m.IsMajor {
			fmt.Fprintf(buf, `    <text class="tick-label" x="%s" y="%s">%s</text>`+"\n",
				num(l.Width-layout.RightLabelInset), num(m.Y+4), escapeXML(m.SecondaryLabel))
		}
	}
	buf.WriteString("  </g>\n")
}

func renderFigure(buf *bytes.Buffer, f layout.Figure) {
	fmt.Fprintf(buf, `  <g class="figure" id="figure-%s">`+"\n", escapeXML(f.ID))
	if f.HasImage() {
		fmt.Fprintf(buf, `    <image href="%s" x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="xMidYMid meet"/>`+"\n",
			escapeXML(f.ImageURL), num(f.Left), num(f.Top), num(f.Width()), num(f.Height()))
	} else {
		fmt.Fprintf(buf, `    <rect x="%s" y="%s" width="%s" height="%s" rx="3" fill="%s" stroke="%s" stroke-width="1"/>`+"\n",
			num(f.Left), num(f.Top), num(f.Width()), num(f.Height()), f.Color, OutlineColor)
		fmt.Fprintf(buf, `    <circle cx="%s" cy="%s" r="%s" fill="%s" stroke="%s" stroke-width="1"/>`+"\n",
			num(f.CenterX), num(f.HeadCY), num(layout.HeadRadius), f.Color, OutlineColor)
	}
	fmt.Fprintf(buf, `    <text class="height-label" x="%s" y="%s" text-anchor="middle">%s</text>`+"\n",
		num(f.CenterX), num(f.HeightLabelY), escapeXML(f.HeightLabel))
	fmt.Fprintf(buf, `    <text class="name-label" x="%s" y="%s" text-anchor="middle">%s</text>`+"\n",
		num(f.CenterX), num(f.NameY), escapeXML(f.Name))
	buf.WriteString("  </g>\n")
}

func renderEmpty(buf *bytes.Buffer, l layout.Layout) {
	x, y, w, h := l.EmptyBox()
	fmt.Fprintf(buf, `  <rect x="%s" y="%s" width="%s" height="%s" rx="10" fill="none" stroke="%s" stroke-width="2" stroke-dasharray="10,5"/>`+"\n",
		num(x), num(y), num(w), num(h), HintBoxColor)
	sizes := []int{18, 14, 12}
	offsets := []float64{140, 110, 85}
	for i, line := range l.EmptyHint {
		if i >= len(sizes) {
			break
		}
		fmt.Fprintf(buf, `  <text class="hint" x="%s" y="%s" text-anchor="middle" font-size="%d">%s</text>`+"\n",
			num(l.Width/2), num(l.GroundY-offsets[i]), sizes[i], escapeXML(line))
	}
}

func tickWidth(major bool) int {
	if major {
		return 2
	}
	return 1
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
