package sink

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/matzehuels/heightcompare/pkg/render/chart/layout"
)

// PNGOption configures [RenderPNG].
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	grid      bool
	watermark bool
	scale     float64
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithPNGGrid toggles the background grid (default on).
func WithPNGGrid(on bool) PNGOption { return func(r *pngRenderer) { r.grid = on } }

// WithPNGWatermark toggles the watermark (default on).
func WithPNGWatermark(on bool) PNGOption { return func(r *pngRenderer) { r.watermark = on } }

// RenderPNG rasterizes the layout. One layout pixel becomes scale image pixels.
func RenderPNG(l layout.Layout, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{grid: true, watermark: true, scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	c, err := drawCanvas(l, r.grid, r.watermark)
	if err != nil {
		return nil, err
	}

	img := rasterizer.Draw(c, canvas.DPMM(r.scale/mmPerPx), canvas.DefaultColorSpace)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
