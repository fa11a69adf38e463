package sink

import (
	"bytes"
	"fmt"

	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/matzehuels/heightcompare/pkg/render/chart/layout"
)

// PDFOption configures [RenderPDF].
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	grid      bool
	watermark bool
}

// WithPDFGrid toggles the background grid (default on).
func WithPDFGrid(on bool) PDFOption { return func(r *pdfRenderer) { r.grid = on } }

// WithPDFWatermark toggles the watermark (default on).
func WithPDFWatermark(on bool) PDFOption { return func(r *pdfRenderer) { r.watermark = on } }

// RenderPDF renders the layout as a single-page vector PDF sized to the chart.
// Figures are drawn as silhouettes; images are not embedded.
func RenderPDF(l layout.Layout, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{grid: true, watermark: true}
	for _, opt := range opts {
		opt(&r)
	}
	c, err := drawCanvas(l, r.grid, r.watermark)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	p := pdf.New(&buf, c.W, c.H, nil)
	c.RenderTo(p)
	if err := p.Close(); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
