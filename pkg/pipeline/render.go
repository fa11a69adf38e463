package pipeline

import (
	"fmt"

	"github.com/matzehuels/heightcompare/pkg/render/chart/layout"
	"github.com/matzehuels/heightcompare/pkg/render/chart/sink"
)

// RenderLayout generates output artifacts in the requested formats.
func RenderLayout(l layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		data, err := renderFormat(l, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(l layout.Layout, format string, opts Options) ([]byte, error) {
	grid, watermark := !opts.NoGrid, !opts.NoWatermark
	switch format {
	case FormatSVG:
		return sink.RenderSVG(l, sink.WithGrid(grid), sink.WithWatermark(watermark)), nil
	case FormatPNG:
		return sink.RenderPNG(l, sink.WithScale(opts.Scale), sink.WithPNGGrid(grid), sink.WithPNGWatermark(watermark))
	case FormatPDF:
		return sink.RenderPDF(l, sink.WithPDFGrid(grid), sink.WithPDFWatermark(watermark))
	case FormatJSON:
		jsonOpts := []sink.JSONOption{sink.WithJSONIndent()}
		if opts.Board != "" {
			jsonOpts = append(jsonOpts, sink.WithJSONBoard(opts.Board))
		}
		return sink.RenderJSON(l, jsonOpts...)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
