package sink

import (
	"encoding/json"

	"github.com/matzehuels/heightcompare/pkg/render/chart/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	indent bool
	board  string
}

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

// WithJSONBoard records the board the chart was rendered from.
func WithJSONBoard(id string) JSONOption { return func(r *jsonRenderer) { r.board = id } }

type jsonOutput struct {
	Board string `json:"board,omitempty"`
	Unit  string `json:"unit"`
	layout.Layout
}

// RenderJSON serializes the layout, its resolution and its marks.
func RenderJSON(l layout.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	out := jsonOutput{Board: r.board, Unit: l.Resolution.Unit.String(), Layout: l}
	if out.Figures == nil {
		out.Figures = []layout.Figure{}
	}
	if out.Marks == nil {
		out.Marks = []layout.Mark{}
	}
	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}
