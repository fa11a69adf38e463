// Package render groups the chart and taxonomy renderers.
//
// # Charts
//
// A height chart is built in two steps. [chart/layout] places figures,
// labels and ruler marks for a board in chart coordinates; [chart/sink]
// draws that layout as SVG, PNG, PDF or JSON. Every sink draws natively,
// so no external converter is needed.
//
//	res := scale.SelectFor(people, units.ModeAuto)
//	l := layout.Build(people, res, ruler.Generate(res.Range, res.Unit),
//	    layout.WithTitle("Team"))
//	svg := sink.RenderSVG(l)
//	png, err := sink.RenderPNG(l, sink.WithScale(2))
//
// # Taxonomy
//
// The [taxonomy] subpackage renders the catalog's category tree with
// Graphviz, for inspecting how characters are grouped.
//
// [chart/layout]: github.com/matzehuels/heightcompare/pkg/render/chart/layout
// [chart/sink]: github.com/matzehuels/heightcompare/pkg/render/chart/sink
// [taxonomy]: github.com/matzehuels/heightcompare/pkg/render/taxonomy
package render
