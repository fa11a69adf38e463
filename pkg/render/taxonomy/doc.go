// Package taxonomy renders the catalog's category hierarchy with Graphviz.
//
// [ToDOT] produces DOT source with one box per category and an edge from
// each parent to its children; root categories are highlighted. The DOT can
// be saved as-is or rendered in process:
//
//	dot := taxonomy.ToDOT(cats, taxonomy.Options{Counts: stats.ByCategory})
//	svg, err := taxonomy.RenderSVG(ctx, dot)
//
// Rendering uses [github.com/goccy/go-graphviz], which embeds Graphviz as
// WebAssembly, so no system install is required.
package taxonomy
