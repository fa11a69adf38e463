// Package sink turns a chart [layout.Layout] into output bytes.
//
// [RenderSVG] is the primary format and the only one that embeds figure
// images. [RenderPDF] and [RenderPNG] paint the same geometry natively
// through tdewolff/canvas, so no external converter is needed; figures
// with images are drawn as their colored silhouette instead.
// [RenderJSON] emits the computed layout itself for clients that draw
// their own chart.
package sink
