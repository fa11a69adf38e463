package taxonomy

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/heightcompare/pkg/catalog"
)

// Options configures category tree rendering.
type Options struct {
	// Counts maps category IDs to the number of characters filed under them.
	// Categories with a count get it appended to their label.
	Counts map[int]int

	// Detailed adds the category ID and path to each label.
	Detailed bool
}

// ToDOT converts the category hierarchy to Graphviz DOT. Categories whose
// parent is unknown are drawn as roots.
func ToDOT(cats []catalog.Category, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph categories {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	tree := catalog.Children(cats)
	seen := make(map[int]bool, len(cats))
	var visit func(parent int)
	var edges []string
	visit = func(parent int) {
		for _, c := range tree[parent] {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(c.ID), strings.Join(fmtAttrs(c, opts), ", "))
			if parent != 0 {
				edges = append(edges, fmt.Sprintf("  %q -> %q;\n", nodeID(parent), nodeID(c.ID)))
			}
			visit(c.ID)
		}
	}
	visit(0)
	// Categories not reachable from a root: unknown parents and cycles.
	for _, c := range cats {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(c.ID), strings.Join(fmtAttrs(c, opts), ", "))
		visit(c.ID)
	}

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(id int) string { return "cat" + strconv.Itoa(id) }

func fmtLabel(c catalog.Category, opts Options) string {
	parts := []string{c.Name}
	if n, ok := opts.Counts[c.ID]; ok {
		parts = append(parts, fmt.Sprintf("%d characters", n))
	}
	if opts.Detailed {
		parts = append(parts, fmt.Sprintf("id: %d", c.ID), "path: "+c.Path)
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(c catalog.Category, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(c, opts))}
	if c.ParentID == 0 {
		attrs = append(attrs, "fillcolor=\"#fef3c7\"", "penwidth=2")
	}
	if n, ok := opts.Counts[c.ID]; ok && n == 0 {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fontcolor=grey40")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	data, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one whose
// width and height match the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
