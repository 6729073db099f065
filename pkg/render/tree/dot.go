package tree

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/shapegrid/pkg/shape"
)

// Options configures shape-tree diagram rendering.
type Options struct {
	// Detailed includes kind, frame and transform in node labels.
	// When false, only the label is shown.
	Detailed bool

	// Highlight lists node ids or names drawn with a red outline, for example the
	// shapes that lost an overlap during synthesis.
	Highlight []string
}

// ToDOT converts the tree under root to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(root *shape.Node, opts Options) string {
	highlight := make(map[string]bool, len(opts.Highlight))
	for _, id := range opts.Highlight {
		highlight[id] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var edges []string
	root.Walk(func(n *shape.Node) bool {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed), highlight[n.ID] || (n.Name != "" && highlight[n.Name]))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
		if p := n.Parent(); p != nil && n != root {
			edges = append(edges, fmt.Sprintf("  %q -> %q;\n", p.ID, n.ID))
		}
		return true
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *shape.Node, detailed bool) string {
	if !detailed {
		return n.Label()
	}

	f := n.Frame()
	parts := []string{
		"kind: " + string(n.Kind),
		fmt.Sprintf("frame: %s", f),
	}
	if t, ok := n.Transform(); ok {
		parts = append(parts, fmt.Sprintf("roll: %g scale: %g,%g skew: %g,%g",
			t.Roll, t.ScaleX, t.ScaleY, t.SkewX, t.SkewY))
	}
	if n.FlippedX() || n.FlippedY() {
		parts = append(parts, fmt.Sprintf("flip: %t,%t", n.FlippedX(), n.FlippedY()))
	}
	if n.Fill != "" {
		parts = append(parts, "fill: "+n.Fill)
	}
	return n.Label() + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *shape.Node, label string, highlighted bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Kind {
	case shape.KindGroup:
		attrs = append(attrs, "shape=folder")
	case shape.KindLine:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	if n.Fill != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", n.Fill))
	}
	if highlighted {
		attrs = append(attrs, "color=red", "penwidth=3")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// render.ToPDF or render.ToPNG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-based svg header with a plain
// viewBox so the diagram scales in browsers.
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

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
