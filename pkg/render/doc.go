// Package render provides format conversion shared by the exporters.
//
// # Overview
//
// The table exporters in [sink] and the shape-tree diagram in [tree] both
// produce SVG. This package turns any SVG into PDF or PNG using the
// external rsvg-convert tool (from librsvg):
//
//	svg := sink.RenderSVG(table)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// When rsvg-convert is not installed the conversions fail with
// errors.ErrCodeUnsupported and an installation hint; [Available] reports
// whether conversion is possible.
//
// # Shape-Tree Diagrams
//
// The [tree] subpackage renders the shape tree itself as a node-link
// diagram using Graphviz, which helps when debugging why a shape ended up in
// an unexpected cell.
//
//	dot := tree.ToDOT(root, tree.Options{Detailed: true})
//	svg, err := tree.RenderSVG(dot)
//
// [sink]: github.com/matzehuels/shapegrid/pkg/sink
// [tree]: github.com/matzehuels/shapegrid/pkg/render/tree
package render
