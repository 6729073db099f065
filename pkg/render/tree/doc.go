// Package tree renders a shape tree as a node-link diagram.
//
// Each node becomes a box labelled with its name (or id), connected to its
// parent by an arrow. Groups are drawn as folders, lines as dashed boxes,
// and filled nodes use their fill color. In detailed mode the label also
// shows the kind, the frame in the parent's space and any roll/scale/skew.
//
//	dot := tree.ToDOT(root, tree.Options{Detailed: true})
//	svg, err := tree.RenderSVG(ctx, dot)
//
// Rendering uses the Graphviz WebAssembly build bundled with
// github.com/goccy/go-graphviz, so no system Graphviz is required.
package tree
