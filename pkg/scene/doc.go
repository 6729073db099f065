// Package scene reads and writes shape-tree documents.
//
// # Overview
//
// A scene describes one shape tree and how to turn it into a table: which
// node is the container and which of its descendants are candidates. Scenes
// are stored as JSON, TOML or YAML; the three encodings carry the same
// fields.
//
// # Format
//
//	name = "invoice"
//	container = "body"        # node id or name; default is the root
//	candidates = "leaves"     # "children" (default) or "leaves"
//
//	[min_rect]
//	x = 0
//	y = 0
//	width = 600
//	height = 400
//
//	[root]
//	name = "page"
//	kind = "group"
//	width = 600
//	height = 800
//	fill = "#ffffff"
//
//	[[root.children]]
//	name = "body"
//	kind = "group"
//	y = 100
//	width = 600
//	height = 400
//
// Node fields: id, name, kind ("shape", "line", "group"), x, y, width,
// height (negative to flip an axis), roll, scale_x, scale_y, skew_x, skew_y
// (angles in degrees, scale defaults to 1), fill ("#RGB" or "#RRGGBB"),
// stroke_width, children.
//
// Nodes without an id get a random UUID when the scene is decoded, so every
// node is addressable afterwards.
//
// # Loading
//
// Use [Load] to read a file (the format follows the extension) or [Decode]
// to read from any io.Reader:
//
//	s, err := scene.Load("invoice.toml")
//	if err != nil {
//	    return err
//	}
//	root, err := s.Tree()
//	req, err := s.Request(root)
//
// [Capture] goes the other way, turning a live tree back into a document.
package scene
