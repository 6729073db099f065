// Package shape implements the document shape tree and the transform
// resolver that moves geometry between the coordinate spaces of any two
// nodes of the same tree.
//
// # Nodes
//
// A [Node] is a rectangle placed in its parent's coordinate space at
// (X, Y) with a width and height. A negative width or height flips the
// node's content along that axis; [Node.Width] and [Node.Height] always
// return magnitudes. A node may carry a [Transform] record (roll, scale,
// skew) applied about its own center. The record is allocated only when it
// differs from the identity; [Node.HasTransform] reports whether it is
// present.
//
// # Coordinate spaces
//
// Every node defines a local space in which its [Node.Bounds] are
// (0, 0, width, height). [Node.TransformToShape] returns the matrix that
// maps local points of one node into the local space of another:
//
//	m, err := cell.TransformToShape(page)
//	p := m.TransformPoint(geom.Pt(0, 0)) // cell origin in page space
//
// Passing nil as the other node selects world space, the space the root
// node is placed in. Nodes of different trees share no space;
// conversions between them fail with errors.ErrCodeDisjointTrees.
//
// Multi-hop conversions walk both ancestor chains iteratively, so stack
// usage does not depend on the depth of the tree.
//
// # Conversions
//
// The Convert* methods apply the resolved matrix to points, vectors (no
// translation), rectangles (axis-aligned bounding box of the corners) and
// paths. [Node.Frame] is the node's bounds in its parent's space.
package shape
