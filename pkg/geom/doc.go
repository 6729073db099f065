// Package geom provides the 2D primitives shared by the shape tree and the
// grid synthesizer: points, axis-aligned rectangles, polyline paths and
// affine matrices.
//
// # Matrices
//
// [Matrix] stores an affine transform as six coefficients:
//
//	| A  C  Tx |
//	| B  D  Ty |
//	| 0  0   1 |
//
// so that a point maps as x' = A*x + C*y + Tx, y' = B*x + D*y + Ty.
// [Matrix.Multiply] composes right to left: m.Multiply(o) applies o first,
// then m. This matches how a child's local transform is chained below its
// parent's.
//
// # Rectangles
//
// [Rect] is origin + size. Transforming a rectangle with
// [Matrix.TransformRect] yields the axis-aligned bounding box of the four
// transformed corners, never a rotated rectangle.
package geom
