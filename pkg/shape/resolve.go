package shape

import (
	"github.com/matzehuels/shapegrid/pkg/errors"
	"github.com/matzehuels/shapegrid/pkg/geom"
)

// TransformToShape returns the matrix mapping points in n's local space to
// points in other's local space. A nil other selects world space.
//
// The common cases are answered directly: the identity for n itself, a
// pure translation when other is n's parent and n has no transform record,
// n's local transform for its parent, and the inverse of other's local
// transform when n is other's parent. Everything else walks both ancestor
// chains to their lowest common ancestor (see [Node.Frame] for the cheap
// path used by frame queries).
//
// Nodes in different trees fail with errors.ErrCodeDisjointTrees; a
// singular transform on the way down fails with errors.ErrCodeInvalidInput.
func (n *Node) TransformToShape(other *Node) (geom.Matrix, error) {
	switch {
	case other == n:
		return geom.Identity(), nil
	case other == n.parent:
		if !n.needsMatrix() {
			return geom.Translate(n.x, n.y), nil
		}
		return n.LocalTransform(), nil
	case other != nil && other.parent == n:
		return invertLocal(other)
	}
	return n.walkTo(other)
}

// TransformFromShape returns the matrix mapping points in other's local
// space to points in n's local space; the inverse of [Node.TransformToShape].
func (n *Node) TransformFromShape(other *Node) (geom.Matrix, error) {
	m, err := n.TransformToShape(other)
	if err != nil {
		return geom.Matrix{}, err
	}
	if !m.Invertible() {
		return geom.Matrix{}, errors.New(errors.ErrCodeInvalidInput,
			"transform from %s to %q is not invertible", spaceLabel(other), n.Label())
	}
	return m.Invert(), nil
}

// walkTo composes the transform from n to other through their lowest
// common ancestor. Going up from n multiplies forward local transforms;
// going down to other multiplies inverse local transforms in path order.
func (n *Node) walkTo(other *Node) (geom.Matrix, error) {
	onPath := make(map[*Node]struct{})
	for a := other; a != nil; a = a.parent {
		onPath[a] = struct{}{}
	}

	acc := geom.Identity()
	lca := n
	for ; lca != nil; lca = lca.parent {
		if _, ok := onPath[lca]; ok {
			break
		}
		acc = lca.LocalTransform().Multiply(acc)
	}
	if lca == nil && other != nil {
		return geom.Matrix{}, errors.New(errors.ErrCodeDisjointTrees,
			"%q and %q share no common ancestor", n.Label(), other.Label())
	}

	var down []*Node
	for b := other; b != lca; b = b.parent {
		down = append(down, b)
	}
	for i := len(down) - 1; i >= 0; i-- {
		inv, err := invertLocal(down[i])
		if err != nil {
			return geom.Matrix{}, err
		}
		acc = inv.Multiply(acc)
	}
	return acc, nil
}

func invertLocal(n *Node) (geom.Matrix, error) {
	if !n.needsMatrix() {
		return geom.Translate(-n.x, -n.y), nil
	}
	m := n.LocalTransform()
	if !m.Invertible() {
		return geom.Matrix{}, errors.New(errors.ErrCodeInvalidInput,
			"node %q has a singular transform", n.Label())
	}
	return m.Invert(), nil
}

func spaceLabel(n *Node) string {
	if n == nil {
		return "world space"
	}
	return "\"" + n.Label() + "\""
}

// =============================================================================
// Conversions
// =============================================================================

// ConvertPointToShape maps p from n's space into other's space.
func (n *Node) ConvertPointToShape(p geom.Point, other *Node) (geom.Point, error) {
	m, err := n.TransformToShape(other)
	if err != nil {
		return geom.Point{}, err
	}
	return m.TransformPoint(p), nil
}

// ConvertPointFromShape maps p from other's space into n's space.
func (n *Node) ConvertPointFromShape(p geom.Point, other *Node) (geom.Point, error) {
	m, err := n.TransformFromShape(other)
	if err != nil {
		return geom.Point{}, err
	}
	return m.TransformPoint(p), nil
}

// ConvertVectorToShape maps the direction and length of v from n's space
// into other's space. Translation does not apply to vectors.
func (n *Node) ConvertVectorToShape(v geom.Point, other *Node) (geom.Point, error) {
	m, err := n.TransformToShape(other)
	if err != nil {
		return geom.Point{}, err
	}
	return m.TransformVector(v), nil
}

// ConvertVectorFromShape maps v from other's space into n's space.
func (n *Node) ConvertVectorFromShape(v geom.Point, other *Node) (geom.Point, error) {
	m, err := n.TransformFromShape(other)
	if err != nil {
		return geom.Point{}, err
	}
	return m.TransformVector(v), nil
}

// ConvertRectToShape maps r from n's space into other's space and returns
// the axis-aligned bounding box of the mapped corners.
func (n *Node) ConvertRectToShape(r geom.Rect, other *Node) (geom.Rect, error) {
	m, err := n.TransformToShape(other)
	if err != nil {
		return geom.Rect{}, err
	}
	return m.TransformRect(r), nil
}

// ConvertRectFromShape maps r from other's space into n's space.
func (n *Node) ConvertRectFromShape(r geom.Rect, other *Node) (geom.Rect, error) {
	m, err := n.TransformFromShape(other)
	if err != nil {
		return geom.Rect{}, err
	}
	return m.TransformRect(r), nil
}

// ConvertPathToShape maps every point of p from n's space into other's.
func (n *Node) ConvertPathToShape(p geom.Path, other *Node) (geom.Path, error) {
	m, err := n.TransformToShape(other)
	if err != nil {
		return nil, err
	}
	return m.TransformPath(p), nil
}

// ConvertPathFromShape maps every point of p from other's space into n's.
func (n *Node) ConvertPathFromShape(p geom.Path, other *Node) (geom.Path, error) {
	m, err := n.TransformFromShape(other)
	if err != nil {
		return nil, err
	}
	return m.TransformPath(p), nil
}

// =============================================================================
// Frames
// =============================================================================

// Frame returns the node's bounds in its parent's space, including roll,
// scale, skew and flips. Untransformed nodes take a cheap path.
func (n *Node) Frame() geom.Rect {
	if !n.needsMatrix() {
		return geom.R(n.x, n.y, n.Width(), n.Height())
	}
	return n.LocalTransform().TransformRect(n.Bounds())
}

// FrameIn returns the node's parent-relative frame expressed in ancestor's
// space. Unlike [Node.MarkedBoundsIn] the frame is boxed in the parent
// first, which is how line-oriented leaves are measured.
func (n *Node) FrameIn(ancestor *Node) (geom.Rect, error) {
	frame := n.Frame()
	if ancestor == n.parent {
		return frame, nil
	}
	if n.parent == nil {
		if ancestor.Root() != n {
			return geom.Rect{}, errors.New(errors.ErrCodeDisjointTrees,
				"%q and %q share no common ancestor", n.Label(), ancestor.Label())
		}
		m, err := ancestor.TransformFromShape(nil)
		if err != nil {
			return geom.Rect{}, err
		}
		return m.TransformRect(frame), nil
	}
	return n.parent.ConvertRectToShape(frame, ancestor)
}

// MarkedBoundsIn returns [Node.MarkedBounds] expressed in ancestor's space.
func (n *Node) MarkedBoundsIn(ancestor *Node) (geom.Rect, error) {
	return n.ConvertRectToShape(n.MarkedBounds(), ancestor)
}
