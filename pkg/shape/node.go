package shape

import (
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/shapegrid/pkg/errors"
	"github.com/matzehuels/shapegrid/pkg/geom"
)

// Kind classifies a node for boundary extraction.
type Kind string

const (
	// KindShape is a plain filled/stroked rectangle.
	KindShape Kind = "shape"
	// KindLine is a line-oriented leaf (rules, separators). Its parent
	// relative frame is used instead of its stroke-inflated bounds.
	KindLine Kind = "line"
	// KindGroup is a container whose own rectangle is its children's frame.
	KindGroup Kind = "group"
)

// ValidKinds is the set of supported node kinds.
var ValidKinds = map[Kind]bool{
	KindShape: true,
	KindLine:  true,
	KindGroup: true,
}

// Node is a rectangular element of the shape tree.
//
// The zero value is not usable; create nodes with [New]. A node belongs to
// at most one parent; [Node.AddChild] rejects attachments that would share
// a node or create a cycle.
type Node struct {
	ID          string
	Name        string
	Kind        Kind
	Fill        string  // "#RRGGBB", or "" to inherit from ancestors
	StrokeWidth float64 // outline width centered on the bounds

	x, y float64
	w, h float64 // signed: negative flips the axis

	xform *Transform // nil means identity

	parent   *Node
	children []*Node
}

// New creates a plain shape node at (x, y) with the given size and a random
// id. Negative sizes flip the corresponding axis.
func New(name string, x, y, w, h float64) *Node {
	return &Node{
		ID:   uuid.NewString(),
		Name: name,
		Kind: KindShape,
		x:    x, y: y,
		w: w, h: h,
	}
}

// NewGroup creates a container node.
func NewGroup(name string, x, y, w, h float64) *Node {
	n := New(name, x, y, w, h)
	n.Kind = KindGroup
	return n
}

// NewLine creates a line-oriented leaf node.
func NewLine(name string, x, y, w, h float64) *Node {
	n := New(name, x, y, w, h)
	n.Kind = KindLine
	return n
}

// Label returns the name, falling back to the id.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// X returns the origin's x coordinate in the parent's space.
func (n *Node) X() float64 { return n.x }

// Y returns the origin's y coordinate in the parent's space.
func (n *Node) Y() float64 { return n.y }

// Width returns the width magnitude.
func (n *Node) Width() float64 { return math.Abs(n.w) }

// Height returns the height magnitude.
func (n *Node) Height() float64 { return math.Abs(n.h) }

// FlippedX reports whether the node's content is mirrored horizontally.
func (n *Node) FlippedX() bool { return n.w < 0 }

// FlippedY reports whether the node's content is mirrored vertically.
func (n *Node) FlippedY() bool { return n.h < 0 }

// SignedSize returns the stored width and height, signs included.
func (n *Node) SignedSize() (w, h float64) { return n.w, n.h }

// SetPosition moves the node within its parent.
func (n *Node) SetPosition(x, y float64) {
	n.x, n.y = x, y
}

// SetSize sets the signed size. Negative values flip the axis.
func (n *Node) SetSize(w, h float64) {
	n.w, n.h = w, h
}

// SetFrame sets position and size in one call.
func (n *Node) SetFrame(x, y, w, h float64) {
	n.x, n.y, n.w, n.h = x, y, w, h
}

// Bounds returns the node's rectangle in its own space: (0, 0, w, h).
func (n *Node) Bounds() geom.Rect {
	return geom.R(0, 0, n.Width(), n.Height())
}

// MarkedBounds returns the bounds inflated by half the stroke width on
// every side: the area the node marks when drawn.
func (n *Node) MarkedBounds() geom.Rect {
	if n.StrokeWidth <= 0 {
		return n.Bounds()
	}
	half := n.StrokeWidth / 2
	return n.Bounds().Inset(-half, -half)
}

// EffectiveFill returns the first non-empty fill found walking from the
// node up through its ancestors, or "" when none has one.
func (n *Node) EffectiveFill() string {
	for a := n; a != nil; a = a.parent {
		if a.Fill != "" {
			return a.Fill
		}
	}
	return ""
}

// =============================================================================
// Hierarchy
// =============================================================================

// Parent returns the node's parent, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children in paint order.
// The returned slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// AddChild appends c to n's children.
//
// It fails with errors.ErrCodeInvalidInput if c is nil, already has a
// parent, or is n itself or one of n's ancestors.
func (n *Node) AddChild(c *Node) error {
	return n.InsertChild(len(n.children), c)
}

// InsertChild inserts c at index i of n's children.
func (n *Node) InsertChild(i int, c *Node) error {
	switch {
	case c == nil:
		return errors.New(errors.ErrCodeInvalidInput, "cannot add nil child to %q", n.Label())
	case c.parent != nil:
		return errors.New(errors.ErrCodeInvalidInput, "node %q already has parent %q", c.Label(), c.parent.Label())
	case c == n || c.IsAncestorOf(n):
		return errors.New(errors.ErrCodeInvalidInput, "adding %q under %q would create a cycle", c.Label(), n.Label())
	case i < 0 || i > len(n.children):
		return errors.New(errors.ErrCodeInvalidInput, "child index %d out of range [0,%d]", i, len(n.children))
	}
	n.children = slices.Insert(n.children, i, c)
	c.parent = n
	return nil
}

// RemoveChild detaches c from n. It reports whether c was a child of n.
func (n *Node) RemoveChild(c *Node) bool {
	i := slices.Index(n.children, c)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	c.parent = nil
	return true
}

// RemoveFromParent detaches n from its parent, if any.
func (n *Node) RemoveFromParent() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// Root returns the topmost ancestor of n (n itself for a root).
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Depth returns the number of ancestors of n.
func (n *Node) Depth() int {
	d := 0
	for a := n.parent; a != nil; a = a.parent {
		d++
	}
	return d
}

// IsAncestorOf reports whether n is a strict ancestor of o.
func (n *Node) IsAncestorOf(o *Node) bool {
	if o == nil {
		return false
	}
	for a := o.parent; a != nil; a = a.parent {
		if a == n {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants depth-first in paint order. Returning
// false from fn skips the visited node's subtree. The traversal uses an
// explicit stack.
func (n *Node) Walk(fn func(*Node) bool) {
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			continue
		}
		for i := len(cur.children) - 1; i >= 0; i-- {
			stack = append(stack, cur.children[i])
		}
	}
}

// Leaves returns the descendants of n without children, in paint order.
// A childless n returns itself.
func (n *Node) Leaves() []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if len(c.children) == 0 {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Find returns the first node in n's subtree whose id or name equals key.
func (n *Node) Find(key string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.ID == key || c.Name == key {
			found = c
			return false
		}
		return true
	})
	return found
}
