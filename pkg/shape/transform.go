package shape

import (
	"math"

	"github.com/matzehuels/shapegrid/pkg/geom"
)

// Transform is the optional roll/scale/skew record of a node. Angles are in
// degrees; the transform is applied about the node's center.
type Transform struct {
	Roll   float64 `json:"roll,omitempty" toml:"roll,omitempty" yaml:"roll,omitempty"`
	ScaleX float64 `json:"scale_x,omitempty" toml:"scale_x,omitempty" yaml:"scale_x,omitempty"`
	ScaleY float64 `json:"scale_y,omitempty" toml:"scale_y,omitempty" yaml:"scale_y,omitempty"`
	SkewX  float64 `json:"skew_x,omitempty" toml:"skew_x,omitempty" yaml:"skew_x,omitempty"`
	SkewY  float64 `json:"skew_y,omitempty" toml:"skew_y,omitempty" yaml:"skew_y,omitempty"`
}

// IdentityTransform returns the record that leaves geometry unchanged.
func IdentityTransform() Transform { return Transform{ScaleX: 1, ScaleY: 1} }

// IsIdentity reports whether t leaves geometry unchanged.
func (t Transform) IsIdentity() bool {
	return t.Roll == 0 && t.ScaleX == 1 && t.ScaleY == 1 && t.SkewX == 0 && t.SkewY == 0
}

// Matrix returns the linear part of t: roll, then skew, then scale, with
// scale applied first to the geometry.
func (t Transform) Matrix() geom.Matrix {
	m := geom.Identity()
	if t.Roll != 0 {
		m = m.Multiply(geom.Rotate(radians(t.Roll)))
	}
	if t.SkewX != 0 || t.SkewY != 0 {
		m = m.Multiply(geom.Skew(radians(t.SkewX), radians(t.SkewY)))
	}
	if t.ScaleX != 1 || t.ScaleY != 1 {
		m = m.Multiply(geom.Scale(t.ScaleX, t.ScaleY))
	}
	return m
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// HasTransform reports whether the node carries a non-identity
// roll/scale/skew record.
func (n *Node) HasTransform() bool { return n.xform != nil }

// Transform returns the node's roll/scale/skew record. The second result is
// false when the node has none, in which case the identity is returned.
func (n *Node) Transform() (Transform, bool) {
	if n.xform == nil {
		return IdentityTransform(), false
	}
	return *n.xform, true
}

// SetTransform replaces the record. An identity record removes it.
func (n *Node) SetTransform(t Transform) {
	if t.IsIdentity() {
		n.xform = nil
		return
	}
	n.xform = &t
}

// Roll returns the rotation in degrees.
func (n *Node) Roll() float64 {
	if n.xform == nil {
		return 0
	}
	return n.xform.Roll
}

// SetRoll sets the rotation in degrees.
func (n *Node) SetRoll(deg float64) {
	t, _ := n.Transform()
	t.Roll = deg
	n.SetTransform(t)
}

// Scale returns the scale factors.
func (n *Node) Scale() (sx, sy float64) {
	if n.xform == nil {
		return 1, 1
	}
	return n.xform.ScaleX, n.xform.ScaleY
}

// SetScale sets the scale factors.
func (n *Node) SetScale(sx, sy float64) {
	t, _ := n.Transform()
	t.ScaleX, t.ScaleY = sx, sy
	n.SetTransform(t)
}

// Skew returns the skew angles in degrees.
func (n *Node) Skew() (sx, sy float64) {
	if n.xform == nil {
		return 0, 0
	}
	return n.xform.SkewX, n.xform.SkewY
}

// SetSkew sets the skew angles in degrees.
func (n *Node) SetSkew(sx, sy float64) {
	t, _ := n.Transform()
	t.SkewX, t.SkewY = sx, sy
	n.SetTransform(t)
}

// needsMatrix reports whether the local transform is more than a
// translation. Flipped axes count: they mirror about the center.
func (n *Node) needsMatrix() bool {
	return n.xform != nil || n.w < 0 || n.h < 0
}

// LocalTransform returns the matrix mapping the node's local space into its
// parent's: translate to (X, Y), then roll/skew/scale and flip about the
// center (Width/2, Height/2).
func (n *Node) LocalTransform() geom.Matrix {
	if !n.needsMatrix() {
		return geom.Translate(n.x, n.y)
	}
	cx, cy := n.Width()/2, n.Height()/2
	m := geom.Translate(n.x+cx, n.y+cy)
	if n.xform != nil {
		m = m.Multiply(n.xform.Matrix())
	}
	if n.w < 0 || n.h < 0 {
		m = m.Multiply(geom.Scale(flipSign(n.w), flipSign(n.h)))
	}
	return m.Multiply(geom.Translate(-cx, -cy))
}

func flipSign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
