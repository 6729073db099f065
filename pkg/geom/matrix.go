package geom

import "math"

// singularEpsilon is the determinant magnitude below which a matrix is
// treated as non-invertible.
const singularEpsilon = 1e-12

// Matrix is a 2D affine transform. See the package documentation for the
// coefficient layout.
type Matrix struct {
	A, B, C, D float64
	Tx, Ty     float64
}

// Identity returns the identity transform.
func Identity() Matrix { return Matrix{A: 1, D: 1} }

// Translate returns a pure translation by (tx, ty).
func Translate(tx, ty float64) Matrix { return Matrix{A: 1, D: 1, Tx: tx, Ty: ty} }

// Scale returns a scale about the origin.
func Scale(sx, sy float64) Matrix { return Matrix{A: sx, D: sy} }

// Rotate returns a rotation about the origin by angle radians. With the y
// axis pointing down, positive angles turn clockwise on screen.
func Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{A: cos, B: sin, C: -sin, D: cos}
}

// Skew returns a shear with angles ax (along x) and ay (along y) in radians:
// x' = x + tan(ax)*y, y' = tan(ay)*x + y.
func Skew(ax, ay float64) Matrix {
	var tx, ty float64
	if ax != 0 {
		tx = math.Tan(ax)
	}
	if ay != 0 {
		ty = math.Tan(ay)
	}
	return Matrix{A: 1, B: ty, C: tx, D: 1}
}

// Multiply returns m * o: the transform that applies o first, then m.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		A:  m.A*o.A + m.C*o.B,
		B:  m.B*o.A + m.D*o.B,
		C:  m.A*o.C + m.C*o.D,
		D:  m.B*o.C + m.D*o.D,
		Tx: m.A*o.Tx + m.C*o.Ty + m.Tx,
		Ty: m.B*o.Tx + m.D*o.Ty + m.Ty,
	}
}

// Then returns the transform that applies m first, then o (o * m).
func (m Matrix) Then(o Matrix) Matrix { return o.Multiply(m) }

// Determinant returns A*D - C*B.
func (m Matrix) Determinant() float64 { return m.A*m.D - m.C*m.B }

// Invertible reports whether m has a usable inverse.
func (m Matrix) Invertible() bool { return math.Abs(m.Determinant()) >= singularEpsilon }

// Invert returns the inverse of m. A singular matrix (for example a zero
// scale) has no inverse; Invert then returns the identity so callers keep
// producing finite coordinates. Use [Matrix.Invertible] to detect the case.
func (m Matrix) Invert() Matrix {
	det := m.Determinant()
	if math.Abs(det) < singularEpsilon {
		return Identity()
	}
	inv := 1 / det
	a := m.D * inv
	b := -m.B * inv
	c := -m.C * inv
	d := m.A * inv
	return Matrix{
		A: a, B: b, C: c, D: d,
		Tx: -(a*m.Tx + c*m.Ty),
		Ty: -(b*m.Tx + d*m.Ty),
	}
}

// IsIdentity reports whether m is exactly the identity.
func (m Matrix) IsIdentity() bool {
	return m.A == 1 && m.B == 0 && m.C == 0 && m.D == 1 && m.Tx == 0 && m.Ty == 0
}

// IsTranslation reports whether m only translates.
func (m Matrix) IsTranslation() bool {
	return m.A == 1 && m.B == 0 && m.C == 0 && m.D == 1
}

// Near reports whether every coefficient of m is within tol of o's.
func (m Matrix) Near(o Matrix, tol float64) bool {
	return math.Abs(m.A-o.A) <= tol && math.Abs(m.B-o.B) <= tol &&
		math.Abs(m.C-o.C) <= tol && math.Abs(m.D-o.D) <= tol &&
		math.Abs(m.Tx-o.Tx) <= tol && math.Abs(m.Ty-o.Ty) <= tol
}

// TransformPoint maps p through m.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.Tx,
		Y: m.B*p.X + m.D*p.Y + m.Ty,
	}
}

// TransformVector maps v through the linear part of m, ignoring translation.
func (m Matrix) TransformVector(v Point) Point {
	return Point{
		X: m.A*v.X + m.C*v.Y,
		Y: m.B*v.X + m.D*v.Y,
	}
}

// TransformRect returns the axis-aligned bounding box of r's four corners
// mapped through m.
func (m Matrix) TransformRect(r Rect) Rect {
	if m.IsTranslation() {
		return r.Offset(m.Tx, m.Ty)
	}
	corners := r.Corners()
	p := m.TransformPoint(corners[0])
	minX, maxX, minY, maxY := p.X, p.X, p.Y, p.Y
	for _, c := range corners[1:] {
		p = m.TransformPoint(c)
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return FromEdges(minX, minY, maxX, maxY)
}

// TransformPath maps every point of p through m into a new path.
func (m Matrix) TransformPath(p Path) Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	for i, pt := range p {
		out[i] = m.TransformPoint(pt)
	}
	return out
}
