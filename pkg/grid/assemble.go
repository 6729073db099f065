package grid

import (
	"github.com/matzehuels/shapegrid/pkg/errors"
	"github.com/matzehuels/shapegrid/pkg/geom"
	"github.com/matzehuels/shapegrid/pkg/shape"
)

// assembly holds the state of one synthesis call.
type assembly struct {
	tol    float64
	rows   []float64
	cols   []float64
	origin geom.Point
	cells  [][]*Cell
	diags  []Overlap

	// onOverlap is called for every contested position.
	onOverlap func(o Overlap)
}

func newAssembly(b *Boundaries, tol float64) *assembly {
	nr, nc := len(b.Rows)-1, len(b.Cols)-1
	cells := make([][]*Cell, nr)
	backing := make([]*Cell, nr*nc)
	for r := range cells {
		cells[r] = backing[r*nc : (r+1)*nc : (r+1)*nc]
	}
	return &assembly{
		tol:       tol,
		rows:      b.Rows,
		cols:      b.Cols,
		origin:    geom.Pt(b.Bounds.X, b.Bounds.Y),
		cells:     cells,
		onOverlap: func(Overlap) {},
	}
}

// place puts every placement into the grid in order.
func (a *assembly) place(placed []Placement) error {
	for _, p := range placed {
		if err := a.placeOne(p); err != nil {
			return err
		}
	}
	return nil
}

func (a *assembly) placeOne(p Placement) error {
	r0, ok := search(a.rows, p.Rect.MinY(), a.tol)
	if !ok {
		return invariantError(p.Node, "top edge %g matches no row boundary", p.Rect.MinY())
	}
	c0, ok := search(a.cols, p.Rect.MinX(), a.tol)
	if !ok {
		return invariantError(p.Node, "left edge %g matches no column boundary", p.Rect.MinX())
	}

	if holder := a.cells[r0][c0]; holder != nil {
		a.overlap(Overlap{Shape: p.Node, Holder: holder.Source, Row: r0, Col: c0})
		return nil
	}

	r1, ok := a.spanEnd(a.rows, r0, p.Rect.MaxY())
	if !ok {
		return invariantError(p.Node, "bottom edge %g matches no row boundary after %d", p.Rect.MaxY(), r0)
	}
	c1, ok := a.spanEnd(a.cols, c0, p.Rect.MaxX())
	if !ok {
		return invariantError(p.Node, "right edge %g matches no column boundary after %d", p.Rect.MaxX(), c0)
	}

	cell := &Cell{
		Row:     r0,
		Col:     c0,
		RowSpan: r1 - r0,
		ColSpan: c1 - c0,
		Source:  p.Node,
		Fill:    p.Node.EffectiveFill(),
		Visible: true,
		Frame:   a.frame(r0, c0, r1, c1),
	}

	contested := false
	for r := r0; r < r1; r++ {
		for c := c0; c < c1; c++ {
			if holder := a.cells[r][c]; holder != nil {
				if !contested {
					a.overlap(Overlap{Shape: p.Node, Holder: holder.Source, Row: r, Col: c, Partial: true})
					contested = true
				}
				continue
			}
			a.cells[r][c] = cell
		}
	}
	return nil
}

// spanEnd scans forward from start for the boundary matching edge and
// returns its index.
func (a *assembly) spanEnd(bounds []float64, start int, edge float64) (int, bool) {
	for i := start + 1; i < len(bounds); i++ {
		if d := bounds[i] - edge; d <= a.tol && d >= -a.tol {
			return i, true
		}
	}
	return -1, false
}

// frame returns the rectangle between boundary indices, relative to the
// table origin.
func (a *assembly) frame(r0, c0, r1, c1 int) geom.Rect {
	return geom.FromEdges(a.cols[c0], a.rows[r0], a.cols[c1], a.rows[r1]).
		Offset(-a.origin.X, -a.origin.Y)
}

func (a *assembly) overlap(o Overlap) {
	a.diags = append(a.diags, o)
	a.onOverlap(o)
}

// table freezes the assembled grid.
func (a *assembly) table(bounds geom.Rect) *Table {
	rows := make([]Row, len(a.rows)-1)
	for i := range rows {
		rows[i] = Row{Start: a.rows[i], Length: a.rows[i+1] - a.rows[i]}
	}
	cols := make([]Column, len(a.cols)-1)
	for j := range cols {
		cols[j] = Column{Start: a.cols[j], Length: a.cols[j+1] - a.cols[j]}
	}
	return &Table{
		rows:   rows,
		cols:   cols,
		cells:  a.cells,
		bounds: bounds,
		diags:  a.diags,
	}
}

// invariantError reports boundary extraction and assembly disagreeing about
// the shape set.
func invariantError(n *shape.Node, format string, args ...any) error {
	return errors.New(errors.ErrCodeGridInvariant, "shape %q: "+format,
		append([]any{n.Label()}, args...)...)
}
