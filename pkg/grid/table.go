package grid

import (
	"fmt"

	"github.com/matzehuels/shapegrid/pkg/geom"
	"github.com/matzehuels/shapegrid/pkg/shape"
)

// Row is a horizontal band of the grid. Start is in the container's space.
type Row struct {
	Start  float64
	Length float64
}

// Height returns the row's height.
func (r Row) Height() float64 { return r.Length }

// End returns the bottom edge of the row.
func (r Row) End() float64 { return r.Start + r.Length }

// Column is a vertical band of the grid. Start is in the container's space.
type Column struct {
	Start  float64
	Length float64
}

// Width returns the column's width.
func (c Column) Width() float64 { return c.Length }

// End returns the right edge of the column.
func (c Column) End() float64 { return c.Start + c.Length }

// Cell is one placed region of the grid.
type Cell struct {
	Row, Col         int
	RowSpan, ColSpan int

	// Source is the shape the cell was built from; nil for synthetic cells.
	Source *shape.Node

	// Fill is the first non-empty fill on the source's ancestor chain, or
	// the container's for synthetic cells.
	Fill string

	// Visible is false only for synthetic cells.
	Visible bool

	// Frame is the cell's rectangle relative to the table origin.
	Frame geom.Rect
}

// Synthetic reports whether the cell was created by gap filling.
func (c *Cell) Synthetic() bool { return c.Source == nil }

// Covers reports whether the grid position (row, col) lies inside the
// cell's span.
func (c *Cell) Covers(row, col int) bool {
	return row >= c.Row && row < c.Row+c.RowSpan && col >= c.Col && col < c.Col+c.ColSpan
}

func (c *Cell) String() string {
	name := "synthetic"
	if c.Source != nil {
		name = c.Source.Label()
	}
	return fmt.Sprintf("%s@(%d,%d) span %dx%d", name, c.Row, c.Col, c.RowSpan, c.ColSpan)
}

// Overlap records a grid position claimed by more than one shape. The shape
// that got there first keeps it.
type Overlap struct {
	// Shape is the shape that lost the position.
	Shape *shape.Node

	// Holder is the shape that already held it.
	Holder *shape.Node

	// Row and Col are the first contested position.
	Row, Col int

	// Partial is true when the shape's origin was free and only part of
	// its span was contested; the shape still got a cell.
	Partial bool
}

func (o Overlap) String() string {
	holder := "?"
	if o.Holder != nil {
		holder = o.Holder.Label()
	}
	kind := "origin"
	if o.Partial {
		kind = "span"
	}
	return fmt.Sprintf("%s overlaps %s at (%d,%d) [%s]", o.Shape.Label(), holder, o.Row, o.Col, kind)
}

// Table is a synthesized grid. It is immutable once returned.
type Table struct {
	rows   []Row
	cols   []Column
	cells  [][]*Cell
	bounds geom.Rect
	diags  []Overlap
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int { return len(t.rows) }

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int { return len(t.cols) }

// Row returns row i.
func (t *Table) Row(i int) Row { return t.rows[i] }

// Column returns column j.
func (t *Table) Column(j int) Column { return t.cols[j] }

// Rows returns a copy of the row list.
func (t *Table) Rows() []Row { return append([]Row(nil), t.rows...) }

// Columns returns a copy of the column list.
func (t *Table) Columns() []Column { return append([]Column(nil), t.cols...) }

// Cell returns the cell covering (row, col). Positions inside a spanning
// cell all return the same *Cell.
func (t *Table) Cell(row, col int) *Cell { return t.cells[row][col] }

// Cells returns the distinct cells in row-major order of first appearance.
func (t *Table) Cells() []*Cell {
	var out []*Cell
	for r, row := range t.cells {
		for c, cell := range row {
			if cell.Row == r && cell.Col == c {
				out = append(out, cell)
			}
		}
	}
	return out
}

// Diagnostics returns the overlaps recorded while assembling the table.
func (t *Table) Diagnostics() []Overlap { return append([]Overlap(nil), t.diags...) }

// Origin returns the top-left corner of the table in the container's space.
// Cell frames are relative to it.
func (t *Table) Origin() geom.Point { return geom.Pt(t.bounds.X, t.bounds.Y) }

// Bounds returns the union of all placed shapes and the minimum rectangle
// in the container's space.
func (t *Table) Bounds() geom.Rect { return t.bounds }

// Size returns the total width and height of the grid.
func (t *Table) Size() (w, h float64) {
	if len(t.cols) > 0 {
		w = t.cols[len(t.cols)-1].End() - t.cols[0].Start
	}
	if len(t.rows) > 0 {
		h = t.rows[len(t.rows)-1].End() - t.rows[0].Start
	}
	return w, h
}

// VisibleCount returns the number of distinct cells built from shapes.
func (t *Table) VisibleCount() int {
	n := 0
	for _, c := range t.Cells() {
		if c.Visible {
			n++
		}
	}
	return n
}

// SyntheticCount returns the number of distinct gap-filler cells.
func (t *Table) SyntheticCount() int { return len(t.Cells()) - t.VisibleCount() }
