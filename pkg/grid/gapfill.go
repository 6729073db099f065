package grid

// fillGaps covers every unclaimed position with invisible cells. Runs of
// empty positions grow right first, then down while the whole strip below
// is empty.
func (a *assembly) fillGaps(fill string) {
	nr := len(a.cells)
	if nr == 0 {
		return
	}
	nc := len(a.cells[0])

	for r := 0; r < nr; r++ {
		for c := 0; c < nc; {
			if a.cells[r][c] != nil {
				c++
				continue
			}

			colSpan := 1
			for c+colSpan < nc && a.cells[r][c+colSpan] == nil {
				colSpan++
			}
			rowSpan := 1
			for r+rowSpan < nr && a.stripEmpty(r+rowSpan, c, c+colSpan) {
				rowSpan++
			}

			cell := &Cell{
				Row:     r,
				Col:     c,
				RowSpan: rowSpan,
				ColSpan: colSpan,
				Fill:    fill,
				Frame:   a.frame(r, c, r+rowSpan, c+colSpan),
			}
			for rr := r; rr < r+rowSpan; rr++ {
				for cc := c; cc < c+colSpan; cc++ {
					a.cells[rr][cc] = cell
				}
			}

			if c == 0 && colSpan == nc {
				r += rowSpan - 1
				break
			}
			c += colSpan
		}
	}
}

func (a *assembly) stripEmpty(r, c0, c1 int) bool {
	for c := c0; c < c1; c++ {
		if a.cells[r][c] != nil {
			return false
		}
	}
	return true
}
