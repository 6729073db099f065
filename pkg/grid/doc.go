// Package grid infers a row/column table from freely positioned shapes.
//
// # Overview
//
// Shapes in a document are placed anywhere, rotated, scaled and skewed.
// When an exporter needs a spreadsheet-like structure, this package projects
// every candidate shape into the space of a common ancestor and turns the
// projected edges into a grid:
//
//  1. [ExtractBoundaries] projects each shape and collects its top/bottom
//     edges as row boundaries and its left/right edges as column
//     boundaries. Shapes thinner than the tolerance are dropped. The sorted
//     boundary lists are collapsed with [Dedupe].
//  2. Assembly places each shape at the grid position of its top-left
//     corner and claims the row/column span up to its bottom-right corner.
//  3. Gap filling covers every unclaimed position with invisible synthetic
//     cells, coalesced into rectangles row-major.
//
// The result is a [Table]: every (row, col) position maps to exactly one
// [Cell], and all positions inside a spanning cell share the same *Cell.
//
// # Synthesizing
//
//	s := grid.Synthesizer{Logger: logger}
//	t, ok, err := s.Synthesize(ctx, grid.Request{
//	    Container:  page,
//	    Candidates: page.Children(),
//	})
//	if err != nil {
//	    return err // internal invariant violation or disjoint trees
//	}
//	if !ok {
//	    // fewer than two boundaries on an axis: not a table
//	}
//
// # Overlaps
//
// When two shapes claim the same position the first one in candidate order
// wins; the later shape's geometry is dropped and an [Overlap] is recorded in
// [Table.Diagnostics]. The synthesizer logs a single warning per call no
// matter how many overlaps occur.
//
// # Tolerance
//
// Two coordinates within [DefaultTolerance] (0.5 units) are treated as the
// same boundary, so 10.0 and 10.3 collapse into one edge.
package grid
