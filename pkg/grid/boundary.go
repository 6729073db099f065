package grid

import (
	"math"
	"slices"
	"sort"

	"github.com/matzehuels/shapegrid/pkg/geom"
	"github.com/matzehuels/shapegrid/pkg/shape"
)

// DefaultTolerance is the distance within which two coordinates are the
// same boundary.
const DefaultTolerance = 0.5

// Placement is a retained candidate and its rectangle in the container's
// space.
type Placement struct {
	Node *shape.Node
	Rect geom.Rect
}

// Boundaries is the result of [ExtractBoundaries].
type Boundaries struct {
	// Rows and Cols are sorted ascending and deduplicated.
	Rows []float64
	Cols []float64

	// Bounds is the union of all retained rectangles and the minimum
	// rectangle, if any.
	Bounds geom.Rect

	// Placed lists the retained candidates in input order.
	Placed []Placement

	// Dropped counts candidates discarded as too thin to be structural.
	Dropped int
}

// ExtractBoundaries projects candidates into container's space and returns
// the deduplicated row and column boundaries.
//
// Candidates of kind [shape.KindLine] are measured by their parent-relative
// frame, all others by their marked bounds. Candidates whose projected width
// or height is at most tol are dropped without error. minRect, when non-nil,
// contributes its edges and is unioned into the bounds.
//
// ok is false when either axis ends up with fewer than two boundaries. The
// only errors come from projecting a candidate that does not share a tree
// with container.
func ExtractBoundaries(candidates []*shape.Node, container *shape.Node, minRect *geom.Rect, tol float64) (b *Boundaries, ok bool, err error) {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	b = &Boundaries{
		Rows:   make([]float64, 0, 2*len(candidates)+2),
		Cols:   make([]float64, 0, 2*len(candidates)+2),
		Placed: make([]Placement, 0, len(candidates)),
	}

	haveBounds := false
	add := func(r geom.Rect) {
		b.Rows = append(b.Rows, r.MinY(), r.MaxY())
		b.Cols = append(b.Cols, r.MinX(), r.MaxX())
		if haveBounds {
			b.Bounds = b.Bounds.Union(r)
		} else {
			b.Bounds, haveBounds = r, true
		}
	}

	for _, n := range candidates {
		r, err := project(n, container)
		if err != nil {
			return nil, false, err
		}
		if r.Width <= tol || r.Height <= tol {
			b.Dropped++
			continue
		}
		b.Placed = append(b.Placed, Placement{Node: n, Rect: r})
		add(r)
	}
	if minRect != nil {
		add(*minRect)
	}

	slices.Sort(b.Rows)
	slices.Sort(b.Cols)
	b.Rows = Dedupe(b.Rows, tol)
	b.Cols = Dedupe(b.Cols, tol)

	if len(b.Rows) < 2 || len(b.Cols) < 2 {
		return b, false, nil
	}
	return b, true, nil
}

func project(n *shape.Node, container *shape.Node) (geom.Rect, error) {
	if n.Kind == shape.KindLine {
		return n.FrameIn(container)
	}
	return n.MarkedBoundsIn(container)
}

// Dedupe collapses a sorted slice in place, keeping a value only if it is
// more than tol above the last kept value. Applying Dedupe to its own
// output returns it unchanged.
func Dedupe(sorted []float64, tol float64) []float64 {
	if len(sorted) == 0 {
		return sorted
	}
	k := 1
	for _, v := range sorted[1:] {
		if v-sorted[k-1] > tol {
			sorted[k] = v
			k++
		}
	}
	return sorted[:k]
}

// search returns the index of the boundary within tol of v.
func search(bounds []float64, v, tol float64) (int, bool) {
	i := sort.Search(len(bounds), func(i int) bool { return bounds[i] >= v-tol })
	if i < len(bounds) && math.Abs(bounds[i]-v) <= tol {
		return i, true
	}
	return -1, false
}
