package grid

import (
	"fmt"
	"slices"
	"testing"

	"github.com/matzehuels/shapegrid/pkg/errors"
	"github.com/matzehuels/shapegrid/pkg/geom"
	"github.com/matzehuels/shapegrid/pkg/shape"
)

func TestDedupe(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{"empty", nil, nil},
		{"single", []float64{3}, []float64{3}},
		{"exact duplicates", []float64{0, 0, 50, 50, 100}, []float64{0, 50, 100}},
		{"within tolerance", []float64{0, 10, 10.3, 20}, []float64{0, 10, 20}},
		{"at tolerance", []float64{0, 0.5, 1.2}, []float64{0, 1.2}},
		{"chain compares to last kept", []float64{10, 10.3, 10.6, 10.9}, []float64{10, 10.6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Dedupe(slices.Clone(tt.in), DefaultTolerance)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Dedupe(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDedupeIdempotent(t *testing.T) {
	inputs := [][]float64{
		{0, 0.2, 0.4, 0.6, 0.8, 1.0, 1.2},
		{-5, -4.9, 0, 10, 10.3, 10.6, 11, 99.5, 100},
		{1, 2, 3, 4},
	}
	for _, in := range inputs {
		once := Dedupe(slices.Clone(in), DefaultTolerance)
		twice := Dedupe(slices.Clone(once), DefaultTolerance)
		if !slices.Equal(once, twice) {
			t.Errorf("Dedupe not idempotent for %v: %v then %v", in, once, twice)
		}
	}
}

func TestSearch(t *testing.T) {
	bounds := []float64{0, 10, 20.4, 30}
	tests := []struct {
		v     float64
		want  int
		found bool
	}{
		{0, 0, true},
		{10.3, 1, true},
		{9.6, 1, true},
		{20, 2, true},
		{30.5, 3, true},
		{15, -1, false},
		{-1, -1, false},
		{31, -1, false},
	}
	for _, tt := range tests {
		got, ok := search(bounds, tt.v, DefaultTolerance)
		if got != tt.want || ok != tt.found {
			t.Errorf("search(%v) = %d, %v; want %d, %v", tt.v, got, ok, tt.want, tt.found)
		}
	}
}

func TestExtractBoundaries(t *testing.T) {
	root := container(t, geom.R(0, 0, 50, 50), geom.R(50, 0, 50.5, 50), geom.R(0, 50, 100, 0.2))

	b, ok, err := ExtractBoundaries(root.Children(), root, nil, DefaultTolerance)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a table")
	}
	if want := []float64{0, 50, 100.5}; !slices.Equal(b.Cols, want) {
		t.Errorf("Cols = %v, want %v", b.Cols, want)
	}
	if want := []float64{0, 50}; !slices.Equal(b.Rows, want) {
		t.Errorf("Rows = %v, want %v", b.Rows, want)
	}
	if len(b.Placed) != 2 || b.Dropped != 1 {
		t.Errorf("placed/dropped = %d/%d, want 2/1", len(b.Placed), b.Dropped)
	}
	if !b.Bounds.Near(geom.R(0, 0, 100.5, 50), 1e-9) {
		t.Errorf("Bounds = %v", b.Bounds)
	}
}

func TestExtractBoundariesProjectsIntoContainer(t *testing.T) {
	root := shape.NewGroup("page", 0, 0, 500, 500)
	g := shape.NewGroup("section", 100, 200, 300, 300)
	a := shape.New("a", 10, 10, 40, 20)
	a.StrokeWidth = 2
	rule := shape.NewLine("rule", 10, 40, 40, 1)
	rule.StrokeWidth = 4
	mustAdd(t, root, g)
	mustAdd(t, g, a, rule)

	b, ok, err := ExtractBoundaries([]*shape.Node{a, rule}, root, nil, DefaultTolerance)
	if err != nil || !ok {
		t.Fatalf("ExtractBoundaries() = %v, %v", ok, err)
	}
	// a's marked bounds include the stroke; the line is measured by its frame.
	if want := geom.R(109, 209, 42, 22); !b.Placed[0].Rect.Near(want, 1e-9) {
		t.Errorf("shape rect = %v, want %v", b.Placed[0].Rect, want)
	}
	if want := geom.R(110, 240, 40, 1); !b.Placed[1].Rect.Near(want, 1e-9) {
		t.Errorf("line rect = %v, want %v", b.Placed[1].Rect, want)
	}
}

func TestExtractBoundariesNoStructure(t *testing.T) {
	root := container(t, geom.R(0, 0, 0.3, 100), geom.R(10, 10, 100, 0.5))

	_, ok, err := ExtractBoundaries(root.Children(), root, nil, DefaultTolerance)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("degenerate shapes should not form a table")
	}

	_, ok, _ = ExtractBoundaries(nil, root, nil, DefaultTolerance)
	if ok {
		t.Error("no candidates and no minimum rectangle should not form a table")
	}
}

func TestExtractBoundariesDisjointTrees(t *testing.T) {
	root := container(t)
	stray := shape.New("stray", 0, 0, 10, 10)

	_, _, err := ExtractBoundaries([]*shape.Node{stray}, root, nil, DefaultTolerance)
	if !errors.Is(err, errors.ErrCodeDisjointTrees) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeDisjointTrees)
	}
}

// container returns a group holding one shape per rect, named s0, s1, ...
func container(t *testing.T, rects ...geom.Rect) *shape.Node {
	t.Helper()
	root := shape.NewGroup("container", 0, 0, 1000, 1000)
	for i, r := range rects {
		n := shape.New(fmt.Sprintf("s%d", i), r.X, r.Y, r.Width, r.Height)
		mustAdd(t, root, n)
	}
	return root
}

func mustAdd(t *testing.T, parent *shape.Node, children ...*shape.Node) {
	t.Helper()
	for _, c := range children {
		if err := parent.AddChild(c); err != nil {
			t.Fatal(err)
		}
	}
}
