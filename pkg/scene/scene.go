package scene

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/matzehuels/shapegrid/pkg/errors"
	"github.com/matzehuels/shapegrid/pkg/geom"
	"github.com/matzehuels/shapegrid/pkg/grid"
	"github.com/matzehuels/shapegrid/pkg/shape"
)

// Candidate selection modes.
const (
	CandidatesChildren = "children"
	CandidatesLeaves   = "leaves"
)

// Scene is a shape tree plus the parameters for synthesizing its table.
type Scene struct {
	Name       string     `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	Container  string     `json:"container,omitempty" toml:"container,omitempty" yaml:"container,omitempty"`
	Candidates string     `json:"candidates,omitempty" toml:"candidates,omitempty" yaml:"candidates,omitempty"`
	MinRect    *geom.Rect `json:"min_rect,omitempty" toml:"min_rect,omitempty" yaml:"min_rect,omitempty"`
	Root       Node       `json:"root" toml:"root" yaml:"root"`
}

// Node is the document form of a [shape.Node].
type Node struct {
	ID          string   `json:"id,omitempty" toml:"id,omitempty" yaml:"id,omitempty"`
	Name        string   `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	Kind        string   `json:"kind,omitempty" toml:"kind,omitempty" yaml:"kind,omitempty"`
	X           float64  `json:"x,omitempty" toml:"x,omitempty" yaml:"x,omitempty"`
	Y           float64  `json:"y,omitempty" toml:"y,omitempty" yaml:"y,omitempty"`
	Width       float64  `json:"width" toml:"width" yaml:"width"`
	Height      float64  `json:"height" toml:"height" yaml:"height"`
	Roll        float64  `json:"roll,omitempty" toml:"roll,omitempty" yaml:"roll,omitempty"`
	ScaleX      *float64 `json:"scale_x,omitempty" toml:"scale_x,omitempty" yaml:"scale_x,omitempty"`
	ScaleY      *float64 `json:"scale_y,omitempty" toml:"scale_y,omitempty" yaml:"scale_y,omitempty"`
	SkewX       float64  `json:"skew_x,omitempty" toml:"skew_x,omitempty" yaml:"skew_x,omitempty"`
	SkewY       float64  `json:"skew_y,omitempty" toml:"skew_y,omitempty" yaml:"skew_y,omitempty"`
	Fill        string   `json:"fill,omitempty" toml:"fill,omitempty" yaml:"fill,omitempty"`
	StrokeWidth float64  `json:"stroke_width,omitempty" toml:"stroke_width,omitempty" yaml:"stroke_width,omitempty"`
	Children    []Node   `json:"children,omitempty" toml:"children,omitempty" yaml:"children,omitempty"`
}

// Label returns the name, falling back to the id.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// transform returns the node's roll/scale/skew record.
func (n *Node) transform() shape.Transform {
	t := shape.Transform{Roll: n.Roll, ScaleX: 1, ScaleY: 1, SkewX: n.SkewX, SkewY: n.SkewY}
	if n.ScaleX != nil {
		t.ScaleX = *n.ScaleX
	}
	if n.ScaleY != nil {
		t.ScaleY = *n.ScaleY
	}
	return t
}

// walk visits every document node in pre-order using an explicit stack.
func (s *Scene) walk(fn func(n *Node)) {
	stack := []*Node{&s.Root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(n)
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, &n.Children[i])
		}
	}
}

// AssignIDs gives every node without an id a name-based UUID derived from
// the scene name and the node's position, so reloading an unchanged
// document yields the same ids.
func (s *Scene) AssignIDs() {
	type frame struct {
		n    *Node
		path string
	}

	ns := uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:shapegrid:"+s.Name))
	stack := []frame{{n: &s.Root, path: "0"}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.n.ID == "" {
			f.n.ID = uuid.NewSHA1(ns, []byte(f.path)).String()
		}
		for i := range f.n.Children {
			stack = append(stack, frame{n: &f.n.Children[i], path: f.path + "/" + strconv.Itoa(i)})
		}
	}
}

// NodeCount returns the number of nodes in the document.
func (s *Scene) NodeCount() int {
	count := 0
	s.walk(func(*Node) { count++ })
	return count
}

// Validate checks ids, kinds, colors and the synthesis parameters.
func (s *Scene) Validate() error {
	switch s.Candidates {
	case "", CandidatesChildren, CandidatesLeaves:
	default:
		return errors.New(errors.ErrCodeInvalidScene,
			"candidates must be %q or %q, got %q", CandidatesChildren, CandidatesLeaves, s.Candidates)
	}
	if r := s.MinRect; r != nil && (r.Width < 0 || r.Height < 0) {
		return errors.New(errors.ErrCodeInvalidScene, "min_rect %v has negative size", *r)
	}

	seen := make(map[string]bool)
	var err error
	s.walk(func(n *Node) {
		if err != nil {
			return
		}
		if err = errors.ValidateNodeID(n.ID); err != nil {
			return
		}
		if n.ID != "" {
			if seen[n.ID] {
				err = errors.New(errors.ErrCodeInvalidScene, "duplicate node id %q", n.ID)
				return
			}
			seen[n.ID] = true
		}
		if n.Kind != "" && !shape.ValidKinds[shape.Kind(n.Kind)] {
			err = errors.New(errors.ErrCodeInvalidScene, "node %q: unknown kind %q", n.Label(), n.Kind)
			return
		}
		if cerr := errors.ValidateColor(n.Fill); cerr != nil {
			err = errors.Wrap(errors.ErrCodeInvalidScene, cerr, "node %q", n.Label())
			return
		}
		if n.StrokeWidth < 0 {
			err = errors.New(errors.ErrCodeInvalidScene, "node %q: negative stroke width", n.Label())
		}
	})
	return err
}

// Tree builds the shape tree described by the document.
func (s *Scene) Tree() (*shape.Node, error) {
	type frame struct {
		doc    *Node
		parent *shape.Node
	}

	var root *shape.Node
	stack := []frame{{doc: &s.Root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := shape.New(f.doc.Name, f.doc.X, f.doc.Y, f.doc.Width, f.doc.Height)
		if f.doc.ID != "" {
			n.ID = f.doc.ID
		}
		if f.doc.Kind != "" {
			n.Kind = shape.Kind(f.doc.Kind)
		}
		n.Fill = f.doc.Fill
		n.StrokeWidth = f.doc.StrokeWidth
		n.SetTransform(f.doc.transform())

		if f.parent == nil {
			root = n
		} else if err := f.parent.AddChild(n); err != nil {
			return nil, err
		}
		for i := len(f.doc.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{doc: &f.doc.Children[i], parent: n})
		}
	}
	return root, nil
}

// Request selects the container and candidates of root for synthesis.
// root must be a tree built by [Scene.Tree].
func (s *Scene) Request(root *shape.Node) (grid.Request, error) {
	container := root
	if s.Container != "" {
		if container = root.Find(s.Container); container == nil {
			return grid.Request{}, errors.New(errors.ErrCodeNotFound,
				"container %q not found in scene", s.Container)
		}
	}

	var candidates []*shape.Node
	switch {
	case container.ChildCount() == 0:
	case s.Candidates == CandidatesLeaves:
		candidates = container.Leaves()
	default:
		candidates = container.Children()
	}

	req := grid.Request{Container: container, Candidates: candidates}
	if s.MinRect != nil {
		r := *s.MinRect
		req.MinRect = &r
	}
	return req, nil
}

// Capture converts a live tree into a document.
func Capture(name string, root *shape.Node) *Scene {
	type frame struct {
		n   *shape.Node
		doc *Node
	}

	s := &Scene{Name: name}
	stack := []frame{{n: root, doc: &s.Root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		w, h := f.n.SignedSize()
		*f.doc = Node{
			ID:          f.n.ID,
			Name:        f.n.Name,
			Kind:        string(f.n.Kind),
			X:           f.n.X(),
			Y:           f.n.Y(),
			Width:       w,
			Height:      h,
			Fill:        f.n.Fill,
			StrokeWidth: f.n.StrokeWidth,
		}
		if t, ok := f.n.Transform(); ok {
			f.doc.Roll, f.doc.SkewX, f.doc.SkewY = t.Roll, t.SkewX, t.SkewY
			if t.ScaleX != 1 {
				sx := t.ScaleX
				f.doc.ScaleX = &sx
			}
			if t.ScaleY != 1 {
				sy := t.ScaleY
				f.doc.ScaleY = &sy
			}
		}

		children := f.n.Children()
		if len(children) == 0 {
			continue
		}
		f.doc.Children = make([]Node, len(children))
		for i, c := range children {
			stack = append(stack, frame{n: c, doc: &f.doc.Children[i]})
		}
	}
	return s
}
