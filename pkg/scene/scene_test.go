package scene

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/shapegrid/pkg/errors"
	"github.com/matzehuels/shapegrid/pkg/grid"
	"github.com/matzehuels/shapegrid/pkg/shape"
)

const invoiceJSON = `{
  "name": "invoice",
  "container": "body",
  "candidates": "leaves",
  "root": {
    "name": "page",
    "kind": "group",
    "width": 600,
    "height": 800,
    "fill": "#ffffff",
    "children": [
      {
        "id": "body",
        "kind": "group",
        "y": 100,
        "width": 600,
        "height": 400,
        "children": [
          {"name": "qty", "width": 100, "height": 40, "fill": "#eeeeee"},
          {"name": "item", "x": 100, "width": 500, "height": 40},
          {"name": "rule", "kind": "line", "y": 40, "width": 600, "height": 1},
          {"name": "badge", "x": 300, "y": 200, "width": 50, "height": 50, "roll": 45, "scale_x": 2}
        ]
      }
    ]
  }
}`

const invoiceTOML = `
name = "invoice"
container = "body"
candidates = "leaves"

[root]
name = "page"
kind = "group"
width = 600.0
height = 800.0
fill = "#ffffff"

[[root.children]]
id = "body"
kind = "group"
y = 100.0
width = 600.0
height = 400.0

[[root.children.children]]
name = "qty"
width = 100.0
height = 40.0
fill = "#eeeeee"

[[root.children.children]]
name = "item"
x = 100.0
width = 500.0
height = 40.0

[[root.children.children]]
name = "rule"
kind = "line"
y = 40.0
width = 600.0
height = 1.0

[[root.children.children]]
name = "badge"
x = 300.0
y = 200.0
width = 50.0
height = 50.0
roll = 45.0
scale_x = 2.0
`

const invoiceYAML = `
name: invoice
container: body
candidates: leaves
root:
  name: page
  kind: group
  width: 600
  height: 800
  fill: "#ffffff"
  children:
    - id: body
      kind: group
      y: 100
      width: 600
      height: 400
      children:
        - {name: qty, width: 100, height: 40, fill: "#eeeeee"}
        - {name: item, x: 100, width: 500, height: 40}
        - {name: rule, kind: line, y: 40, width: 600, height: 1}
        - {name: badge, x: 300, y: 200, width: 50, height: 50, roll: 45, scale_x: 2}
`

func decode(t *testing.T, data string, f Format) *Scene {
	t.Helper()
	s, err := Decode(strings.NewReader(data), f)
	if err != nil {
		t.Fatalf("Decode(%s) error = %v", f, err)
	}
	return s
}

func TestDecodeFormatsAgree(t *testing.T) {
	docs := map[Format]string{
		FormatJSON: invoiceJSON,
		FormatTOML: invoiceTOML,
		FormatYAML: invoiceYAML,
	}

	var want []string
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			s := decode(t, docs[f], f)
			if s.Name != "invoice" || s.NodeCount() != 6 {
				t.Fatalf("scene = %q with %d nodes", s.Name, s.NodeCount())
			}
			root, err := s.Tree()
			if err != nil {
				t.Fatal(err)
			}
			req, err := s.Request(root)
			if err != nil {
				t.Fatal(err)
			}
			tbl, ok, err := grid.Synthesize(context.Background(), req)
			if err != nil || !ok {
				t.Fatalf("Synthesize() = %v, %v", ok, err)
			}

			var got []string
			for _, c := range tbl.Cells() {
				got = append(got, c.String())
			}
			if want == nil {
				want = got
				return
			}
			if strings.Join(got, "|") != strings.Join(want, "|") {
				t.Errorf("%s cells = %v, want %v", f, got, want)
			}
		})
	}
}

func TestTreeBuildsNodes(t *testing.T) {
	s := decode(t, invoiceJSON, FormatJSON)
	root, err := s.Tree()
	if err != nil {
		t.Fatal(err)
	}

	if root.Kind != shape.KindGroup || root.Fill != "#ffffff" {
		t.Errorf("root = %+v", root)
	}
	body := root.Find("body")
	if body == nil || body.ChildCount() != 4 {
		t.Fatalf("body = %v", body)
	}
	if root.Find("rule").Kind != shape.KindLine {
		t.Error("rule should be a line")
	}

	badge := root.Find("badge")
	rec, ok := badge.Transform()
	if !ok || rec.Roll != 45 || rec.ScaleX != 2 || rec.ScaleY != 1 {
		t.Errorf("badge transform = %+v, %v", rec, ok)
	}
	if root.Find("qty").HasTransform() {
		t.Error("missing scale should default to 1 and leave no record")
	}
	if root.Find("qty").ID == "" {
		t.Error("nodes without ids should get one")
	}
}

func TestAssignIDsIsStable(t *testing.T) {
	a := decode(t, invoiceJSON, FormatJSON)
	b := decode(t, invoiceJSON, FormatJSON)
	if a.Root.ID == "" || a.Root.ID != b.Root.ID {
		t.Errorf("root ids %q and %q should match across loads", a.Root.ID, b.Root.ID)
	}
	if a.Root.Children[0].ID != "body" {
		t.Errorf("explicit id replaced: %q", a.Root.Children[0].ID)
	}

	seen := map[string]bool{}
	a.walk(func(n *Node) {
		if seen[n.ID] {
			t.Errorf("duplicate generated id %q", n.ID)
		}
		seen[n.ID] = true
	})

	renamed := decode(t, strings.Replace(invoiceJSON, `"invoice"`, `"receipt"`, 1), FormatJSON)
	if renamed.Root.ID == a.Root.ID {
		t.Error("ids should depend on the scene name")
	}
}

func TestRequestSelection(t *testing.T) {
	s := decode(t, invoiceYAML, FormatYAML)
	root, _ := s.Tree()

	req, err := s.Request(root)
	if err != nil {
		t.Fatal(err)
	}
	if req.Container.ID != "body" || len(req.Candidates) != 4 {
		t.Errorf("leaves request = %s with %d candidates", req.Container.Label(), len(req.Candidates))
	}

	s.Container = ""
	s.Candidates = CandidatesChildren
	req, _ = s.Request(root)
	if req.Container != root || len(req.Candidates) != 1 {
		t.Errorf("children request = %s with %d candidates", req.Container.Label(), len(req.Candidates))
	}

	s.Container = "missing"
	if _, err := s.Request(root); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing container error = %v", err)
	}

	s.Container = "qty"
	req, _ = s.Request(root)
	if len(req.Candidates) != 0 {
		t.Errorf("childless container should have no candidates, got %d", len(req.Candidates))
	}
}

func TestDecodeRejectsInvalidScenes(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code errors.Code
	}{
		{"malformed", `{"root": `, errors.ErrCodeInvalidFormat},
		{"unknown field", `{"root": {"width": 1, "height": 1, "colour": "red"}}`, errors.ErrCodeInvalidFormat},
		{"bad kind", `{"root": {"kind": "circle", "width": 1, "height": 1}}`, errors.ErrCodeInvalidScene},
		{"bad color", `{"root": {"fill": "red", "width": 1, "height": 1}}`, errors.ErrCodeInvalidScene},
		{"duplicate id", `{"root": {"id": "a", "width": 1, "height": 1, "children": [{"id": "a", "width": 1, "height": 1}]}}`, errors.ErrCodeInvalidScene},
		{"bad candidates", `{"candidates": "all", "root": {"width": 1, "height": 1}}`, errors.ErrCodeInvalidScene},
		{"negative stroke", `{"root": {"width": 1, "height": 1, "stroke_width": -1}}`, errors.ErrCodeInvalidScene},
		{"negative min rect", `{"min_rect": {"x": 0, "y": 0, "width": -5, "height": 1}, "root": {"width": 1, "height": 1}}`, errors.ErrCodeInvalidScene},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc), FormatJSON)
			if !errors.Is(err, tt.code) {
				t.Errorf("Decode() error = %v, want %s", err, tt.code)
			}
		})
	}

	if _, err := Decode(strings.NewReader(invoiceTOML+"\nextra = 1\n"), FormatTOML); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("TOML unknown key error = %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"json", FormatJSON, true},
		{".TOML", FormatTOML, true},
		{"yml", FormatYAML, true},
		{"yaml", FormatYAML, true},
		{"xml", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if got != tt.want || (err == nil) != tt.ok {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}

	if _, err := FormatFromPath("scene"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("FormatFromPath without extension error = %v", err)
	}
}

func TestCaptureRoundTrip(t *testing.T) {
	page := shape.NewGroup("page", 0, 0, 300, 200)
	page.Fill = "#fafafa"
	flipped := shape.New("flipped", 10, 10, -80, 40)
	tilted := shape.New("tilted", 120, 10, 60, 60)
	tilted.SetRoll(30)
	tilted.SetScale(1.5, 1)
	tilted.StrokeWidth = 2
	_ = page.AddChild(flipped)
	_ = page.AddChild(tilted)

	dir := t.TempDir()
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			path := filepath.Join(dir, "scene."+string(f))
			if err := Save(path, Capture("captured", page)); err != nil {
				t.Fatal(err)
			}
			s, err := Load(path)
			if err != nil {
				t.Fatal(err)
			}
			root, err := s.Tree()
			if err != nil {
				t.Fatal(err)
			}

			if root.ID != page.ID || root.Fill != "#fafafa" {
				t.Errorf("root = %+v", root)
			}
			gotFlipped := root.Find(flipped.ID)
			if w, h := gotFlipped.SignedSize(); w != -80 || h != 40 {
				t.Errorf("flipped size = %v x %v", w, h)
			}
			gotTilted := root.Find("tilted")
			if rec, _ := gotTilted.Transform(); rec.Roll != 30 || rec.ScaleX != 1.5 || rec.ScaleY != 1 {
				t.Errorf("tilted transform = %+v", rec)
			}
			if !gotTilted.Frame().Near(tilted.Frame(), 1e-9) || gotTilted.StrokeWidth != 2 {
				t.Errorf("tilted frame = %v, want %v", gotTilted.Frame(), tilted.Frame())
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load() error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestLoadWrapsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("root: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), path) {
		t.Errorf("Load() error = %v, want it to name %s", err, path)
	}
}
