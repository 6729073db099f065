package sink

import (
	"encoding/json"

	"github.com/matzehuels/shapegrid/pkg/grid"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	name          string
	omitSynthetic bool
}

// WithJSONName records a table name (usually the scene name) in the output.
func WithJSONName(name string) JSONOption { return func(r *jsonRenderer) { r.name = name } }

// WithJSONOmitSynthetic leaves gap-filler cells out of the cell list.
func WithJSONOmitSynthetic() JSONOption { return func(r *jsonRenderer) { r.omitSynthetic = true } }

type jsonOutput struct {
	Name        string        `json:"name,omitempty"`
	OriginX     float64       `json:"origin_x"`
	OriginY     float64       `json:"origin_y"`
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	Rows        []jsonBand    `json:"rows"`
	Columns     []jsonBand    `json:"columns"`
	Cells       []jsonCell    `json:"cells"`
	Diagnostics []jsonOverlap `json:"diagnostics,omitempty"`
}

type jsonBand struct {
	Start  float64 `json:"start"`
	Length float64 `json:"length"`
}

type jsonCell struct {
	Row       int     `json:"row"`
	Col       int     `json:"col"`
	RowSpan   int     `json:"row_span"`
	ColSpan   int     `json:"col_span"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Fill      string  `json:"fill,omitempty"`
	Visible   bool    `json:"visible"`
	SourceID  string  `json:"source_id,omitempty"`
	Source    string  `json:"source,omitempty"`
	Synthetic bool    `json:"synthetic,omitempty"`
}

type jsonOverlap struct {
	ShapeID  string `json:"shape_id"`
	Shape    string `json:"shape"`
	HolderID string `json:"holder_id,omitempty"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	Partial  bool   `json:"partial,omitempty"`
}

// RenderJSON exports the table as a pretty-printed JSON document.
//
// The JSON includes the origin and size of the grid, the row and column
// bands, every distinct cell in row-major order and the overlap
// diagnostics. RenderJSON returns an error only if JSON marshaling fails.
func RenderJSON(t *grid.Table, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	origin := t.Origin()
	w, h := t.Size()
	out := jsonOutput{
		Name:    r.name,
		OriginX: origin.X,
		OriginY: origin.Y,
		Width:   w,
		Height:  h,
		Rows:    make([]jsonBand, 0, t.RowCount()),
		Columns: make([]jsonBand, 0, t.ColumnCount()),
		Cells:   buildJSONCells(t, r.omitSynthetic),
	}
	for _, row := range t.Rows() {
		out.Rows = append(out.Rows, jsonBand{Start: row.Start, Length: row.Length})
	}
	for _, col := range t.Columns() {
		out.Columns = append(out.Columns, jsonBand{Start: col.Start, Length: col.Length})
	}
	for _, d := range t.Diagnostics() {
		jo := jsonOverlap{ShapeID: d.Shape.ID, Shape: d.Shape.Label(), Row: d.Row, Col: d.Col, Partial: d.Partial}
		if d.Holder != nil {
			jo.HolderID = d.Holder.ID
		}
		out.Diagnostics = append(out.Diagnostics, jo)
	}

	return json.MarshalIndent(out, "", "  ")
}

func buildJSONCells(t *grid.Table, omitSynthetic bool) []jsonCell {
	cells := t.Cells()
	out := make([]jsonCell, 0, len(cells))
	for _, c := range cells {
		if omitSynthetic && c.Synthetic() {
			continue
		}
		jc := jsonCell{
			Row:       c.Row,
			Col:       c.Col,
			RowSpan:   c.RowSpan,
			ColSpan:   c.ColSpan,
			X:         c.Frame.X,
			Y:         c.Frame.Y,
			Width:     c.Frame.Width,
			Height:    c.Frame.Height,
			Fill:      c.Fill,
			Visible:   c.Visible,
			Synthetic: c.Synthetic(),
		}
		if c.Source != nil {
			jc.SourceID = c.Source.ID
			jc.Source = c.Source.Label()
		}
		out = append(out, jc)
	}
	return out
}
