package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/shapegrid/pkg/grid"
)

const (
	defaultCellFill   = "#ffffff"
	defaultStroke     = "#333333"
	syntheticStroke   = "#9aa0a6"
	gridLineStroke    = "#d0d4d9"
	defaultFontSize   = 12.0
	defaultSVGPadding = 0.0
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	gridLines  bool
	synthetic  bool
	labels     bool
	background string
	padding    float64
}

// WithGridLines draws every row and column boundary.
func WithGridLines() SVGOption { return func(r *svgRenderer) { r.gridLines = true } }

// WithSyntheticOutlines draws gap-filler cells as dashed outlines.
func WithSyntheticOutlines() SVGOption { return func(r *svgRenderer) { r.synthetic = true } }

// WithLabels writes each visible cell's source label at its center.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// WithBackground fills the whole table area with color first.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithPadding adds an empty margin around the table.
func WithPadding(p float64) SVGOption { return func(r *svgRenderer) { r.padding = p } }

// RenderSVG draws the table with one rectangle per visible cell.
func RenderSVG(t *grid.Table, opts ...SVGOption) []byte {
	r := svgRenderer{padding: defaultSVGPadding}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := t.Size()
	fw, fh := w+2*r.padding, h+2*r.padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		fw, fh, fw, fh)
	fmt.Fprintf(&buf, `  <g transform="translate(%.2f %.2f)">`+"\n", r.padding, r.padding)

	if r.background != "" {
		fmt.Fprintf(&buf, `    <rect x="0" y="0" width="%.2f" height="%.2f" fill="%s"/>`+"\n", w, h, html.EscapeString(r.background))
	}

	cells := t.Cells()
	for _, c := range cells {
		switch {
		case c.Visible:
			renderCell(&buf, c)
		case r.synthetic:
			renderSyntheticCell(&buf, c)
		}
	}
	if r.gridLines {
		renderGridLines(&buf, t, w, h)
	}
	if r.labels {
		for _, c := range cells {
			if c.Visible {
				renderLabel(&buf, c)
			}
		}
	}

	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderCell(buf *bytes.Buffer, c *grid.Cell) {
	fill := c.Fill
	if fill == "" {
		fill = defaultCellFill
	}
	f := c.Frame
	fmt.Fprintf(buf, `    <rect id="cell-%d-%d" class="cell" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="%s" stroke-width="1"`,
		c.Row, c.Col, f.X, f.Y, f.Width, f.Height, html.EscapeString(fill), defaultStroke)
	if c.Source != nil {
		fmt.Fprintf(buf, ` data-source="%s"`, html.EscapeString(c.Source.ID))
	}
	buf.WriteString("/>\n")
}

func renderSyntheticCell(buf *bytes.Buffer, c *grid.Cell) {
	f := c.Frame
	fmt.Fprintf(buf, `    <rect id="cell-%d-%d" class="cell synthetic" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="%s" stroke-width="1" stroke-dasharray="4 3"/>`+"\n",
		c.Row, c.Col, f.X, f.Y, f.Width, f.Height, syntheticStroke)
}

func renderGridLines(buf *bytes.Buffer, t *grid.Table, w, h float64) {
	origin := t.Origin()
	for i := 1; i < t.RowCount(); i++ {
		y := t.Row(i).Start - origin.Y
		fmt.Fprintf(buf, `    <line class="grid" x1="0" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.5"/>`+"\n", y, w, y, gridLineStroke)
	}
	for j := 1; j < t.ColumnCount(); j++ {
		x := t.Column(j).Start - origin.X
		fmt.Fprintf(buf, `    <line class="grid" x1="%.2f" y1="0" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.5"/>`+"\n", x, x, h, gridLineStroke)
	}
}

func renderLabel(buf *bytes.Buffer, c *grid.Cell) {
	if c.Source == nil {
		return
	}
	center := c.Frame.Center()
	size := min(defaultFontSize, c.Frame.Height*0.6)
	fmt.Fprintf(buf, `    <text class="cell-text" x="%.2f" y="%.2f" font-family="sans-serif" font-size="%.1f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		center.X, center.Y, size, html.EscapeString(c.Source.Label()))
}
