package sink

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/shapegrid/pkg/grid"
)

const (
	defaultSheetName = "Sheet1"

	// Spreadsheet column widths are in characters and row heights in
	// points; one grid unit is taken as one pixel.
	pixelsPerChar   = 7.0
	pointsPerPixel  = 0.75
	maxColumnWidth  = 255.0
	maxRowHeight    = 409.0
	minExtentInCell = 0.1
)

// XLSXOption configures spreadsheet rendering via [RenderXLSX].
type XLSXOption func(*xlsxRenderer)

type xlsxRenderer struct {
	sheet   string
	labels  bool
	borders bool
}

// WithSheetName sets the worksheet name (default "Sheet1").
func WithSheetName(name string) XLSXOption { return func(r *xlsxRenderer) { r.sheet = name } }

// WithoutLabels leaves cell values empty instead of writing source labels.
func WithoutLabels() XLSXOption { return func(r *xlsxRenderer) { r.labels = false } }

// WithBorders draws a thin border around every visible cell.
func WithBorders() XLSXOption { return func(r *xlsxRenderer) { r.borders = true } }

// xlsxSession holds the state of one export. Styles are cached per fill so
// cells sharing a color share a style record.
type xlsxSession struct {
	f      *excelize.File
	sheet  string
	opts   xlsxRenderer
	styles map[string]int
}

// RenderXLSX exports the table as a single-sheet workbook.
//
// Column widths and row heights follow the grid, spanning cells become
// merged ranges, fills become solid pattern fills and each visible cell
// holds its source shape's label.
func RenderXLSX(t *grid.Table, opts ...XLSXOption) ([]byte, error) {
	r := xlsxRenderer{sheet: defaultSheetName, labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	f := excelize.NewFile()
	defer f.Close()

	if r.sheet != defaultSheetName {
		if err := f.SetSheetName(defaultSheetName, r.sheet); err != nil {
			return nil, fmt.Errorf("sheet name: %w", err)
		}
	}

	s := &xlsxSession{f: f, sheet: r.sheet, opts: r, styles: make(map[string]int)}
	if err := s.layout(t); err != nil {
		return nil, err
	}
	for _, c := range t.Cells() {
		if err := s.cell(c); err != nil {
			return nil, fmt.Errorf("cell (%d,%d): %w", c.Row, c.Col, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *xlsxSession) layout(t *grid.Table) error {
	for j := 0; j < t.ColumnCount(); j++ {
		name, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return err
		}
		width := clamp(t.Column(j).Width()/pixelsPerChar, minExtentInCell, maxColumnWidth)
		if err := s.f.SetColWidth(s.sheet, name, name, width); err != nil {
			return fmt.Errorf("column %s width: %w", name, err)
		}
	}
	for i := 0; i < t.RowCount(); i++ {
		height := clamp(t.Row(i).Height()*pointsPerPixel, minExtentInCell, maxRowHeight)
		if err := s.f.SetRowHeight(s.sheet, i+1, height); err != nil {
			return fmt.Errorf("row %d height: %w", i+1, err)
		}
	}
	return nil
}

func (s *xlsxSession) cell(c *grid.Cell) error {
	topLeft, err := excelize.CoordinatesToCellName(c.Col+1, c.Row+1)
	if err != nil {
		return err
	}
	bottomRight, err := excelize.CoordinatesToCellName(c.Col+c.ColSpan, c.Row+c.RowSpan)
	if err != nil {
		return err
	}

	if topLeft != bottomRight {
		if err := s.f.MergeCell(s.sheet, topLeft, bottomRight); err != nil {
			return fmt.Errorf("merge %s:%s: %w", topLeft, bottomRight, err)
		}
	}
	if c.Visible && s.opts.labels && c.Source != nil {
		if err := s.f.SetCellValue(s.sheet, topLeft, c.Source.Label()); err != nil {
			return err
		}
	}

	style, ok, err := s.style(c)
	if err != nil || !ok {
		return err
	}
	return s.f.SetCellStyle(s.sheet, topLeft, bottomRight, style)
}

// style returns the style id for c; ok is false when the cell needs none.
func (s *xlsxSession) style(c *grid.Cell) (id int, ok bool, err error) {
	border := s.opts.borders && c.Visible
	if c.Fill == "" && !border {
		return 0, false, nil
	}

	key := fmt.Sprintf("%s|%t", c.Fill, border)
	if id, ok := s.styles[key]; ok {
		return id, true, nil
	}

	st := &excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	}
	if c.Fill != "" {
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{expandHex(c.Fill)}}
	}
	if border {
		for _, side := range []string{"left", "top", "right", "bottom"} {
			st.Border = append(st.Border, excelize.Border{Type: side, Color: "333333", Style: 1})
		}
	}
	id, err = s.f.NewStyle(st)
	if err != nil {
		return 0, false, fmt.Errorf("style %s: %w", key, err)
	}
	s.styles[key] = id
	return id, true, nil
}

// expandHex turns "#RGB" into "#RRGGBB".
func expandHex(c string) string {
	if len(c) != 4 || !strings.HasPrefix(c, "#") {
		return c
	}
	return "#" + strings.Repeat(c[1:2], 2) + strings.Repeat(c[2:3], 2) + strings.Repeat(c[3:4], 2)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
