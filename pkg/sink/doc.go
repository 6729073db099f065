// Package sink exports synthesized tables.
//
// # Overview
//
// Every exporter consumes a [grid.Table] and returns the encoded bytes:
//
//   - [RenderJSON]: rows, columns, cells and overlap diagnostics
//   - [RenderSVG]: one rectangle per cell, with optional grid lines and
//     outlines for synthetic cells
//   - [RenderXLSX]: a spreadsheet with column widths and row heights taken
//     from the grid, merged ranges for spanning cells and pattern fills
//   - [RenderPDF], [RenderPNG]: the SVG converted with rsvg-convert
//
// Exporters are configured with functional options and keep no state
// between calls, so they are safe to use concurrently:
//
//	svg := sink.RenderSVG(t, sink.WithGridLines(), sink.WithLabels())
//	xlsx, err := sink.RenderXLSX(t, sink.WithSheetName("Invoice"))
//
// # Coordinates
//
// Cell frames are relative to the table origin, so every exporter draws the
// table starting at (0, 0) regardless of where the shapes sit on the page.
package sink
