package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/shapegrid/pkg/grid"
	"github.com/matzehuels/shapegrid/pkg/scene"
)

const (
	spanMarker      = "·"
	syntheticMarker = "∅"
	maxLabelWidth   = 18
)

var (
	gridHeaderStyle    = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	gridSyntheticStyle = lipgloss.NewStyle().Foreground(colorDim)
	gridSpanStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectCommand creates the inspect command, which prints the recovered
// grid to the terminal.
func (c *CLI) inspectCommand() *cobra.Command {
	var opts synthOpts

	cmd := &cobra.Command{
		Use:   "inspect [scene]",
		Short: "Print the recovered grid as a terminal table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), os.Stdout, args[0], opts)
		},
	}
	addGridFlags(cmd, &opts)
	return cmd
}

func (c *CLI) runInspect(ctx context.Context, w io.Writer, input string, opts synthOpts) error {
	t, s, err := c.synthesizeScene(ctx, input, opts)
	if err != nil {
		return err
	}
	if t == nil {
		printWarning("No table found in %s", input)
		return nil
	}

	fmt.Fprintln(w, StyleTitle.Render(s.Name))
	fmt.Fprintln(w, gridView(t, -1, -1))
	fmt.Fprintln(w, geometryView(t))
	for _, o := range t.Diagnostics() {
		fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(o.String()))
	}
	return nil
}

// synthesizeScene loads input and synthesizes its table without caching.
// A nil table means the scene has no grid.
func (c *CLI) synthesizeScene(ctx context.Context, input string, opts synthOpts) (*grid.Table, *scene.Scene, error) {
	s, err := scene.Load(input)
	if err != nil {
		return nil, nil, err
	}
	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return nil, nil, err
	}
	defer runner.Close()

	t, ok, err := runner.Synthesize(ctx, s, c.pipelineOptions(opts))
	if err != nil || !ok {
		return nil, s, err
	}
	return t, s, nil
}

// gridView renders t as a bordered terminal table with spreadsheet-style
// column headers. The cell covering (selRow, selCol) is highlighted.
func gridView(t *grid.Table, selRow, selCol int) string {
	headers := make([]string, t.ColumnCount()+1)
	for j := 0; j < t.ColumnCount(); j++ {
		headers[j+1] = columnName(j)
	}

	rows := make([][]string, t.RowCount())
	for i := range rows {
		rows[i] = make([]string, t.ColumnCount()+1)
		rows[i][0] = fmt.Sprint(i + 1)
		for j := 0; j < t.ColumnCount(); j++ {
			rows[i][j+1] = cellText(t.Cell(i, j), i, j)
		}
	}

	var sel *grid.Cell
	if selRow >= 0 && selCol >= 0 {
		sel = t.Cell(selRow, selCol)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == -1 || col == 0 {
				return base.Inherit(gridHeaderStyle)
			}
			c := t.Cell(row, col-1)
			switch {
			case sel != nil && c == sel:
				return base.Inherit(listSelectedStyle).Reverse(true)
			case c.Synthetic():
				return base.Inherit(gridSyntheticStyle)
			case c.Row != row || c.Col != col-1:
				return base.Inherit(gridSpanStyle)
			}
			return base.Inherit(listNormalStyle)
		}).
		Render()
}

// geometryView lists row and column extents in container space.
func geometryView(t *grid.Table) string {
	var b strings.Builder
	for i, r := range t.Rows() {
		fmt.Fprintf(&b, "%s %s\n", StyleDim.Render(fmt.Sprintf("row %-3d", i+1)),
			StyleNumber.Render(fmt.Sprintf("y=%g h=%g", r.Start, r.Height())))
	}
	for j, c := range t.Columns() {
		fmt.Fprintf(&b, "%s %s\n", StyleDim.Render(fmt.Sprintf("col %-3s", columnName(j))),
			StyleNumber.Render(fmt.Sprintf("x=%g w=%g", c.Start, c.Width())))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// cellText is what the grid shows at (row, col): the label at a cell's
// origin and a marker elsewhere in its span.
func cellText(c *grid.Cell, row, col int) string {
	if c.Row != row || c.Col != col {
		return spanMarker
	}
	if c.Synthetic() {
		return syntheticMarker
	}
	return truncate(c.Source.Label(), maxLabelWidth)
}

// columnName returns the spreadsheet name of the zero-based column j.
func columnName(j int) string {
	name, err := excelize.ColumnNumberToName(j + 1)
	if err != nil {
		return fmt.Sprint(j + 1)
	}
	return name
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
