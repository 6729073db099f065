package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/shapegrid/pkg/grid"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
)

// browseCommand creates the browse command, an interactive cell browser.
func (c *CLI) browseCommand() *cobra.Command {
	var opts synthOpts

	cmd := &cobra.Command{
		Use:   "browse [scene]",
		Short: "Explore the recovered grid cell by cell",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, s, err := c.synthesizeScene(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			if t == nil {
				printWarning("No table found in %s", args[0])
				return nil
			}
			p := tea.NewProgram(NewCellBrowserModel(s.Name, t), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
	addGridFlags(cmd, &opts)
	return cmd
}

// =============================================================================
// CellBrowserModel - Interactive grid navigation
// =============================================================================

// CellBrowserModel is the bubbletea model for browsing a table's cells.
// The cursor is a grid position; moving it skips over spanned positions.
type CellBrowserModel struct {
	Title string
	Table *grid.Table
	Row   int
	Col   int
}

// NewCellBrowserModel creates a browser positioned on the top-left cell.
func NewCellBrowserModel(title string, t *grid.Table) CellBrowserModel {
	return CellBrowserModel{Title: title, Table: t}
}

// Current returns the cell under the cursor.
func (m CellBrowserModel) Current() *grid.Cell {
	return m.Table.Cell(m.Row, m.Col)
}

func (m CellBrowserModel) Init() tea.Cmd {
	return nil
}

func (m CellBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	cur := m.Current()
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if cur.Row > 0 {
			m.Row = cur.Row - 1
		}
	case "down", "j":
		if next := cur.Row + cur.RowSpan; next < m.Table.RowCount() {
			m.Row = next
		}
	case "left", "h":
		if cur.Col > 0 {
			m.Col = cur.Col - 1
		}
	case "right", "l":
		if next := cur.Col + cur.ColSpan; next < m.Table.ColumnCount() {
			m.Col = next
		}
	case "home", "g":
		m.Row, m.Col = 0, 0
	case "end", "G":
		m.Row, m.Col = m.Table.RowCount()-1, m.Table.ColumnCount()-1
	}
	return m, nil
}

func (m CellBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/↑/↓/→ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		gridView(m.Table, m.Row, m.Col),
		"  ",
		detailStyle.Render(cellDetail(m.Current())),
	))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %s%d", columnName(m.Col), m.Row+1)))

	return b.String()
}

// cellDetail describes a cell for the side panel.
func cellDetail(c *grid.Cell) string {
	lines := [][2]string{}
	if c.Synthetic() {
		lines = append(lines, [2]string{"shape", "synthetic"})
	} else {
		lines = append(lines,
			[2]string{"shape", c.Source.Label()},
			[2]string{"id", c.Source.ID},
		)
	}
	lines = append(lines,
		[2]string{"range", cellRange(c)},
		[2]string{"span", fmt.Sprintf("%d×%d", c.RowSpan, c.ColSpan)},
		[2]string{"frame", fmt.Sprintf("%g,%g %g×%g", c.Frame.X, c.Frame.Y, c.Frame.Width, c.Frame.Height)},
	)
	if c.Fill != "" {
		lines = append(lines, [2]string{"fill", c.Fill})
	}

	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(7)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = keyStyle.Render(l[0]) + StyleValue.Render(l[1])
	}
	return strings.Join(out, "\n")
}

// cellRange returns the spreadsheet range a cell covers, such as "A1:B2".
func cellRange(c *grid.Cell) string {
	start := fmt.Sprintf("%s%d", columnName(c.Col), c.Row+1)
	if c.RowSpan == 1 && c.ColSpan == 1 {
		return start
	}
	return fmt.Sprintf("%s:%s%d", start, columnName(c.Col+c.ColSpan-1), c.Row+c.RowSpan)
}
