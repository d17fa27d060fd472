package sysdash

import (
	"github.com/charmbracelet/lipgloss"
)

// Horizontal renders panes side by side
func Horizontal(panes ...Pane) string {
	if len(panes) == 0 {
		return ""
	}

	views := make([]string, len(panes))
	for i, pane := range panes {
		views[i] = pane.Render()
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// GridLayout renders panes in rows
type GridLayout struct {
	rows [][]Pane
}

// NewGrid creates a new grid layout
func NewGrid() *GridLayout {
	return &GridLayout{
		rows: make([][]Pane, 0),
	}
}

// AddRow adds a row of panes to the grid
func (g *GridLayout) AddRow(panes ...Pane) *GridLayout {
	g.rows = append(g.rows, panes)
	return g
}

// Render renders the grid layout
func (g *GridLayout) Render() string {
	if len(g.rows) == 0 {
		return ""
	}

	rowViews := make([]string, len(g.rows))
	for i, row := range g.rows {
		rowViews[i] = Horizontal(row...)
	}

	return lipgloss.JoinVertical(lipgloss.Left, rowViews...)
}

// splitWidth divides total columns into n pane widths, accounting for
// each pane's two border columns. The last pane takes the remainder.
func splitWidth(total, n int) []int {
	if n <= 0 {
		return nil
	}
	widths := make([]int, n)
	each := total / n
	for i := range widths {
		widths[i] = max(1, each-2)
	}
	widths[n-1] = max(1, total-each*(n-1)-2)
	return widths
}
